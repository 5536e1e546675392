package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/orchestrator"
)

// App bundles the handler dependencies.
type App struct {
	Orchestrator *orchestrator.Orchestrator
	Logger       zerolog.Logger
}

func NewApp(orch *orchestrator.Orchestrator, logger zerolog.Logger) *App {
	return &App{Orchestrator: orch, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// failWith maps an orchestrator error to its category code, HTTP status, and
// localized message.
func (a *App) failWith(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	code, status := categorize(err)
	a.error(w, status, code, localizedMessage(code, locale))
}

func categorize(err error) (code string, status int) {
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		return "MODEL_NOT_FOUND", http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCost):
		return "INVALID_COST", http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientCredits):
		return "INSUFFICIENT_CREDITS", http.StatusForbidden
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return "RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests
	case errors.Is(err, domain.ErrInvalidParams):
		return "INVALID_PARAMS", http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND", http.StatusNotFound
	default:
		return "SUBMISSION_FAILED", http.StatusInternalServerError
	}
}

var messages = map[string]map[string]string{
	"MODEL_NOT_FOUND": {
		"en": "Model not found",
		"ja": "モデルが見つかりません",
		"zh": "未找到模型",
	},
	"INVALID_COST": {
		"en": "Invalid cost",
		"ja": "コストが無効です",
		"zh": "费用无效",
	},
	"INSUFFICIENT_CREDITS": {
		"en": "Insufficient credits",
		"ja": "クレジットが不足しています",
		"zh": "积分不足",
	},
	"RATE_LIMIT_EXCEEDED": {
		"en": "Rate limit exceeded",
		"ja": "リクエスト制限を超えました",
		"zh": "超出速率限制",
	},
	"INVALID_PARAMS": {
		"en": "Invalid params",
		"ja": "パラメータが無効です",
		"zh": "参数无效",
	},
	"NOT_FOUND": {
		"en": "Task not found",
		"ja": "タスクが見つかりません",
		"zh": "未找到任务",
	},
	"SUBMISSION_FAILED": {
		"en": "Failed to submit task",
		"ja": "タスクの送信に失敗しました",
		"zh": "任务提交失败",
	},
}

func localizedMessage(code, locale string) string {
	byLocale, ok := messages[code]
	if !ok {
		return code
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale["en"]
}
