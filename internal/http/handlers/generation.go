package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/orchestrator"
)

type submitRequest struct {
	TargetModel domain.ModelID `json:"target_model"`
	Params      domain.Payload `json:"params"`
}

type submitResponse struct {
	TaskIDs []string `json:"task_ids"`
}

// GenerationSubmit accepts one logical generation request and fans it out
// through the submission protocol.
func (a *App) GenerationSubmit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}
	if req.Params == nil {
		req.Params = domain.Payload{}
	}

	taskIDs, err := a.Orchestrator.Submit(r.Context(), userID, req.TargetModel, req.Params)
	if err != nil {
		a.failWith(w, r, err)
		return
	}
	a.json(w, http.StatusOK, submitResponse{TaskIDs: taskIDs})
}

type fallbackRequest struct {
	OriginalTaskID  string          `json:"original_task_id"`
	OriginalPayload json.RawMessage `json:"original_payload"`
	FallbackModelID domain.ModelID  `json:"fallback_model_id"`
	ParamsOverride  map[string]any  `json:"params_override"`
}

type fallbackResponse struct {
	NewTaskID string `json:"new_task_id"`
}

// GenerationFallback rewrites an existing task onto a replacement model,
// preserving lineage. Called by operators and the webhook pipeline when a
// provider degrades.
func (a *App) GenerationFallback(w http.ResponseWriter, r *http.Request) {
	var req fallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}
	if req.OriginalTaskID == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST", "original_task_id required")
		return
	}

	newTaskID, err := a.Orchestrator.CreateFallbackTask(r.Context(), orchestrator.FallbackRequest{
		OriginalTaskID:  req.OriginalTaskID,
		OriginalPayload: req.OriginalPayload,
		FallbackModelID: req.FallbackModelID,
		ParamsOverride:  req.ParamsOverride,
	})
	if err != nil {
		a.failWith(w, r, err)
		return
	}
	a.json(w, http.StatusOK, fallbackResponse{NewTaskID: newTaskID})
}

// GenerationTask returns the current state of one task owned by the caller.
func (a *App) GenerationTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST", "task_id required")
		return
	}

	task, err := a.Orchestrator.GetTask(r.Context(), userID, taskID)
	if err != nil {
		a.failWith(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"task_id":          task.TaskID,
		"previous_task_id": task.PreviousTaskID,
		"model_id":         task.ModelID,
		"model":            task.ModelName,
		"platform":         task.Platform,
		"type":             task.Type,
		"status":           task.Status,
		"cost":             task.Cost,
		"created_at":       task.CreatedAt,
		"updated_at":       task.UpdatedAt,
	})
}
