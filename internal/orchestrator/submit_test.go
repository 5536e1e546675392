package orchestrator

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"server/internal/domain"
	"server/internal/providers"
)

func TestSubmitSuccess(t *testing.T) {
	e := newEnv(imageModel())

	ids, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "a cat"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "prov-1" {
		t.Fatalf("Submit() ids = %v, want [prov-1]", ids)
	}

	if len(e.tasks.created) != 1 {
		t.Fatalf("created rows = %d, want 1", len(e.tasks.created))
	}
	row := e.tasks.created[0]
	if !strings.HasPrefix(row.TaskID, "temp-") {
		t.Errorf("placeholder id = %q, want temp- prefix", row.TaskID)
	}
	if row.Status != domain.TaskStatusPending {
		t.Errorf("status = %q, want PENDING", row.Status)
	}
	if row.Cost != 2 {
		t.Errorf("cost = %v, want 2", row.Cost)
	}
	if row.ModelID != testModelID || row.ModelName != "acme/image-one" {
		t.Errorf("model = %d/%q, want %d/acme/image-one", row.ModelID, row.ModelName, testModelID)
	}

	if len(e.submitter.calls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(e.submitter.calls))
	}
	call := e.submitter.calls[0]
	if call.CallbackURL != "https://api.example.com/api/generation/webhook" {
		t.Errorf("callback url = %q", call.CallbackURL)
	}
	if call.Input["prompt"] != "a cat" {
		t.Errorf("input prompt = %v", call.Input["prompt"])
	}

	if len(e.tasks.updatedTo) != 1 || e.tasks.updatedTo[0] != "prov-1" {
		t.Errorf("reconciled ids = %v, want [prov-1]", e.tasks.updatedTo)
	}
	if len(e.tasks.deleted) != 0 {
		t.Errorf("unexpected deletes: %v", e.tasks.deleted)
	}
	if e.quota.calls != 0 {
		t.Errorf("quota checked %d times for image model, want 0", e.quota.calls)
	}
}

func TestSubmitFanOut(t *testing.T) {
	e := newEnv(imageModel())
	e.submitter.results = []submitResult{{id: "prov-1"}, {id: "prov-2"}, {id: "prov-3"}}

	ids, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{
		"prompt":     "a cat",
		"num_images": 3,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("ids = %v, want 3", ids)
	}
	if len(e.tasks.created) != 3 {
		t.Errorf("created rows = %d, want 3", len(e.tasks.created))
	}
	// Budget is reserved once for the whole batch, not per attempt.
	if e.credits.gotAmount != 6 {
		t.Errorf("credit check amount = %v, want 6", e.credits.gotAmount)
	}
}

func TestSubmitPartialSuccess(t *testing.T) {
	e := newEnv(imageModel())
	e.submitter.results = []submitResult{{err: errors.New("boom")}, {id: "prov-2"}}

	ids, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{
		"prompt":     "a cat",
		"num_images": 2,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v, want nil when any attempt succeeds", err)
	}
	if len(ids) != 1 {
		t.Fatalf("ids = %v, want exactly one", ids)
	}
	if len(e.tasks.deleted) != 1 {
		t.Errorf("deletes = %v, want the failed attempt's placeholder", e.tasks.deleted)
	}
}

func TestSubmitModelNotFound(t *testing.T) {
	e := newEnv(imageModel())
	_, err := e.orch.Submit(context.Background(), "user-a", 999, domain.Payload{})
	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Fatalf("error = %v, want ErrModelNotFound", err)
	}
}

func TestSubmitInvalidCost(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), -1} {
		model := imageModel()
		model.Cost = func(domain.Payload) float64 { return bad }
		e := newEnv(model)
		_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
		if !errors.Is(err, domain.ErrInvalidCost) {
			t.Fatalf("cost %v: error = %v, want ErrInvalidCost", bad, err)
		}
		if e.tasks.createCalls != 0 {
			t.Fatalf("cost %v: store written before cost validation", bad)
		}
	}
}

func TestSubmitInsufficientCredits(t *testing.T) {
	e := newEnv(imageModel())
	e.credits.enough = false
	e.tasks.inFlight = 5

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{
		"prompt":     "x",
		"num_images": 2,
	})
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("error = %v, want ErrInsufficientCredits", err)
	}
	// 2 credits x 2 attempts plus 5 already in flight.
	if e.credits.gotAmount != 9 {
		t.Errorf("credit check amount = %v, want 9", e.credits.gotAmount)
	}
	if e.tasks.createCalls != 0 {
		t.Errorf("store written despite failed budget check")
	}
}

func TestSubmitCreditCheckError(t *testing.T) {
	e := newEnv(imageModel())
	e.credits.err = errors.New("ledger down")

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
}

func TestSubmitInFlightLookupFailureReservesNothing(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.inFlightErr = errors.New("sum failed")

	if _, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if e.credits.gotAmount != 2 {
		t.Errorf("credit check amount = %v, want bare cost 2", e.credits.gotAmount)
	}
}

func TestSubmitVideoQuota(t *testing.T) {
	videoModel := func() *domain.ModelConfig {
		m := imageModel()
		m.Type = domain.TaskTypeVideo
		return m
	}

	t.Run("denied", func(t *testing.T) {
		e := newEnv(videoModel())
		e.quota.allowed = false
		_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
		if !errors.Is(err, domain.ErrRateLimitExceeded) {
			t.Fatalf("error = %v, want ErrRateLimitExceeded", err)
		}
		if e.quota.gotType != domain.TaskTypeVideo {
			t.Errorf("quota checked for %q, want VIDEO", e.quota.gotType)
		}
	})

	t.Run("check failure denies", func(t *testing.T) {
		e := newEnv(videoModel())
		e.quota.err = errors.New("limit check down")
		_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
		if !errors.Is(err, domain.ErrRateLimitExceeded) {
			t.Fatalf("error = %v, want ErrRateLimitExceeded", err)
		}
	})

	t.Run("allowed", func(t *testing.T) {
		e := newEnv(videoModel())
		if _, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if e.quota.calls != 1 {
			t.Errorf("quota calls = %d, want 1", e.quota.calls)
		}
	})
}

func TestSubmitInvalidParams(t *testing.T) {
	model := imageModel()
	model.ParseParams = func(domain.Payload) (domain.ProviderInput, error) {
		return nil, errors.New("prompt is required")
	}
	e := newEnv(model)

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{})
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("error = %v, want ErrInvalidParams", err)
	}
	if e.tasks.createCalls != 0 {
		t.Errorf("store written despite invalid params")
	}
}

func TestSubmitStoreRateLimited(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.createOutcomes = []domain.CreateOutcome{{RateLimited: true}}

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrRateLimitExceeded) {
		t.Fatalf("error = %v, want ErrRateLimitExceeded", err)
	}
	if len(e.submitter.calls) != 0 {
		t.Errorf("provider called despite store rate limit")
	}
}

func TestSubmitStoreWriteFailure(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.createErr = errors.New("insert failed")

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
	if len(e.submitter.calls) != 0 {
		t.Errorf("provider called despite failed store write")
	}
}

func TestSubmitRateLimitDominatesAggregate(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.createOutcomes = []domain.CreateOutcome{{RateLimited: true}, {Created: true}}
	e.submitter.results = []submitResult{{err: errors.New("boom")}}

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{
		"prompt":     "x",
		"num_images": 2,
	})
	if !errors.Is(err, domain.ErrRateLimitExceeded) {
		t.Fatalf("error = %v, want rate limit to dominate mixed failures", err)
	}
}

func TestSubmitDispatchFailureDeletesPlaceholder(t *testing.T) {
	e := newEnv(imageModel())
	e.submitter.results = []submitResult{{err: errors.New("upstream 500")}}

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
	if len(e.tasks.deleted) != 1 {
		t.Fatalf("deletes = %v, want the placeholder", e.tasks.deleted)
	}
	if e.tasks.deleted[0] != e.tasks.created[0].TaskID {
		t.Errorf("deleted %q, want placeholder %q", e.tasks.deleted[0], e.tasks.created[0].TaskID)
	}
}

func TestSubmitEmptyProviderIDDeletesPlaceholder(t *testing.T) {
	e := newEnv(imageModel())
	e.submitter.results = []submitResult{{id: ""}}

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
	if len(e.tasks.deleted) != 1 {
		t.Errorf("deletes = %v, want placeholder removal on empty provider id", e.tasks.deleted)
	}
}

func TestSubmitNoAdapterForPlatform(t *testing.T) {
	model := imageModel()
	model.Platform = domain.PlatformKusa
	e := newEnv(model)

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
	if len(e.tasks.deleted) != 1 {
		t.Errorf("deletes = %v, want placeholder removal", e.tasks.deleted)
	}
}

func TestSubmitReconcileRetriesWithGrowingDelay(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.matchAfter = 2

	ids, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("ids = %v", ids)
	}
	if e.tasks.updateCalls != 3 {
		t.Errorf("update calls = %d, want 3", e.tasks.updateCalls)
	}
	want := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}
	if len(e.sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", e.sleeps, want)
	}
	for i := range want {
		if e.sleeps[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, e.sleeps[i], want[i])
		}
	}
}

func TestSubmitReconcileExhaustionCompensates(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.matchAfter = 100
	canceler := &fakeCanceler{}
	canceler.results = []submitResult{{id: "prov-9"}}
	e.submitter = &canceler.fakeSubmitter
	e.orch = New(Options{
		Catalog:     e.catalog,
		Tasks:       e.tasks,
		Credits:     e.credits,
		Quota:       e.quota,
		Providers:   providers.Registry{domain.PlatformFal: canceler},
		CallbackURL: "https://api.example.com/api/generation/webhook",
		Logger:      e.orch.logger,
		Sleep: func(context.Context, time.Duration) error {
			return nil
		},
	})

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
	if e.tasks.updateCalls != 5 {
		t.Errorf("update calls = %d, want 5", e.tasks.updateCalls)
	}
	if len(canceler.canceled) != 1 || canceler.canceled[0] != "prov-9" {
		t.Errorf("canceled = %v, want [prov-9]", canceler.canceled)
	}
	if len(e.tasks.deleted) != 1 {
		t.Errorf("deletes = %v, want the placeholder", e.tasks.deleted)
	}
}

func TestSubmitReconcileExhaustionWithoutCanceler(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.matchAfter = 100

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "x"})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
	// No cancel API on the platform: deletion still happens, cancel is skipped.
	if len(e.tasks.deleted) != 1 {
		t.Errorf("deletes = %v, want the placeholder", e.tasks.deleted)
	}
}

func TestSubmitUpgradeByInput(t *testing.T) {
	const hdModelID domain.ModelID = 43
	model := imageModel()
	model.UpgradeToModelByInput = func(input domain.ProviderInput) domain.ModelID {
		if input["prompt"] == "huge" {
			return hdModelID
		}
		return 0
	}
	e := newEnv(model)
	hd := imageModel()
	hd.Name = "acme/image-one-hd"
	e.catalog[hdModelID] = hd
	e.build()

	if _, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{"prompt": "huge"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	row := e.tasks.created[0]
	if row.ModelID != hdModelID || row.ModelName != "acme/image-one-hd" {
		t.Errorf("row model = %d/%q, want upgraded %d/acme/image-one-hd", row.ModelID, row.ModelName, hdModelID)
	}
}

func TestSubmitStoresRedactedPayload(t *testing.T) {
	e := newEnv(imageModel())

	_, err := e.orch.Submit(context.Background(), "user-a", testModelID, domain.Payload{
		"prompt":      "x",
		"init_images": []any{"data:image/png;base64,AAAA", "https://cdn.example.com/a.png"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	stored := string(e.tasks.created[0].Payload)
	if strings.Contains(stored, "base64,AAAA") {
		t.Errorf("stored payload embeds inline image bytes: %s", stored)
	}
	if !strings.Contains(stored, "image_placeholder") {
		t.Errorf("stored payload missing redaction marker: %s", stored)
	}
	if !strings.Contains(stored, "https://cdn.example.com/a.png") {
		t.Errorf("stored payload dropped the remote reference: %s", stored)
	}
}
