package orchestrator

import (
	"context"
	"errors"
	"testing"

	"server/internal/domain"
)

func fallbackModel() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "acme/image-two",
		Platform: domain.PlatformFal,
		Type:     domain.TaskTypeImage,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			return domain.ProviderInput{"prompt": p.String("prompt")}, nil
		},
		Cost: func(domain.Payload) float64 { return 1 },
	}
}

func TestCreateFallbackTaskExplicit(t *testing.T) {
	const fallbackID domain.ModelID = 50
	e := newEnv(imageModel())
	e.catalog[fallbackID] = fallbackModel()
	e.submitter.results = []submitResult{{id: "prov-fb"}}

	newID, err := e.orch.CreateFallbackTask(context.Background(), FallbackRequest{
		OriginalTaskID:  "prov-old",
		OriginalPayload: []byte(`{"prompt":"a cat","seed":7}`),
		FallbackModelID: fallbackID,
		ParamsOverride:  map[string]any{"seed": 9},
	})
	if err != nil {
		t.Fatalf("CreateFallbackTask() error = %v", err)
	}
	if newID != "prov-fb" {
		t.Fatalf("newID = %q, want prov-fb", newID)
	}

	rewrite, ok := e.tasks.rewrites["prov-old"]
	if !ok {
		t.Fatal("original row was not rewritten")
	}
	if rewrite.TaskID != "prov-fb" {
		t.Errorf("rewritten TaskID = %q, want prov-fb", rewrite.TaskID)
	}
	if rewrite.PreviousTaskID != "prov-old" {
		t.Errorf("PreviousTaskID = %q, want prov-old", rewrite.PreviousTaskID)
	}
	if rewrite.ModelID != fallbackID {
		t.Errorf("ModelID = %d, want %d", rewrite.ModelID, fallbackID)
	}
	if rewrite.Status != domain.TaskStatusPending {
		t.Errorf("Status = %q, want PENDING", rewrite.Status)
	}

	merged, err := domain.ParsePayload(rewrite.Payload)
	if err != nil {
		t.Fatalf("stored payload unparseable: %v", err)
	}
	if seed, _ := merged.Int("seed"); seed != 9 {
		t.Errorf("override not applied, seed = %v", merged["seed"])
	}
	if target, _ := merged.Int("target_model"); target != int(fallbackID) {
		t.Errorf("target_model = %v, want %d", merged["target_model"], fallbackID)
	}
	if merged.String("prompt") != "a cat" {
		t.Errorf("original field lost, prompt = %q", merged.String("prompt"))
	}

	// No new row: exactly zero placeholder creations.
	if e.tasks.createCalls != 0 {
		t.Errorf("fallback created %d rows, want 0", e.tasks.createCalls)
	}
}

func TestCreateFallbackTaskConfigured(t *testing.T) {
	const fallbackID domain.ModelID = 50
	model := imageModel()
	model.Fallback = &domain.FallbackConfig{
		ModelID:        fallbackID,
		ParamsOverride: map[string]any{"resolution": "720p"},
	}
	e := newEnv(model)
	e.catalog[fallbackID] = fallbackModel()
	e.submitter.results = []submitResult{{id: "prov-fb"}}
	e.tasks.byID = map[string]*domain.GenerationTask{
		"prov-old": {TaskID: "prov-old", UserID: "user-a", ModelID: testModelID},
	}

	newID, err := e.orch.CreateFallbackTask(context.Background(), FallbackRequest{
		OriginalTaskID:  "prov-old",
		OriginalPayload: []byte(`{"prompt":"a cat"}`),
	})
	if err != nil {
		t.Fatalf("CreateFallbackTask() error = %v", err)
	}
	if newID != "prov-fb" {
		t.Fatalf("newID = %q", newID)
	}

	rewrite := e.tasks.rewrites["prov-old"]
	merged, err := domain.ParsePayload(rewrite.Payload)
	if err != nil {
		t.Fatalf("stored payload unparseable: %v", err)
	}
	if merged.String("resolution") != "720p" {
		t.Errorf("configured override not applied: %v", merged["resolution"])
	}
}

func TestCreateFallbackTaskNoConfiguredFallback(t *testing.T) {
	e := newEnv(imageModel())
	e.tasks.byID = map[string]*domain.GenerationTask{
		"prov-old": {TaskID: "prov-old", ModelID: testModelID},
	}

	_, err := e.orch.CreateFallbackTask(context.Background(), FallbackRequest{
		OriginalTaskID:  "prov-old",
		OriginalPayload: []byte(`{"prompt":"x"}`),
	})
	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Fatalf("error = %v, want ErrModelNotFound", err)
	}
}

func TestCreateFallbackTaskUnknownModel(t *testing.T) {
	e := newEnv(imageModel())
	_, err := e.orch.CreateFallbackTask(context.Background(), FallbackRequest{
		OriginalTaskID:  "prov-old",
		OriginalPayload: []byte(`{"prompt":"x"}`),
		FallbackModelID: 999,
	})
	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Fatalf("error = %v, want ErrModelNotFound", err)
	}
}

func TestCreateFallbackTaskBadPayload(t *testing.T) {
	e := newEnv(imageModel())
	_, err := e.orch.CreateFallbackTask(context.Background(), FallbackRequest{
		OriginalTaskID:  "prov-old",
		OriginalPayload: []byte(`{not json`),
		FallbackModelID: testModelID,
	})
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("error = %v, want ErrInvalidParams", err)
	}
}

func TestCreateFallbackTaskDispatchFailureLeavesRowUntouched(t *testing.T) {
	e := newEnv(imageModel())
	e.submitter.results = []submitResult{{err: errors.New("upstream 500")}}

	_, err := e.orch.CreateFallbackTask(context.Background(), FallbackRequest{
		OriginalTaskID:  "prov-old",
		OriginalPayload: []byte(`{"prompt":"x"}`),
		FallbackModelID: testModelID,
	})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
	if len(e.tasks.rewrites) != 0 {
		t.Errorf("row rewritten despite dispatch failure: %v", e.tasks.rewrites)
	}
	if len(e.tasks.deleted) != 0 {
		t.Errorf("fallback deleted rows: %v", e.tasks.deleted)
	}
}

func TestCreateFallbackTaskRewriteFailure(t *testing.T) {
	e := newEnv(imageModel())
	e.submitter.results = []submitResult{{id: "prov-fb"}}
	e.tasks.rewriteErr = errors.New("update failed")

	_, err := e.orch.CreateFallbackTask(context.Background(), FallbackRequest{
		OriginalTaskID:  "prov-old",
		OriginalPayload: []byte(`{"prompt":"x"}`),
		FallbackModelID: testModelID,
	})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
}
