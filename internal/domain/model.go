package domain

// ModelID identifies a model configuration entry.
type ModelID int

// ProviderInput is the provider-ready shape produced by a model's parser; it
// is marshaled as-is into the provider's wire format.
type ProviderInput map[string]any

// FallbackConfig declares which model a task should be rewritten to when the
// provider reports a degraded or failed run.
type FallbackConfig struct {
	ModelID        ModelID
	ParamsOverride map[string]any
}

// ModelConfig describes one dispatchable model. Entries are read-only after
// startup; the orchestrator never mutates them.
type ModelConfig struct {
	Name     string
	Alias    string
	Platform Platform
	Type     TaskType

	// ParseParams validates and transforms the raw payload into the shape
	// the platform adapter submits.
	ParseParams func(p Payload) (ProviderInput, error)

	// Cost is a pure function of the request params to credit cost.
	Cost func(p Payload) float64

	// UpgradeToModelByInput optionally redirects billing and dispatch to a
	// different model once the parsed input is known. Zero means no upgrade.
	UpgradeToModelByInput func(input ProviderInput) ModelID

	Fallback *FallbackConfig
}

// Catalog is the immutable model configuration table, injected rather than
// read from package state so tests can substitute fake models.
type Catalog map[ModelID]*ModelConfig

// Get returns the model config for the id, or nil when unknown.
func (c Catalog) Get(id ModelID) *ModelConfig {
	return c[id]
}
