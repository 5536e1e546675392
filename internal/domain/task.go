package domain

import "time"

// TaskType enumerates generation job categories; the quota guard keys on it.
type TaskType string

const (
	TaskTypeImage TaskType = "IMAGE"
	TaskTypeVideo TaskType = "VIDEO"
)

// TaskStatus enumerates generation task lifecycle states. The orchestrator
// only ever writes PENDING; the webhook receiver advances the rest.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
)

// Platform identifies which provider adapter dispatches a model.
type Platform string

const (
	PlatformFal       Platform = "fal"
	PlatformReplicate Platform = "replicate"
	PlatformLuma      Platform = "luma"
	PlatformRunway    Platform = "runway"
	PlatformArk       Platform = "ark"
	PlatformWavespeed Platform = "wavespeed"
	PlatformKie       Platform = "kie"
	PlatformKusa      Platform = "kusa"
	PlatformLocal     Platform = "local"
)

// GenerationTask is the durable record for one generation attempt. TaskID
// starts as a local placeholder and is overwritten with the provider-issued
// id during reconciliation; PreviousTaskID is only ever set by the fallback
// flow and chains back to the id the row carried before the rewrite.
type GenerationTask struct {
	TaskID         string
	PreviousTaskID string
	UserID         string
	ModelID        ModelID
	ModelName      string
	Platform       Platform
	Type           TaskType
	Cost           float64
	Payload        []byte
	Tool           string
	Status         TaskStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
