package domain

import "time"

const (
	RunKindDetect      = "detect"
	RunKindEngineering = "engineering"
)

// RunRecord is the archived summary of one detection or prompt-engineering
// run, persisted so past results can be listed and inspected later.
type RunRecord struct {
	RunID         string    `json:"run_id"`
	Kind          string    `json:"kind"`
	StartedAt     time.Time `json:"started_at"`
	InputPath     string    `json:"input_path"`
	ProviderID    string    `json:"provider_id"`
	SmellIDs      []string  `json:"smell_ids"`
	PromptMode    string    `json:"prompt_mode"`
	NormalizeMode string    `json:"normalize_mode"`
	Stats         RunStats  `json:"stats"`
	Findings      []Finding `json:"findings"`
}
