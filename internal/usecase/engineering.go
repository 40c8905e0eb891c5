package usecase

import (
	"context"
	"strings"

	"sniff/internal/domain"
	"sniff/internal/port"
)

// RawRecord is one archived raw model response from a prompt
// engineering run.
type RawRecord struct {
	Filename    string `json:"filename"`
	SmellID     string `json:"smell_id"`
	PromptMode  string `json:"prompt_mode"`
	ProviderID  string `json:"provider_id"`
	RawResponse string `json:"raw_response"`
}

// FileProgressFunc announces the file about to be analyzed. index is
// 1-based; chars is the size of the code being sent.
type FileProgressFunc func(index, total int, filename string, chars int)

// EngineeringResult is everything one prompt trial produced.
type EngineeringResult struct {
	Findings        []domain.Finding
	Valid           []domain.Finding
	ParseErrorCount int
	Stats           domain.RunStats
	Raw             []RawRecord
	Canceled        bool
}

// EngineeringRunner drives prompt trials file by file, so a caller can
// stop between files and inspect every raw response afterwards.
type EngineeringRunner struct {
	provider   port.Provider
	providerID string
	catalog    domain.Catalog
}

func NewEngineeringRunner(provider port.Provider, providerID string, catalog domain.Catalog) *EngineeringRunner {
	return &EngineeringRunner{provider: provider, providerID: providerID, catalog: catalog}
}

// Run trials one smell over the targets. When mode is draft and
// draftOverride is non-blank, the trial runs against a catalog clone
// with the override injected; the stored catalog is never touched.
//
// ctx is honored between files only: the in-flight request always
// completes, and a canceled run returns what it gathered so far with
// Canceled set rather than an error.
func (r *EngineeringRunner) Run(ctx context.Context, smellID string, mode domain.PromptMode, draftOverride string, targets []domain.DetectionTarget, normalizeMode domain.NormalizeMode, onFile FileProgressFunc) (EngineeringResult, error) {
	catalog := r.catalog.Clone()
	if mode == domain.PromptDraft && strings.TrimSpace(draftOverride) != "" {
		smell, err := catalog.GetSmell(smellID)
		if err != nil {
			return EngineeringResult{}, err
		}
		smell.DraftPrompt = draftOverride
		catalog.UpsertSmell(smell)
	}

	orchestrator := NewOrchestrator(r.provider, catalog)

	var result EngineeringResult
	total := len(targets)
	processed := 0

	for i, target := range targets {
		if ctx.Err() != nil {
			result.Canceled = true
			break
		}
		if onFile != nil {
			onFile(i+1, total, target.Filename, len(target.Code))
		}

		findings, stats, rawByFile, err := orchestrator.DetectForEngineeringWithRaw(
			[]domain.DetectionTarget{target}, smellID, mode, normalizeMode)
		if err != nil {
			return EngineeringResult{}, err
		}

		result.Findings = append(result.Findings, findings...)
		result.Stats.PromptsSent += stats.PromptsSent
		result.Raw = append(result.Raw, RawRecord{
			Filename:    target.Filename,
			SmellID:     smellID,
			PromptMode:  mode.String(),
			ProviderID:  r.providerID,
			RawResponse: rawByFile[target.Filename],
		})
		processed++
	}

	result.Stats.TargetsProcessed = processed
	result.Stats.SmellsProcessed = 1

	for _, f := range result.Findings {
		if f.Valid() {
			result.Valid = append(result.Valid, f)
		}
	}
	result.ParseErrorCount = len(result.Findings) - len(result.Valid)
	return result, nil
}
