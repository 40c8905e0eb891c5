package usecase

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"sniff/internal/domain"
	"sniff/internal/port"
)

// outputContract is appended to every smell prompt. It pins the response
// schema so normalization has a stable shape to aim at.
//
//go:embed templates/output_contract.txt
var outputContract string

// ProgressFunc reports detection progress to interactive callers after
// each target finishes.
type ProgressFunc func(processed, total int, currentFile string)

// Orchestrator drives the detection loop: it builds one prompt per
// (target, smell) pair, sends each through the provider sequentially, and
// normalizes the responses into findings.
type Orchestrator struct {
	provider port.Provider
	catalog  domain.Catalog
}

// NewOrchestrator creates an orchestrator over a provider and a catalog
// snapshot. The catalog is not reloaded between prompts.
func NewOrchestrator(provider port.Provider, catalog domain.Catalog) *Orchestrator {
	return &Orchestrator{provider: provider, catalog: catalog}
}

// splitLines splits the way editors count lines: CRLF and lone CR are
// line breaks, and a single trailing newline does not yield a final
// empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// numberCodeLines prefixes each line with its 1-based number, matching
// the "12: ..." convention the output contract promises the model.
func numberCodeLines(code string) string {
	lines := splitLines(code)
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(line)
	}
	return b.String()
}

// BuildPrompt assembles the full prompt for one smell and one target:
// the smell's prompt text for the requested mode, the fixed output
// contract, and the target code with numbered lines.
func (o *Orchestrator) BuildPrompt(smellID string, target domain.DetectionTarget, mode domain.PromptMode) (string, error) {
	smell, err := o.catalog.GetSmell(smellID)
	if err != nil {
		return "", err
	}
	smellPrompt, err := smell.Prompt(mode)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(smellPrompt)
	b.WriteString("\n\n")
	b.WriteString(outputContract)
	b.WriteString("\n")
	fmt.Fprintf(&b, "FILENAME: %s\n", target.Filename)
	b.WriteString("CODE (numbered):\n")
	b.WriteString(numberCodeLines(target.Code))
	b.WriteString("\n")
	return b.String(), nil
}

// Detect runs every requested smell against every target. Smells that
// are not ready for detection are skipped without sending a prompt; an
// unknown smell id or a provider failure aborts the run. Stats count the
// requested targets and smells, not just the ones that produced prompts.
func (o *Orchestrator) Detect(targets []domain.DetectionTarget, smellIDs []string, promptMode domain.PromptMode, normalizeMode domain.NormalizeMode, progress ProgressFunc) ([]domain.Finding, domain.RunStats, error) {
	var findings []domain.Finding
	promptsSent := 0

	for i, target := range targets {
		for _, smellID := range smellIDs {
			smell, err := o.catalog.GetSmell(smellID)
			if err != nil {
				return nil, domain.RunStats{}, err
			}
			if !smell.ReadyForDetection() {
				continue
			}

			prompt, err := o.BuildPrompt(smellID, target, promptMode)
			if err != nil {
				return nil, domain.RunStats{}, err
			}
			raw, err := o.provider.Generate(prompt)
			if err != nil {
				return nil, domain.RunStats{}, fmt.Errorf("provider failed on %s: %w", target.Filename, err)
			}
			promptsSent++
			findings = append(findings, normalizeResponse(raw, target.Filename, smell, normalizeMode)...)
		}
		if progress != nil {
			progress(i+1, len(targets), target.Filename)
		}
	}

	stats := domain.RunStats{
		PromptsSent:      promptsSent,
		TargetsProcessed: len(targets),
		SmellsProcessed:  len(smellIDs),
	}
	return findings, stats, nil
}

// DetectForEngineering runs a single smell against the targets without
// the readiness gate, so draft-only and disabled smells can be trialed.
func (o *Orchestrator) DetectForEngineering(targets []domain.DetectionTarget, smellID string, promptMode domain.PromptMode, normalizeMode domain.NormalizeMode) ([]domain.Finding, domain.RunStats, error) {
	findings, stats, _, err := o.detectSingle(targets, smellID, promptMode, normalizeMode, false)
	return findings, stats, err
}

// DetectForEngineeringWithRaw is DetectForEngineering plus the raw
// provider response per filename, for raw-dump writers.
func (o *Orchestrator) DetectForEngineeringWithRaw(targets []domain.DetectionTarget, smellID string, promptMode domain.PromptMode, normalizeMode domain.NormalizeMode) ([]domain.Finding, domain.RunStats, map[string]string, error) {
	return o.detectSingle(targets, smellID, promptMode, normalizeMode, true)
}

func (o *Orchestrator) detectSingle(targets []domain.DetectionTarget, smellID string, promptMode domain.PromptMode, normalizeMode domain.NormalizeMode, keepRaw bool) ([]domain.Finding, domain.RunStats, map[string]string, error) {
	smell, err := o.catalog.GetSmell(smellID)
	if err != nil {
		return nil, domain.RunStats{}, nil, err
	}

	var findings []domain.Finding
	var rawByFile map[string]string
	if keepRaw {
		rawByFile = make(map[string]string, len(targets))
	}
	promptsSent := 0

	for _, target := range targets {
		prompt, err := o.BuildPrompt(smellID, target, promptMode)
		if err != nil {
			return nil, domain.RunStats{}, nil, err
		}
		raw, err := o.provider.Generate(prompt)
		if err != nil {
			return nil, domain.RunStats{}, nil, fmt.Errorf("provider failed on %s: %w", target.Filename, err)
		}
		if keepRaw {
			rawByFile[target.Filename] = raw
		}
		promptsSent++
		findings = append(findings, normalizeResponse(raw, target.Filename, smell, normalizeMode)...)
	}

	stats := domain.RunStats{
		PromptsSent:      promptsSent,
		TargetsProcessed: len(targets),
		SmellsProcessed:  1,
	}
	return findings, stats, rawByFile, nil
}
