package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"sniff/internal/domain"
)

func TestEngineeringRun_SplitsValidFromParseErrors(t *testing.T) {
	responses := map[string]string{
		"a.py": `{"findings": [{"line": 3, "description": "found"}]}`,
		"b.py": "the model rambled instead of answering",
	}
	p := &scriptedProvider{generate: func(prompt string) (string, error) {
		for name, resp := range responses {
			if strings.Contains(prompt, "FILENAME: "+name+"\n") {
				return resp, nil
			}
		}
		return "", fmt.Errorf("unexpected prompt")
	}}

	runner := NewEngineeringRunner(p, "local-ollama", testCatalog())
	result, err := runner.Run(context.Background(), "long-method", domain.PromptDefault, "",
		testTargets(), domain.NormalizeSalvage, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Canceled {
		t.Error("expected run to complete")
	}
	if len(result.Findings) != 2 {
		t.Fatalf("expected 2 findings (one real, one diagnostic), got %d", len(result.Findings))
	}
	if len(result.Valid) != 1 || result.Valid[0].Line != 3 {
		t.Errorf("expected 1 valid finding, got %+v", result.Valid)
	}
	if result.ParseErrorCount != 1 {
		t.Errorf("expected 1 parse error, got %d", result.ParseErrorCount)
	}
	if result.Stats.PromptsSent != 2 || result.Stats.TargetsProcessed != 2 || result.Stats.SmellsProcessed != 1 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
}

func TestEngineeringRun_RawRecords(t *testing.T) {
	p := &scriptedProvider{generate: func(string) (string, error) {
		return `{"findings": []}`, nil
	}}

	runner := NewEngineeringRunner(p, "local-ollama", testCatalog())
	result, err := runner.Run(context.Background(), "draft-only", domain.PromptDraft, "",
		testTargets(), domain.NormalizeSalvage, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Raw) != 2 {
		t.Fatalf("expected 2 raw records, got %d", len(result.Raw))
	}
	first := result.Raw[0]
	if first.Filename != "a.py" {
		t.Errorf("expected a.py first, got %q", first.Filename)
	}
	if first.SmellID != "draft-only" || first.ProviderID != "local-ollama" {
		t.Errorf("record identity wrong: %+v", first)
	}
	if first.PromptMode != "draft" {
		t.Errorf("expected prompt mode draft, got %q", first.PromptMode)
	}
	if first.RawResponse != `{"findings": []}` {
		t.Errorf("expected raw response stored, got %q", first.RawResponse)
	}
}

func TestEngineeringRun_DraftOverride(t *testing.T) {
	p := &scriptedProvider{}
	original := testCatalog()
	runner := NewEngineeringRunner(p, "local-ollama", original)

	_, err := runner.Run(context.Background(), "long-method", domain.PromptDraft, "Focus on 50+ line functions.",
		testTargets()[:1], domain.NormalizeSalvage, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.prompts) != 1 || !strings.HasPrefix(p.prompts[0], "Focus on 50+ line functions.\n\n") {
		t.Error("expected override text to drive the prompt")
	}

	// The override lives on a clone; the caller's catalog keeps its state.
	smell, err := original.GetSmell("long-method")
	if err != nil {
		t.Fatal(err)
	}
	if smell.DraftPrompt != "" {
		t.Errorf("expected original draft untouched, got %q", smell.DraftPrompt)
	}
}

func TestEngineeringRun_OverrideIgnoredOutsideDraftMode(t *testing.T) {
	p := &scriptedProvider{}
	runner := NewEngineeringRunner(p, "local-ollama", testCatalog())

	_, err := runner.Run(context.Background(), "long-method", domain.PromptDefault, "override",
		testTargets()[:1], domain.NormalizeSalvage, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(p.prompts[0], "Find long methods.\n\n") {
		t.Error("expected stored default prompt in default mode")
	}
}

func TestEngineeringRun_CancelBetweenFiles(t *testing.T) {
	p := &scriptedProvider{}
	runner := NewEngineeringRunner(p, "local-ollama", testCatalog())

	ctx, cancel := context.WithCancel(context.Background())
	var calls []int
	onFile := func(index, total int, filename string, chars int) {
		calls = append(calls, index)
		// Request a stop while the first file is in flight.
		cancel()
	}

	result, err := runner.Run(ctx, "long-method", domain.PromptDefault, "",
		testTargets(), domain.NormalizeSalvage, onFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Canceled {
		t.Error("expected canceled result")
	}
	if len(calls) != 1 {
		t.Errorf("expected only the first file announced, got %v", calls)
	}
	if result.Stats.TargetsProcessed != 1 {
		t.Errorf("expected 1 target processed, got %d", result.Stats.TargetsProcessed)
	}
	if len(result.Raw) != 1 {
		t.Errorf("expected the in-flight file to finish, got %d raw records", len(result.Raw))
	}
}

func TestEngineeringRun_FileProgress(t *testing.T) {
	p := &scriptedProvider{}
	runner := NewEngineeringRunner(p, "local-ollama", testCatalog())

	var seen []string
	onFile := func(index, total int, filename string, chars int) {
		seen = append(seen, fmt.Sprintf("%d/%d %s %d", index, total, filename, chars))
	}

	_, err := runner.Run(context.Background(), "long-method", domain.PromptDefault, "",
		testTargets(), domain.NormalizeSalvage, onFile)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"1/2 a.py 6", "2/2 b.py 6"}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("expected %q, got %q", want[i], seen[i])
		}
	}
}

func TestEngineeringRun_UnknownSmell(t *testing.T) {
	runner := NewEngineeringRunner(&scriptedProvider{}, "local-ollama", testCatalog())

	_, err := runner.Run(context.Background(), "nope", domain.PromptDefault, "",
		testTargets(), domain.NormalizeSalvage, nil)
	if err == nil {
		t.Error("expected error for unknown smell, got nil")
	}
}
