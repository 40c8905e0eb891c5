package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"sniff/internal/adapter/provider"
	"sniff/internal/domain"
	"sniff/internal/usecase"
)

var (
	labInput      string
	labSmell      string
	labProvider   string
	labMode       string
	labNormalize  string
	labPromptFile string
	labOutput     string
	labNoArchive  bool
)

var labCmd = &cobra.Command{
	Use:   "lab",
	Short: "Trial a smell prompt against a project",
	Long: `Run one smell over a project to evaluate a prompt before promoting it.
Draft prompts are trialed without touching the stored catalog, every raw
model response is saved next to the findings, and Ctrl-C stops the run
after the current file.

Examples:
  sniff lab -s long-method -i ./project
  sniff lab -s long-method -i ./project --mode draft --prompt-file try.txt`,
	RunE: runLab,
}

func init() {
	rootCmd.AddCommand(labCmd)
	labCmd.Flags().StringVarP(&labInput, "input", "i", "", "project directory (required)")
	labCmd.Flags().StringVarP(&labSmell, "smell", "s", "", "smell id to trial (required)")
	labCmd.Flags().StringVarP(&labProvider, "provider", "p", "", "provider id (default from config)")
	labCmd.Flags().StringVar(&labMode, "mode", "", "prompt mode: default, draft or draft_if_available")
	labCmd.Flags().StringVar(&labNormalize, "normalize", "", "normalize mode: strict or salvage")
	labCmd.Flags().StringVar(&labPromptFile, "prompt-file", "", "file with a draft prompt override (implies --mode draft)")
	labCmd.Flags().StringVarP(&labOutput, "output", "o", "", "output directory (default from config)")
	labCmd.Flags().BoolVar(&labNoArchive, "no-archive", false, "skip the run archive")
	labCmd.MarkFlagRequired("input")
	labCmd.MarkFlagRequired("smell")
}

func runLab(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	inputPath, err := filepath.Abs(labInput)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}

	svc, err := newCatalogService()
	if err != nil {
		return err
	}
	if err := svc.ValidateEngineeringInputPath(inputPath); err != nil {
		return err
	}

	draftOverride := ""
	if labPromptFile != "" {
		data, err := os.ReadFile(labPromptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		draftOverride = string(data)
		if labMode == "" {
			labMode = "draft"
		}
	}

	promptMode, err := domain.ParsePromptMode(valueOr(labMode, cfg.Engineering.PromptMode))
	if err != nil {
		return err
	}
	normalizeMode, err := domain.ParseNormalizeMode(valueOr(labNormalize, cfg.Engineering.Normalize))
	if err != nil {
		return err
	}

	catalog, err := svc.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if _, err := catalog.GetSmell(labSmell); err != nil {
		return err
	}

	providerID := valueOr(labProvider, cfg.Detect.Provider)
	providerDef, err := svc.GetProvider(providerID)
	if err != nil {
		return err
	}
	llm, err := provider.FromDefinition(providerDef)
	if err != nil {
		return err
	}

	targets, err := svc.BuildTargets(inputPath)
	if err != nil {
		return err
	}
	for i := range targets {
		if rel, err := filepath.Rel(inputPath, targets[i].Filename); err == nil {
			targets[i].Filename = filepath.ToSlash(rel)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Trialing %s on %d files via %s (mode: %s)...\n", labSmell, len(targets), providerID, promptMode)
	fmt.Println("Press Ctrl-C to stop after the current file.")

	runner := usecase.NewEngineeringRunner(llm, providerID, catalog)
	startedAt := time.Now()

	onFile := func(index, total int, filename string, chars int) {
		fmt.Printf("[%d/%d] Analyzing %s (chars: %d)\n", index, total, filename, chars)
	}

	result, err := runner.Run(ctx, labSmell, promptMode, draftOverride, targets, normalizeMode, onFile)
	if err != nil {
		return fmt.Errorf("trial failed: %w", err)
	}

	if result.Canceled {
		fmt.Println("\nStopped early; partial results follow.")
	}

	fmt.Printf("\nTrial complete:\n")
	fmt.Printf("  Prompts sent:     %d\n", result.Stats.PromptsSent)
	fmt.Printf("  Files processed:  %d\n", result.Stats.TargetsProcessed)
	fmt.Printf("  Valid findings:   %d\n", len(result.Valid))
	fmt.Printf("  Parse errors:     %d\n", result.ParseErrorCount)

	outputDir := resolvePath(valueOr(labOutput, cfg.Engineering.Output))
	csvPath, rawPath := usecase.EngineeringOutputNames(outputDir, labSmell, startedAt)
	if err := usecase.WriteFindingsCSV(csvPath, result.Findings); err != nil {
		return err
	}
	if err := usecase.WriteRawJSONL(rawPath, result.Raw); err != nil {
		return err
	}
	fmt.Printf("\nFindings written to: %s\n", csvPath)
	fmt.Printf("Raw responses saved: %s\n", rawPath)

	if !labNoArchive {
		rec := domain.RunRecord{
			Kind:          domain.RunKindEngineering,
			StartedAt:     startedAt,
			InputPath:     inputPath,
			ProviderID:    providerID,
			SmellIDs:      []string{labSmell},
			PromptMode:    promptMode.String(),
			NormalizeMode: normalizeMode.String(),
			Stats:         result.Stats,
			Findings:      result.Findings,
		}
		if err := archiveRun(rec); err != nil {
			fmt.Printf("Warning: failed to archive run: %v\n", err)
		}
	}

	return nil
}
