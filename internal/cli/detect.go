package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"sniff/internal/adapter/provider"
	"sniff/internal/domain"
	"sniff/internal/usecase"
)

var (
	detectInput     string
	detectProvider  string
	detectSmells    []string
	detectMode      string
	detectNormalize string
	detectOutput    string
	detectNoArchive bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run smell detection over a file or project",
	Long: `Send one prompt per (file, smell) pair to the configured provider and
collect the normalized findings into llm_detection_results.csv.

Examples:
  sniff detect -i ./project                  # All detectable smells
  sniff detect -i main.py -s long-method     # One file, one smell
  sniff detect -i ./project --normalize salvage`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVarP(&detectInput, "input", "i", "", "file or directory to analyze (required)")
	detectCmd.Flags().StringVarP(&detectProvider, "provider", "p", "", "provider id (default from config)")
	detectCmd.Flags().StringArrayVarP(&detectSmells, "smell", "s", nil, "smell id to run, repeatable (default: all detectable)")
	detectCmd.Flags().StringVar(&detectMode, "mode", "", "prompt mode: default, draft or draft_if_available")
	detectCmd.Flags().StringVar(&detectNormalize, "normalize", "", "normalize mode: strict or salvage")
	detectCmd.Flags().StringVarP(&detectOutput, "output", "o", "", "output directory (default from config)")
	detectCmd.Flags().BoolVar(&detectNoArchive, "no-archive", false, "skip the run archive")
	detectCmd.MarkFlagRequired("input")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	inputPath, err := filepath.Abs(detectInput)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("input path does not exist: %w", err)
	}

	promptMode, err := domain.ParsePromptMode(valueOr(detectMode, cfg.Detect.PromptMode))
	if err != nil {
		return err
	}
	normalizeMode, err := domain.ParseNormalizeMode(valueOr(detectNormalize, cfg.Detect.Normalize))
	if err != nil {
		return err
	}

	svc, err := newCatalogService()
	if err != nil {
		return err
	}
	catalog, err := svc.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	providerID := valueOr(detectProvider, cfg.Detect.Provider)
	providerDef, err := svc.GetProvider(providerID)
	if err != nil {
		return err
	}
	llm, err := provider.FromDefinition(providerDef)
	if err != nil {
		return err
	}

	smellIDs := detectSmells
	if len(smellIDs) == 0 {
		detectable, err := svc.ListDetectableSmells()
		if err != nil {
			return err
		}
		for _, s := range detectable {
			smellIDs = append(smellIDs, s.SmellID)
		}
	}
	if len(smellIDs) == 0 {
		return fmt.Errorf("no detectable smells in the catalog; draft a prompt with 'sniff prompt draft' and promote it")
	}

	fmt.Printf("Scanning %s...\n", inputPath)
	targets, err := svc.BuildTargets(inputPath)
	if err != nil {
		return err
	}

	// For directory input, report paths relative to it
	if info.IsDir() {
		for i := range targets {
			if rel, err := filepath.Rel(inputPath, targets[i].Filename); err == nil {
				targets[i].Filename = filepath.ToSlash(rel)
			}
		}
	}

	fmt.Printf("Analyzing %d files with %d smells via %s...\n", len(targets), len(smellIDs), providerID)

	orchestrator := usecase.NewOrchestrator(llm, catalog)

	// Create progress bar (will be initialized once we know total files)
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time
	var initialized bool

	progressCallback := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if !initialized {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Detecting[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}

		bar.Set(processed)

		// Calculate and display ETA
		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Detecting[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	startedAt := time.Now()
	findings, stats, err := orchestrator.Detect(targets, smellIDs, promptMode, normalizeMode, progressCallback)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	// Print results
	fmt.Printf("\nDetection complete:\n")
	fmt.Printf("  Prompts sent:     %d\n", stats.PromptsSent)
	fmt.Printf("  Files processed:  %d\n", stats.TargetsProcessed)
	fmt.Printf("  Smells checked:   %d\n", stats.SmellsProcessed)
	fmt.Printf("  Findings:         %d\n", len(findings))

	if len(findings) == 0 {
		fmt.Println("\nNo findings.")
	} else {
		fmt.Printf("\nFindings by file:\n")
		for _, fc := range usecase.BreakdownByFile(findings) {
			fmt.Printf("  %-44s %d\n", fc.Filename, fc.Count)
		}

		outputDir := resolvePath(valueOr(detectOutput, cfg.Detect.Output))
		csvPath := filepath.Join(outputDir, usecase.DetectResultsFilename)
		if err := usecase.WriteFindingsCSV(csvPath, findings); err != nil {
			return err
		}
		fmt.Printf("\nResults written to: %s\n", csvPath)
	}

	if !detectNoArchive {
		rec := domain.RunRecord{
			Kind:          domain.RunKindDetect,
			StartedAt:     startedAt,
			InputPath:     inputPath,
			ProviderID:    providerID,
			SmellIDs:      smellIDs,
			PromptMode:    promptMode.String(),
			NormalizeMode: normalizeMode.String(),
			Stats:         stats,
			Findings:      findings,
		}
		if err := archiveRun(rec); err != nil {
			fmt.Printf("Warning: failed to archive run: %v\n", err)
		}
	}

	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
