package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sniff/config"
	"sniff/internal/adapter/store"
	"sniff/internal/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one archived run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
}

func runsDBPath() string {
	path := cfg.Runs.Path
	if path == "" {
		return config.RunsDBPath(rootDir)
	}
	return resolvePath(path)
}

// archiveRun appends a record to the run archive and assigns its id from
// the start time.
func archiveRun(rec domain.RunRecord) error {
	st, err := store.NewRunStore(runsDBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	rec.RunID = store.NewRunID(rec.StartedAt)
	if err := st.SaveRun(rec); err != nil {
		return err
	}
	fmt.Printf("Run archived as: %s\n", rec.RunID)
	return nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	path := runsDBPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No archived runs.")
		return nil
	}

	st, err := store.NewRunStore(path)
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%-24s %-12s %-16s files=%-4d findings=%d\n",
			r.RunID, r.Kind, r.ProviderID, r.Stats.TargetsProcessed, len(r.Findings))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	path := runsDBPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("no run archive found at %s", path)
	}

	st, err := store.NewRunStore(path)
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer st.Close()

	rec, err := st.GetRun(args[0])
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
