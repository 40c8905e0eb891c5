package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sniff/internal/domain"
)

var (
	promptModeName string
	draftText      string
	draftFile      string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Work with smell prompts",
}

var promptShowCmd = &cobra.Command{
	Use:   "show <smell-id>",
	Short: "Print the prompt a detection run would use",
	Long: `Print the prompt text selected by the given mode: the default prompt,
the draft, or the draft when one exists (draft_if_available).`,
	Args: cobra.ExactArgs(1),
	RunE: runPromptShow,
}

var promptDraftCmd = &cobra.Command{
	Use:   "draft <smell-id>",
	Short: "Save a draft prompt",
	Long: `Save a draft prompt for a smell without touching its default prompt.
Trial it with 'sniff lab' and promote it with 'sniff prompt promote'.

Examples:
  sniff prompt draft long-method --file prompt.txt
  sniff prompt draft long-method --text "You are looking for ..."`,
	Args: cobra.ExactArgs(1),
	RunE: runPromptDraft,
}

var promptPromoteCmd = &cobra.Command{
	Use:   "promote <smell-id>",
	Short: "Promote the draft prompt to default",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptPromote,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.AddCommand(promptShowCmd, promptDraftCmd, promptPromoteCmd)
	promptShowCmd.Flags().StringVar(&promptModeName, "mode", "default", "prompt mode: default, draft or draft_if_available")
	promptDraftCmd.Flags().StringVar(&draftText, "text", "", "draft prompt text")
	promptDraftCmd.Flags().StringVar(&draftFile, "file", "", "file containing the draft prompt")
}

func runPromptShow(cmd *cobra.Command, args []string) error {
	mode, err := domain.ParsePromptMode(promptModeName)
	if err != nil {
		return err
	}

	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	prompt, err := svc.GetPrompt(args[0], mode)
	if err != nil {
		return err
	}
	fmt.Println(prompt)
	return nil
}

func runPromptDraft(cmd *cobra.Command, args []string) error {
	if (draftText == "") == (draftFile == "") {
		return fmt.Errorf("provide exactly one of --text or --file")
	}

	text := draftText
	if draftFile != "" {
		data, err := os.ReadFile(draftFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		text = string(data)
	}

	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	if err := svc.SaveDraftPrompt(args[0], text); err != nil {
		return err
	}
	fmt.Printf("Draft saved for: %s\n", args[0])
	fmt.Printf("Trial it with: sniff lab -s %s -i <project>\n", args[0])
	return nil
}

func runPromptPromote(cmd *cobra.Command, args []string) error {
	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	if err := svc.PromoteDraftToDefault(args[0]); err != nil {
		return err
	}
	fmt.Printf("Draft promoted to default prompt for: %s\n", args[0])
	return nil
}
