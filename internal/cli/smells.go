package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"sniff/internal/domain"
)

var (
	smellsAll      bool
	addName        string
	addDescription string
	describeText   string
)

var smellsCmd = &cobra.Command{
	Use:   "smells",
	Short: "Manage smell definitions",
}

var smellsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List smells",
	Long: `List detectable smells (enabled, with a default prompt). Use --all to
include disabled and prompt-less definitions.`,
	RunE: runSmellsList,
}

var smellsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user-defined smell",
	Long: `Add a new smell definition. The smell starts disabled and without a
prompt; draft one with 'sniff prompt draft' and promote it when it works.

Examples:
  sniff smells add --name "Long Method" --description "Function does too much"`,
	RunE: runSmellsAdd,
}

var smellsRemoveCmd = &cobra.Command{
	Use:   "remove <smell-id>",
	Short: "Remove a smell definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runSmellsRemove,
}

var smellsDescribeCmd = &cobra.Command{
	Use:   "describe <smell-id>",
	Short: "Update a smell's description",
	Args:  cobra.ExactArgs(1),
	RunE:  runSmellsDescribe,
}

func init() {
	rootCmd.AddCommand(smellsCmd)
	smellsCmd.AddCommand(smellsListCmd, smellsAddCmd, smellsRemoveCmd, smellsDescribeCmd)
	smellsListCmd.Flags().BoolVar(&smellsAll, "all", false, "include disabled and prompt-less smells")
	smellsAddCmd.Flags().StringVarP(&addName, "name", "n", "", "display name (required)")
	smellsAddCmd.Flags().StringVar(&addDescription, "description", "", "short description")
	smellsAddCmd.MarkFlagRequired("name")
	smellsDescribeCmd.Flags().StringVar(&describeText, "description", "", "new description (required)")
	smellsDescribeCmd.MarkFlagRequired("description")
}

func runSmellsList(cmd *cobra.Command, args []string) error {
	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	var smells []domain.SmellDefinition
	if smellsAll {
		smells, err = svc.ListSmells()
	} else {
		smells, err = svc.ListDetectableSmells()
	}
	if err != nil {
		return err
	}

	if len(smells) == 0 {
		fmt.Println("No smells found.")
		return nil
	}

	for _, s := range smells {
		line := fmt.Sprintf("%-28s %s", s.SmellID, s.DisplayName)
		if smellsAll {
			var notes []string
			if !s.Enabled {
				notes = append(notes, "disabled")
			}
			if strings.TrimSpace(s.DefaultPrompt) == "" {
				notes = append(notes, "no default prompt")
			}
			if strings.TrimSpace(s.DraftPrompt) != "" {
				notes = append(notes, "has draft")
			}
			if len(notes) > 0 {
				line += " (" + strings.Join(notes, ", ") + ")"
			}
		}
		fmt.Println(line)
		if s.Description != "" {
			fmt.Printf("    %s\n", s.Description)
		}
	}
	return nil
}

func runSmellsAdd(cmd *cobra.Command, args []string) error {
	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	id, err := svc.AddSmell(addName, addDescription)
	if err != nil {
		return err
	}

	fmt.Printf("Added smell: %s\n", id)
	fmt.Println("It stays disabled until a default prompt is promoted.")
	return nil
}

func runSmellsRemove(cmd *cobra.Command, args []string) error {
	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	if err := svc.RemoveSmell(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed smell: %s\n", args[0])
	return nil
}

func runSmellsDescribe(cmd *cobra.Command, args []string) error {
	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	if err := svc.UpdateSmellDescription(args[0], describeText); err != nil {
		return err
	}
	fmt.Printf("Updated description for: %s\n", args[0])
	return nil
}
