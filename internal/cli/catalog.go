package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"sniff/internal/adapter/catalog"
)

var catalogForce bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the catalog file",
}

var catalogInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default catalog seed",
	Long: `Create the catalog JSON file with the default Ollama provider and no
smells. Refuses to overwrite an existing catalog unless --force.`,
	RunE: runCatalogInit,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogInitCmd)
	catalogInitCmd.Flags().BoolVar(&catalogForce, "force", false, "overwrite an existing catalog")
}

func runCatalogInit(cmd *cobra.Command, args []string) error {
	path := catalogPath()
	st := catalog.NewStore(path)

	if st.Exists() && !catalogForce {
		return fmt.Errorf("catalog already exists at %s (use --force to overwrite)", path)
	}

	seed := catalog.DefaultCatalog()
	if err := st.Save(seed); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	fmt.Printf("Catalog written to: %s\n", path)
	fmt.Printf("  Smells:    %d\n", len(seed.Smells))
	fmt.Printf("  Providers: %d\n", len(seed.Providers))
	return nil
}
