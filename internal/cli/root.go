package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"sniff/config"
	"sniff/internal/adapter/catalog"
	"sniff/internal/adapter/fs"
	"sniff/internal/usecase"
)

var (
	cfgFile     string
	cfg         *config.Config
	rootDir     string
	catalogFile string
)

var rootCmd = &cobra.Command{
	Use:   "sniff",
	Short: "LLM-based code smell detection for Python projects",
	Long: `sniff detects code smells by prompting a large language model once per
(file, smell) pair and normalizing the responses into findings.

Smell definitions and provider settings live in a JSON catalog. Prompts
can be drafted, trialed against a project, and promoted once they work.

Example usage:
  sniff smells list                 # Show detectable smells
  sniff detect -i ./project         # Run detection over a project
  sniff lab -s long-method -i ./p   # Trial a prompt for one smell`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sniff.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "catalog file (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// catalogPath resolves the catalog location: --catalog beats config, and
// relative paths are anchored at the root directory.
func catalogPath() string {
	path := catalogFile
	if path == "" {
		path = cfg.Catalog.Path
	}
	return resolvePath(path)
}

// newCatalogService wires the JSON-backed catalog service every command
// uses. A missing catalog file is seeded with the defaults on first use.
func newCatalogService() (*usecase.CatalogService, error) {
	st := catalog.NewStore(catalogPath())
	if _, err := st.EnsureExists(nil); err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	walker := fs.NewWalker(cfg.Detect.Includes, cfg.Detect.Excludes)
	return usecase.NewCatalogService(st, walker, fs.Reader{}), nil
}

func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}

func valueOr(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
