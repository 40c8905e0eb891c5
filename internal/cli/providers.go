package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"sniff/internal/adapter/provider"
	"sniff/internal/domain"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage LLM providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	RunE:  runProvidersList,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd)
}

func runProvidersList(cmd *cobra.Command, args []string) error {
	svc, err := newCatalogService()
	if err != nil {
		return err
	}

	providers, err := svc.ListProviders()
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		fmt.Println("No providers configured.")
		return nil
	}

	for _, p := range providers {
		fmt.Printf("%-16s %-6s %s\n", p.ProviderID, p.Kind, providerDetail(p))
	}
	return nil
}

func providerDetail(p domain.ProviderDefinition) string {
	switch p.Kind {
	case domain.ProviderLocal:
		model := provider.DefaultLocalModel
		host := provider.DefaultOllamaHost
		if p.Local != nil {
			if p.Local.ModelName != "" {
				model = p.Local.ModelName
			}
			if p.Local.Host != "" {
				host = p.Local.Host
			}
		}
		return fmt.Sprintf("model=%s host=%s", model, host)
	case domain.ProviderAPI:
		if p.API == nil {
			return "base_url=(unset)"
		}
		timeout := p.API.TimeoutS
		if timeout <= 0 {
			timeout = provider.DefaultAPITimeout.Seconds()
		}
		return fmt.Sprintf("base_url=%s timeout=%gs", p.API.BaseURL, timeout)
	default:
		return ""
	}
}
