package cli

import (
	"context"

	"github.com/spf13/cobra"

	"docanalysis-backend/internal/llm/provider"
	"docanalysis-backend/internal/shared/config"
)

// SelectModels builds the completer and model order for compare.
type SelectModels func(ctx context.Context) (provider.Selection, error)

// FromConfig selects the provider from environment configuration.
func FromConfig(cfg config.Config) SelectModels {
	return func(ctx context.Context) (provider.Selection, error) {
		return provider.New(ctx, provider.Settings{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.LLMAPIKey,
			Model:    cfg.LLMModel,
			Timeout:  cfg.LLMTimeout,
		})
	}
}

// NewRootCmd returns the docanalyze command tree.
func NewRootCmd(selectModels SelectModels) *cobra.Command {
	root := &cobra.Command{
		Use:   "docanalyze",
		Short: "Extract and compare documents with a language model",
		Long: `docanalyze extracts plain text from txt, pdf, docx, xlsx, csv and json
files and asks a language model to compare them, falling back through a fixed
list of models when one fails.`,
		SilenceUsage: true,
	}
	root.AddCommand(newExtractCmd(), newCompareCmd(selectModels))
	return root
}
