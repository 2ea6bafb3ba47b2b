package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docanalysis-backend/internal/analyses"
	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/shared/storage/object/local"
)

type compareOutput struct {
	Model  string `json:"model"`
	Result string `json:"result"`
}

func newCompareCmd(selectModels SelectModels) *cobra.Command {
	var (
		prompt string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compare [files...]",
		Short: "Compare files, or follow a custom instruction over them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if selectModels == nil {
				return errors.New("model provider not configured")
			}
			ctx := cmd.Context()
			selection, err := selectModels(ctx)
			if err != nil {
				return err
			}

			workDir, err := os.MkdirTemp("", "docanalyze-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(workDir)

			store := local.New(filepath.Join(workDir, "store"))
			docs := make([]documents.Document, 0, len(args))
			for _, path := range args {
				doc, err := stage(cmd, store, path)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}

			orchestrator, err := analyses.NewOrchestrator(analyses.OrchestratorConfig{
				Completer:  selection.Completer,
				Primary:    selection.Primary,
				Fallbacks:  selection.Fallbacks,
				Store:      store,
				ScratchDir: workDir,
			})
			if err != nil {
				return err
			}

			out, err := orchestrator.Compare(ctx, docs, prompt)
			if err != nil {
				return err
			}
			if asJSON {
				data, err := json.MarshalIndent(compareOutput{Model: out.Model, Result: out.Text}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal result: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "custom instruction instead of the default comparison")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the model and result as JSON")
	return cmd
}

func stage(cmd *cobra.Command, store *local.Store, path string) (documents.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return documents.Document{}, err
	}
	defer f.Close()

	fileName := filepath.Base(path)
	key, size, sniffed, err := store.Save(cmd.Context(), fileName, f)
	if err != nil {
		return documents.Document{}, fmt.Errorf("stage %s: %w", path, err)
	}
	return documents.Document{
		ID:         uuid.NewString(),
		Name:       documents.DefaultName(fileName),
		FileName:   fileName,
		FileType:   documents.ResolveFileType(fileName, sniffed),
		SizeBytes:  size,
		StorageKey: key,
	}, nil
}
