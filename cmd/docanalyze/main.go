package main

// Extract or compare local files:
//   go run ./cmd/docanalyze extract report.pdf
//   go run ./cmd/docanalyze compare a.docx b.docx --prompt "list the differences"

import (
	"os"

	"docanalysis-backend/internal/cli"
	"docanalysis-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()
	if err := cli.NewRootCmd(cli.FromConfig(cfg)).Execute(); err != nil {
		os.Exit(1)
	}
}
