package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/enum"
	"github.com/xpttools/xpt/pkg/logger"
	"github.com/xpttools/xpt/pkg/store"
	"github.com/xpttools/xpt/pkg/types"
)

var (
	scanOutputPath    string
	scanOutputFormat  string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanArchives      bool
	scanStrict        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <target> [target...]",
	Short: "Decode every transport file below a directory into a database",
	Long: `Walk directories (honoring .gitignore), zip and 7z archives for .xpt files,
decode them and store every dataset in a SQLite database.

Identical files found more than once are decoded once. Datasets already
present in the database (same source and name) are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "xpt.db", "Output database path")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: json, human")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 1<<30, "Maximum file size to read (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().BoolVar(&scanArchives, "archives", true, "Look inside .zip and .7z archives")
	scanCmd.Flags().BoolVar(&scanStrict, "strict", false, "Stop at the first file that fails to decode")
}

// scanSummary is the result of a scan.
type scanSummary struct {
	Files    int          `json:"files"`
	Datasets int          `json:"datasets"`
	Rows     int          `json:"rows"`
	Skipped  int          `json:"skipped"`
	Failed   []scanFailed `json:"failed,omitempty"`
	Output   string       `json:"output"`
}

type scanFailed struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

func runScan(cmd *cobra.Command, args []string) error {
	for _, target := range args {
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("target does not exist: %s", target)
		}
	}

	d, err := newDecoder(0)
	if err != nil {
		return err
	}

	s, err := store.New(store.Config{Path: scanOutputPath})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	ctx := commandContext(cmd)
	log := logger.L()
	summary := scanSummary{Output: scanOutputPath}
	var mu sync.Mutex

	err = createEnumerator(args).Enumerate(ctx, func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		src := prov.Path()
		log.Debug("decoding", "source", src, "blob", blobID.String())

		t, err := d.DecodeTransport(ctx, bytes.NewReader(content))

		mu.Lock()
		defer mu.Unlock()
		summary.Files++

		if err != nil {
			if scanStrict {
				return fmt.Errorf("decoding %s: %w", src, err)
			}
			log.Warn("skipping undecodable file", "source", src, "error", err)
			summary.Failed = append(summary.Failed, scanFailed{Source: src, Error: err.Error()})
			return nil
		}

		for _, ds := range t.Datasets {
			exists, err := s.DatasetExists(src, ds.Name)
			if err != nil {
				return fmt.Errorf("checking dataset: %w", err)
			}
			if exists {
				summary.Skipped++
				continue
			}
			if _, err := s.AddDataset(src, ds); err != nil {
				return fmt.Errorf("storing %s from %s: %w", ds.Name, src, err)
			}
			summary.Datasets++
			summary.Rows += len(ds.Rows)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	return outputSummary(cmd, summary)
}

func createEnumerator(targets []string) enum.Enumerator {
	enumerators := make([]enum.Enumerator, 0, len(targets))
	for _, target := range targets {
		enumerators = append(enumerators, enum.NewFilesystemEnumerator(enum.Config{
			Root:            target,
			IncludeHidden:   scanIncludeHidden,
			MaxFileSize:     scanMaxFileSize,
			FollowSymlinks:  false,
			ExtractArchives: scanArchives,
		}))
	}
	if len(enumerators) == 1 {
		return enumerators[0]
	}
	return enum.NewCombinedEnumerator(enumerators...)
}

func outputSummary(cmd *cobra.Command, summary scanSummary) error {
	switch scanOutputFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	case "human":
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Scan complete: %d files, %d datasets, %d rows", summary.Files, summary.Datasets, summary.Rows)
		if summary.Skipped > 0 {
			fmt.Fprintf(out, " (%d datasets already stored)", summary.Skipped)
		}
		fmt.Fprintln(out)
		for _, f := range summary.Failed {
			fmt.Fprintf(out, "  failed: %s: %s\n", f.Source, f.Error)
		}
		fmt.Fprintf(out, "Results stored in: %s\n", summary.Output)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}
}
