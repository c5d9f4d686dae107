package main

import (
	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/logger"
)

var (
	verbose   bool
	quiet     bool
	logFormat string
	logOutput string

	// Decoder options shared by every command that reads transport files.
	decodeLayout  string
	decodeCharset string
	keepBlankRows bool

	// Remote input credentials.
	httpRetries     int
	s3Region        string
	s3Endpoint      string
	s3AccessKey     string
	s3SecretKey     string
	azureConnString string
)

var rootCmd = &cobra.Command{
	Use:   "xpt",
	Short: "xpt - SAS XPORT transport file decoder",
	Long: `xpt decodes SAS XPORT Version 5/6 transport files (.xpt) into column
metadata and typed rows, and exports them as CSV, JSON, YAML, Parquet,
SQLite or Postgres tables.

Inputs may be local paths, http(s):// URLs, s3://bucket/key or
azblob://account/container/blob locations.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	pf.StringVar(&logFormat, "log-format", "text", "Log format: text, json")
	pf.StringVar(&logOutput, "log-output", "stderr", "Log output: stderr, stdout or a file path")

	pf.StringVar(&decodeLayout, "layout", "sequential", "Row layout: sequential, declared")
	pf.StringVar(&decodeCharset, "charset", "", "Character encoding of text fields (default windows-1252)")
	pf.BoolVar(&keepBlankRows, "keep-blank-rows", false, "Keep all-blank rows in the padding of the last card")

	pf.IntVar(&httpRetries, "http-retries", 3, "Retries for http(s) inputs")
	pf.StringVar(&s3Region, "s3-region", "", "AWS region for s3:// inputs")
	pf.StringVar(&s3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (MinIO, LocalStack)")
	pf.StringVar(&s3AccessKey, "s3-access-key", "", "S3 access key ID (default: SDK credential chain)")
	pf.StringVar(&s3SecretKey, "s3-secret-key", "", "S3 secret access key")
	pf.StringVar(&azureConnString, "azure-connection-string", "", "Azure storage connection string for azblob:// inputs")

	// Add subcommands
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(headCmd)
	rootCmd.AddCommand(csvCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging maps --verbose/--quiet onto the process logger.
func setupLogging(cmd *cobra.Command, args []string) error {
	level := "WARN"
	switch {
	case quiet:
		level = "ERROR"
	case verbose:
		level = "DEBUG"
	}
	return logger.Init(logger.Config{
		Level:  level,
		Format: logFormat,
		Output: logOutput,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
