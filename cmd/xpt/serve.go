package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/core"
	"github.com/xpttools/xpt/pkg/logger"
	"github.com/xpttools/xpt/pkg/serve"
)

var serveMaxRows int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming decoder for embedding hosts",
	Long: `Run xpt as a long-lived streaming server that accepts decode requests
via stdin and writes results to stdout using NDJSON.

Requests: {"type":"decode","payload":{"content":"<base64>","source":"..."}},
"decode_batch" with {"items":[...]}, "list" and "close". The process
answers with a "ready" message first and runs until stdin closes,
a "close" request arrives or SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveMaxRows, "max-rows", 0, "Rows decoded per dataset (0 = all)")
	rootCmd.AddCommand(serveCmd)
}

// slogDebugLogger adapts the process logger to core.DebugLogger.
type slogDebugLogger struct{}

func (slogDebugLogger) Log(format string, args ...interface{}) {
	logger.L().Debug("core", "msg", fmt.Sprintf(format, args...))
}

func runServe(cmd *cobra.Command, args []string) error {
	optionsJSON, err := json.Marshal(core.Options{
		Layout:    decodeLayout,
		Charset:   decodeCharset,
		MaxRows:   serveMaxRows,
		KeepBlank: keepBlankRows,
	})
	if err != nil {
		return err
	}

	c, err := core.NewCore(string(optionsJSON), slogDebugLogger{})
	if err != nil {
		return err
	}
	defer c.Close()

	// Set up signal handling
	ctx, cancel := signal.NotifyContext(commandContext(cmd), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	srv := serve.NewServer(c, cmd.InOrStdin(), cmd.OutOrStdout())
	err = srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
