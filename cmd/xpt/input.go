package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/core"
	"github.com/xpttools/xpt/pkg/decoder"
	"github.com/xpttools/xpt/pkg/logger"
	"github.com/xpttools/xpt/pkg/source"
	"github.com/xpttools/xpt/pkg/types"
)

// newSourceEngine builds the fetch engine from the global flags.
func newSourceEngine() *source.Engine {
	return source.NewDefaultEngine(source.Config{
		HTTPRetries: httpRetries,
		S3: source.S3Config{
			Region:          s3Region,
			Endpoint:        s3Endpoint,
			AccessKeyID:     s3AccessKey,
			SecretAccessKey: s3SecretKey,
		},
		AzureConnectionString: azureConnString,
		Logger:                logger.L(),
	})
}

// newDecoder builds a decoder from the global flags. maxRows <= 0 reads
// every row.
func newDecoder(maxRows int) (*decoder.Decoder, error) {
	opts, err := core.Options{
		Layout:    decodeLayout,
		Charset:   decodeCharset,
		MaxRows:   maxRows,
		KeepBlank: keepBlankRows,
	}.DecoderOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, decoder.WithLogger(logger.L()))
	return decoder.New(opts...), nil
}

// loadTransport fetches and decodes the transport file at location.
func loadTransport(ctx context.Context, location string, maxRows int) (*types.Transport, error) {
	d, err := newDecoder(maxRows)
	if err != nil {
		return nil, err
	}

	obj, err := newSourceEngine().Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	logger.L().Debug("fetched input", "location", location, "bytes", len(obj.Content), "kind", obj.Provenance.Kind())

	t, err := d.DecodeTransport(ctx, bytes.NewReader(obj.Content))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}
	return t, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
