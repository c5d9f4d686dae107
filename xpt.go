// Package xpt decodes SAS XPORT Version 5/6 transport files.
//
// A transport file holds one or more datasets ("members"), each with
// column metadata and fixed-width rows of IBM/370 floating point numbers
// and code page strings. The decoder tolerates the layout variations seen
// in files from different writers and reports them as diagnostics.
//
// # Basic Usage
//
//	datasets, err := xpt.DecodeFile("dm.xpt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, ds := range datasets {
//	    fmt.Printf("%s: %d variables, %d rows\n", ds.Name, len(ds.Variables), len(ds.Rows))
//	}
//
// # Options
//
// Decoding is configured with functional options:
//
//	datasets, err := xpt.DecodeBytes(data,
//	    xpt.WithMaxRows(10),
//	    xpt.WithLogger(slog.Default()),
//	)
package xpt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/xpttools/xpt/pkg/decoder"
	"github.com/xpttools/xpt/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/xpttools/xpt" without subpackages.
type (
	// Dataset is one decoded member.
	Dataset = types.Dataset

	// VarMeta describes one variable.
	VarMeta = types.VarMeta

	// Row is one observation.
	Row = types.Row

	// Cell is one value of a row.
	Cell = types.Cell

	// Transport is a decoded file including its LIBRARY metadata.
	Transport = types.Transport

	// Diagnostic is a note about a tolerated deviation in the input.
	Diagnostic = types.Diagnostic

	// Option configures decoding.
	Option = decoder.Option
)

// Re-export decoding options.
var (
	WithLogger          = decoder.WithLogger
	WithLayout          = decoder.WithLayout
	WithCharset         = decoder.WithCharset
	WithMaxRows         = decoder.WithMaxRows
	WithPlaceholderName = decoder.WithPlaceholderName
	WithBlankRowTrim    = decoder.WithBlankRowTrim
)

// Decode reads every dataset from r.
func Decode(r io.Reader, opts ...Option) ([]*Dataset, error) {
	return decoder.New(opts...).Decode(r)
}

// DecodeBytes decodes an in-memory transport file.
func DecodeBytes(data []byte, opts ...Option) ([]*Dataset, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// DecodeFile opens and decodes the transport file at path.
func DecodeFile(path string, opts ...Option) ([]*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	datasets, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return datasets, nil
}

// FileResult is the outcome of decoding one path with DecodeFiles.
type FileResult struct {
	Path     string
	Datasets []*Dataset
	Err      error
}

// DecodeFiles decodes independent files concurrently, at most workers at a
// time (all at once when workers <= 0). Per-file failures are reported in
// the results; the returned error is only set when ctx is canceled.
func DecodeFiles(ctx context.Context, paths []string, workers int, opts ...Option) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	d := decoder.New(opts...)

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = decodePath(ctx, d, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func decodePath(ctx context.Context, d *decoder.Decoder, path string) FileResult {
	res := FileResult{Path: path}
	f, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("opening file: %w", err)
		return res
	}
	defer f.Close()

	t, err := d.DecodeTransport(ctx, f)
	if err != nil {
		res.Err = fmt.Errorf("decoding %s: %w", path, err)
		return res
	}
	res.Datasets = t.Datasets
	return res
}
