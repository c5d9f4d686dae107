// Package core is the embeddable decoding service shared by the NDJSON
// serve loop and the WASM build: a configured decoder plus an in-memory
// store of everything decoded so far.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/xpttools/xpt/pkg/decoder"
	"github.com/xpttools/xpt/pkg/namestr"
	"github.com/xpttools/xpt/pkg/store"
	"github.com/xpttools/xpt/pkg/types"
)

// Core wraps the decoder and store for decoding operations
type Core struct {
	decoder *decoder.Decoder
	store   store.Store
	logger  DebugLogger
}

// ParseOptions reads Options from JSON. "" yields the defaults.
func ParseOptions(optionsJSON string) (Options, error) {
	var o Options
	if strings.TrimSpace(optionsJSON) == "" {
		return o, nil
	}
	if err := json.Unmarshal([]byte(optionsJSON), &o); err != nil {
		return o, fmt.Errorf("parsing options: %w", err)
	}
	return o, nil
}

// DecoderOptions converts o into decoder options.
func (o Options) DecoderOptions() ([]decoder.Option, error) {
	var opts []decoder.Option
	if o.Layout != "" {
		layout, err := namestr.LayoutByName(o.Layout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, decoder.WithLayout(layout))
	}
	if o.Charset != "" {
		enc, err := htmlindex.Get(o.Charset)
		if err != nil {
			return nil, fmt.Errorf("unknown charset %q: %w", o.Charset, err)
		}
		opts = append(opts, decoder.WithCharset(enc))
	}
	if o.MaxRows > 0 {
		opts = append(opts, decoder.WithMaxRows(o.MaxRows))
	}
	if o.Placeholder != "" {
		opts = append(opts, decoder.WithPlaceholderName(o.Placeholder))
	}
	if o.KeepBlank {
		opts = append(opts, decoder.WithBlankRowTrim(false))
	}
	return opts, nil
}

// NewCore creates a new Core from JSON options (see Options).
func NewCore(optionsJSON string, logger DebugLogger) (*Core, error) {
	if logger == nil {
		logger = NoopLogger{}
	}

	o, err := ParseOptions(optionsJSON)
	if err != nil {
		logger.Log("ParseOptions failed: %v", err)
		return nil, err
	}
	opts, err := o.DecoderOptions()
	if err != nil {
		logger.Log("DecoderOptions failed: %v", err)
		return nil, err
	}

	s, err := store.New(store.Config{Path: ":memory:"})
	if err != nil {
		logger.Log("store.New failed: %v", err)
		return nil, err
	}

	logger.Log("NewCore complete (layout=%q charset=%q max_rows=%d)", o.Layout, o.Charset, o.MaxRows)
	return &Core{
		decoder: decoder.New(opts...),
		store:   s,
		logger:  logger,
	}, nil
}

// Decode decodes one transport file and keeps its datasets.
func (c *Core) Decode(ctx context.Context, content []byte, source string) (*DecodeResult, error) {
	tr, err := c.decoder.DecodeTransport(ctx, bytes.NewReader(content))
	if err != nil {
		c.logger.Log("decode %s failed: %v", source, err)
		return nil, err
	}

	for _, ds := range tr.Datasets {
		if _, err := c.store.AddDataset(source, ds); err != nil {
			return nil, fmt.Errorf("storing %s: %w", ds.Name, err)
		}
	}
	c.logger.Log("decoded %s: %d datasets", source, len(tr.Datasets))

	return &DecodeResult{
		Source:   source,
		BlobID:   types.ComputeBlobID(content),
		Library:  tr.Library,
		Datasets: tr.Datasets,
	}, nil
}

// DecodeBatch decodes multiple items. A failing item is reported in its
// result and does not stop the batch.
func (c *Core) DecodeBatch(ctx context.Context, items []ContentItem) (*BatchDecodeResult, error) {
	out := &BatchDecodeResult{Results: make([]DecodeResult, 0, len(items))}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := c.Decode(ctx, item.Content, item.Source)
		if err != nil {
			out.Results = append(out.Results, DecodeResult{
				Source: item.Source,
				BlobID: types.ComputeBlobID(item.Content),
				Error:  err.Error(),
			})
			out.Failed++
			continue
		}
		out.Results = append(out.Results, *res)
		out.Datasets += len(res.Datasets)
	}
	return out, nil
}

// Datasets lists every dataset decoded by this Core.
func (c *Core) Datasets() ([]*store.DatasetInfo, error) {
	return c.store.GetDatasets()
}

// Close releases decoder resources
func (c *Core) Close() {
	if c.store != nil {
		c.store.Close()
	}
}
