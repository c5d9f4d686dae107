// Package decoder assembles datasets from a transport file by running the
// header scanner, descriptor decoder and row decoder once per member.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/xpttools/xpt/pkg/card"
	"github.com/xpttools/xpt/pkg/header"
	"github.com/xpttools/xpt/pkg/namestr"
	"github.com/xpttools/xpt/pkg/observation"
	"github.com/xpttools/xpt/pkg/types"
)

// Decoder decodes transport files. It holds configuration only, so one
// Decoder may serve concurrent calls on different readers.
type Decoder struct {
	logger      *slog.Logger
	layout      namestr.Layout
	charset     encoding.Encoding
	maxRows     int
	placeholder string
	trimBlank   bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sends decode events and diagnostics to l at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithLayout replaces the default Sequential row layout.
func WithLayout(l namestr.Layout) Option {
	return func(d *Decoder) {
		if l != nil {
			d.layout = l
		}
	}
}

// WithCharset sets the code page of character cells, names and labels.
// Default is Windows-1252.
func WithCharset(enc encoding.Encoding) Option {
	return func(d *Decoder) {
		if enc != nil {
			d.charset = enc
		}
	}
}

// WithMaxRows stops decoding rows after n rows per member. n <= 0 means no limit.
func WithMaxRows(n int) Option {
	return func(d *Decoder) {
		d.maxRows = n
	}
}

// WithPlaceholderName names members whose header has no dataset name.
func WithPlaceholderName(name string) Option {
	return func(d *Decoder) {
		d.placeholder = name
	}
}

// WithBlankRowTrim controls whether trailing all-blank rows that fit in the
// padding of the last card are dropped. It is on by default; turn it off to
// keep every row the block divides into.
func WithBlankRowTrim(on bool) Option {
	return func(d *Decoder) {
		d.trimBlank = on
	}
}

// New returns a Decoder.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		logger:      slog.New(slog.DiscardHandler),
		layout:      namestr.Sequential{},
		charset:     namestr.DefaultCharset,
		placeholder: types.PlaceholderName,
		trimBlank:   true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode returns every dataset of the transport file in r, in file order.
func (d *Decoder) Decode(r io.Reader) ([]*types.Dataset, error) {
	t, err := d.DecodeTransport(context.Background(), r)
	if err != nil {
		return nil, err
	}
	return t.Datasets, nil
}

// DecodeTransport decodes r and also returns the LIBRARY metadata. The
// context is checked between members.
func (d *Decoder) DecodeTransport(ctx context.Context, r io.Reader) (*types.Transport, error) {
	s := card.NewStream(r)
	sc := header.NewScanner(s)

	lib, err := sc.Start()
	if err != nil {
		return nil, fmt.Errorf("reading library header: %w", err)
	}

	t := &types.Transport{Library: lib}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := sc.NextMember()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading member %d header: %w", len(t.Datasets)+1, err)
		}
		ds, err := d.decodeMember(s, sc, m)
		if err != nil {
			return nil, fmt.Errorf("decoding member %d (%s): %w", len(t.Datasets)+1, ds.Name, err)
		}
		t.Datasets = append(t.Datasets, ds)
	}

	if len(t.Datasets) == 0 {
		return nil, &types.NoDatasetsError{Offset: s.Offset()}
	}
	if !lib.Wrapped {
		first := t.Datasets[0]
		first.Diagnostics = append([]types.Diagnostic{{
			Kind:    types.DiagLibraryMissing,
			Message: "no LIBRARY header, file read as bare members",
		}}, first.Diagnostics...)
	}
	for _, ds := range t.Datasets {
		d.logDataset(ds)
	}
	return t, nil
}

// decodeMember reads one member from its descriptor block to the end of its
// rows. The returned dataset is never nil so errors can name it.
func (d *Decoder) decodeMember(s *card.Stream, sc *header.Scanner, m *header.Member) (*types.Dataset, error) {
	ds := &types.Dataset{
		Name:        m.Name,
		Label:       m.Label,
		Type:        m.Type,
		SASVersion:  m.SASVersion,
		OS:          m.OS,
		Created:     m.Created,
		Modified:    m.Modified,
		Diagnostics: append([]types.Diagnostic(nil), m.Diagnostics...),
	}
	if ds.Name == "" {
		ds.Name = d.placeholder
	}

	block, err := sc.ReadDescriptorBlock(m)
	if err != nil {
		return ds, err
	}
	res, err := namestr.Resolve(block, m.CountHint, m.DescriptorStart, d.charset)
	if err != nil {
		return ds, err
	}
	ds.Diagnostics = append(ds.Diagnostics, res.Diagnostics...)

	arr := d.layout.Arrange(res.Variables)
	ds.Variables = arr.Variables

	noted := len(m.Diagnostics)
	if err := sc.EnterObservations(m); err != nil {
		return ds, err
	}
	ds.Diagnostics = append(ds.Diagnostics, m.Diagnostics[noted:]...)
	obs, err := observation.Collect(s, arr.Width)
	if err != nil {
		return ds, err
	}
	st, err := observation.ResolveStride(obs, arr.Width)
	if err != nil {
		return ds, err
	}

	if d.trimBlank {
		if n := st.TrimBlankRows(obs.Data); n > 0 {
			ds.Diagnostics = append(ds.Diagnostics, types.Diagnostic{
				Kind:    types.DiagBlankRows,
				Offset:  obs.Offset + int64(st.Rows*st.Size),
				Count:   n,
				Message: fmt.Sprintf("dropped %d all-blank rows in the padding of the last card", n),
			})
		}
	}

	rows, short := observation.NewDecoder(arr, d.charset).DecodeBlock(obs, st, d.maxRows)
	ds.Rows = rows

	end := obs.Offset + int64(len(obs.Data))
	if st.Padded(arr.Width) {
		ds.Diagnostics = append(ds.Diagnostics, types.Diagnostic{
			Kind:    types.DiagPaddedStride,
			Offset:  obs.Offset,
			Message: fmt.Sprintf("rows of %d bytes are padded to %d", arr.Width, st.Size),
		})
	}
	if st.Filler > 0 {
		ds.Diagnostics = append(ds.Diagnostics, types.Diagnostic{
			Kind:    types.DiagTrailingFiller,
			Offset:  end - int64(st.Filler),
			Count:   st.Filler,
			Message: fmt.Sprintf("discarded %d filler bytes after the last row", st.Filler),
		})
	}
	if obs.Partial > 0 {
		ds.Diagnostics = append(ds.Diagnostics, types.Diagnostic{
			Kind:    types.DiagPartialCard,
			Offset:  end - int64(obs.Partial),
			Count:   obs.Partial,
			Message: fmt.Sprintf("input ends %d bytes into a card", obs.Partial),
		})
	}
	if short > 0 {
		ds.Diagnostics = append(ds.Diagnostics, types.Diagnostic{
			Kind:    types.DiagShortRows,
			Offset:  end,
			Count:   short,
			Message: fmt.Sprintf("skipped %d rows with too few bytes", short),
		})
	}
	if d.maxRows > 0 && st.Rows > d.maxRows {
		ds.Diagnostics = append(ds.Diagnostics, types.Diagnostic{
			Kind:    types.DiagRowLimit,
			Offset:  obs.Offset,
			Count:   st.Rows,
			Message: fmt.Sprintf("kept %d of %d rows", d.maxRows, st.Rows),
		})
	}
	return ds, nil
}

func (d *Decoder) logDataset(ds *types.Dataset) {
	d.logger.Debug("decoded member",
		"member", ds.Name,
		"variables", len(ds.Variables),
		"rows", len(ds.Rows))
	for _, diag := range ds.Diagnostics {
		d.logger.Debug("tolerated deviation",
			"member", ds.Name,
			"kind", diag.Kind,
			"offset", diag.Offset,
			"count", diag.Count,
			"message", diag.Message)
	}
}
