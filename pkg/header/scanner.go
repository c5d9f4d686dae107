package header

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xpttools/xpt/pkg/card"
	"github.com/xpttools/xpt/pkg/types"
)

// MaxHeaderDataCards bounds the non-banner cards accepted between two banners.
const MaxHeaderDataCards = 4

// Dialect is the per-member banner layout of the NAMESTR and OBS sections.
type Dialect int

const (
	// SingleCard banners are followed directly by their payload (TS-140).
	SingleCard Dialect = iota
	// TwoCard banners carry one header data card before the payload.
	TwoCard
)

func (d Dialect) String() string {
	if d == TwoCard {
		return "two-card"
	}
	return "single-card"
}

// Member is the header information of one member, up to the descriptor block.
type Member struct {
	Offset     int64 // offset of the first banner of the member
	Name       string
	Label      string
	Type       string
	SASVersion string
	OS         string
	Created    time.Time
	Modified   time.Time

	CountHint       int   // variable count announced in the NAMESTR header, 0 if absent
	Dialect         Dialect
	DescriptorStart int64 // offset of the first descriptor byte
	ObsOffset       int64 // offset of the OBS banner

	Diagnostics []types.Diagnostic
}

func (m *Member) note(kind string, offset int64, count int, format string, args ...any) {
	m.Diagnostics = append(m.Diagnostics, types.Diagnostic{
		Kind:    kind,
		Offset:  offset,
		Count:   count,
		Message: fmt.Sprintf(format, args...),
	})
}

// Scanner walks the header sections of a card stream.
type Scanner struct {
	s *card.Stream
}

// NewScanner returns a scanner reading from s.
func NewScanner(s *card.Stream) *Scanner {
	return &Scanner{s: s}
}

// Start consumes the LIBRARY wrapper. A file without one yields a Library
// with Wrapped false and leaves its first card unread.
func (sc *Scanner) Start() (types.Library, error) {
	off := sc.s.Offset()
	c, err := sc.s.Next()
	if errors.Is(err, io.EOF) {
		return types.Library{}, &types.NoDatasetsError{Offset: off}
	}
	if err != nil {
		return types.Library{}, err
	}
	if !IsBanner(&c) {
		return types.Library{}, &types.MalformedHeaderError{Offset: off, Expected: "LIBRARY or MEMBER banner", Found: preview(&c)}
	}

	switch Classify(&c) {
	case SectionV8:
		return types.Library{}, &types.UnsupportedVersionError{Offset: off, Found: preview(&c)}
	case SectionLibrary:
		data, err := sc.dataCards("LIBRARY header data")
		if err != nil {
			return types.Library{}, err
		}
		return parseLibrary(data), nil
	}

	if err := sc.s.Unread(c); err != nil {
		return types.Library{}, err
	}
	return types.Library{}, nil
}

// NextMember consumes the MEMBER, DSCRPTR and NAMESTR headers of the next
// member and positions the stream at its first descriptor record. It
// returns io.EOF when the stream holds no further member.
func (sc *Scanner) NextMember() (*Member, error) {
	m := &Member{Offset: sc.s.Offset()}

	c, err := sc.banner("MEMBER", true)
	if err != nil {
		return nil, err
	}

	var data []card.Card
	section := Classify(&c)
	if section == SectionMember {
		cards, err := sc.dataCards("MEMBER header data")
		if err != nil {
			return nil, err
		}
		data = append(data, cards...)
		if c, err = sc.banner("DSCRPTR or NAMESTR", false); err != nil {
			return nil, err
		}
		section = Classify(&c)
	}

	if section == SectionDescriptor {
		cards, err := sc.dataCards("DSCRPTR header data")
		if err != nil {
			return nil, err
		}
		data = append(data, cards...)
		if c, err = sc.banner("NAMESTR", false); err != nil {
			return nil, err
		}
		section = Classify(&c)
	} else {
		m.note(types.DiagDescriptorAbsent, m.Offset, 0, "member has no DSCRPTR section")
	}

	if section != SectionNamestr {
		return nil, &types.MalformedHeaderError{Offset: sc.s.Offset() - card.Size, Expected: "NAMESTR", Found: preview(&c)}
	}
	m.parseMemberCards(data)
	m.CountHint = countHint(&c)

	if err := sc.namestrPayload(m); err != nil {
		return nil, err
	}
	return m, nil
}

// namestrPayload decides the header dialect and skips zero filler so the
// stream is left at the first descriptor byte.
func (sc *Scanner) namestrPayload(m *Member) error {
	off := sc.s.Offset()
	next, err := sc.s.Peek()
	if errors.Is(err, io.EOF) {
		return &types.UnexpectedEOFError{Offset: off, Expected: "NAMESTR descriptors"}
	}
	if err != nil {
		return err
	}

	// A banner without a count hint is followed by the data card even when
	// that card is zeroed.
	if !IsBanner(&next) && !descriptorShaped(&next) && (m.CountHint == 0 || !next.IsZero()) {
		if _, err := sc.s.Next(); err != nil {
			return err
		}
		m.Dialect = TwoCard
		if m.CountHint == 0 {
			m.CountHint = countHint(&next)
		}
	}
	m.note(types.DiagHeaderDialect, off, 0, "%s NAMESTR/OBS banners", m.Dialect)

	skipped := 0
	for {
		next, err := sc.s.Peek()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if !next.IsZero() {
			break
		}
		if _, err := sc.s.Next(); err != nil {
			return err
		}
		skipped++
	}
	if skipped > 0 {
		m.note(types.DiagFillerCards, off, skipped, "skipped %d zero filler cards before the descriptors", skipped)
	}
	m.DescriptorStart = sc.s.Offset()
	return nil
}

// ReadDescriptorBlock returns every byte between the descriptor start and
// the OBS banner, and consumes the banner.
func (sc *Scanner) ReadDescriptorBlock(m *Member) ([]byte, error) {
	var block []byte
	for {
		off := sc.s.Offset()
		c, err := sc.s.Next()
		if errors.Is(err, io.EOF) {
			return nil, &types.UnexpectedEOFError{Offset: off, Expected: "OBS"}
		}
		if err != nil {
			return nil, err
		}
		if IsBanner(&c) {
			switch Classify(&c) {
			case SectionObs:
				m.ObsOffset = off
				return block, nil
			case SectionV8:
				return nil, &types.UnsupportedVersionError{Offset: off, Found: preview(&c)}
			default:
				return nil, &types.MalformedHeaderError{Offset: off, Expected: "OBS", Found: preview(&c)}
			}
		}
		block = append(block, c[:]...)
	}
}

// EnterObservations consumes the OBS header data card of a two-card member.
// When the input ends inside that card its bytes are noted as a partial card.
func (sc *Scanner) EnterObservations(m *Member) error {
	if m.Dialect != TwoCard {
		return nil
	}
	next, err := sc.s.Peek()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if errors.Is(err, types.ErrTruncatedInput) {
		tail := sc.s.Tail()
		m.note(types.DiagPartialCard, sc.s.Offset()-int64(len(tail)), len(tail),
			"input ends %d bytes into the OBS header data card", len(tail))
		return nil
	}
	if err != nil {
		return err
	}
	if IsBanner(&next) {
		return nil
	}
	_, err = sc.s.Next()
	return err
}

// banner reads the next card and requires a banner. When first is set a
// clean end of stream is reported as io.EOF.
func (sc *Scanner) banner(expected string, first bool) (card.Card, error) {
	off := sc.s.Offset()
	c, err := sc.s.Next()
	if errors.Is(err, io.EOF) {
		if first {
			return c, io.EOF
		}
		return c, &types.UnexpectedEOFError{Offset: off, Expected: expected}
	}
	if err != nil {
		return c, err
	}
	if !IsBanner(&c) {
		return c, &types.MalformedHeaderError{Offset: off, Expected: expected + " banner", Found: preview(&c)}
	}
	switch Classify(&c) {
	case SectionV8:
		return c, &types.UnsupportedVersionError{Offset: off, Found: preview(&c)}
	case SectionNone, SectionLibrary, SectionObs:
		return c, &types.MalformedHeaderError{Offset: off, Expected: expected, Found: preview(&c)}
	}
	return c, nil
}

// dataCards consumes the non-banner cards up to the next banner or the end
// of the stream; the caller reports a missing banner.
func (sc *Scanner) dataCards(what string) ([]card.Card, error) {
	var data []card.Card
	for {
		off := sc.s.Offset()
		c, err := sc.s.Peek()
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
		if IsBanner(&c) {
			return data, nil
		}
		if len(data) == MaxHeaderDataCards {
			return nil, &types.MalformedHeaderError{Offset: off, Expected: "banner after " + what, Found: preview(&c)}
		}
		if _, err := sc.s.Next(); err != nil {
			return nil, err
		}
		data = append(data, c)
	}
}
