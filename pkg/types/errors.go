package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is. Every typed error below unwraps to one of them.
var (
	ErrTruncatedInput       = errors.New("truncated input")
	ErrMalformedHeader      = errors.New("malformed header")
	ErrUnexpectedEOF        = errors.New("unexpected end of file")
	ErrNoVariables          = errors.New("no variables described")
	ErrMalformedDescriptor  = errors.New("malformed variable descriptor")
	ErrUnresolvableRowWidth = errors.New("unresolvable row width")
	ErrNoDatasets           = errors.New("no datasets found")
	ErrUnsupportedVersion   = errors.New("unsupported transport version")
)

// TruncatedInputError reports fewer bytes than a fixed-size record needs.
type TruncatedInputError struct {
	Offset int64
	Want   int
	Got    int
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("truncated input at offset %d: want %d bytes, got %d", e.Offset, e.Want, e.Got)
}

func (e *TruncatedInputError) Unwrap() error { return ErrTruncatedInput }

// MalformedHeaderError reports a banner card that does not carry the expected keyword.
type MalformedHeaderError struct {
	Offset   int64
	Expected string
	Found    string // printable preview of the offending card
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed header at offset %d: expected %s, found %q", e.Offset, e.Expected, e.Found)
}

func (e *MalformedHeaderError) Unwrap() error { return ErrMalformedHeader }

// UnexpectedEOFError reports a stream that ended while a section was still required.
type UnexpectedEOFError struct {
	Offset   int64
	Expected string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of file at offset %d: expected %s", e.Offset, e.Expected)
}

func (e *UnexpectedEOFError) Unwrap() error { return ErrUnexpectedEOF }

// NoVariablesError reports a NAMESTR section with no descriptor records.
type NoVariablesError struct {
	Offset int64
	Span   int64
	Hint   int
}

func (e *NoVariablesError) Error() string {
	return fmt.Sprintf("no variables described at offset %d (span %d bytes, header hint %d)", e.Offset, e.Span, e.Hint)
}

func (e *NoVariablesError) Unwrap() error { return ErrNoVariables }

// MalformedDescriptorError reports a descriptor record with impossible field values.
type MalformedDescriptorError struct {
	Offset int64
	Index  int
	Reason string
}

func (e *MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %d at offset %d: %s", e.Index, e.Offset, e.Reason)
}

func (e *MalformedDescriptorError) Unwrap() error { return ErrMalformedDescriptor }

// UnresolvableRowWidthError reports an observation block that neither the
// declared width nor its 8-byte padded variant can slice.
type UnresolvableRowWidthError struct {
	Offset int64
	Width  int
	Padded int
	Total  int
}

func (e *UnresolvableRowWidthError) Error() string {
	return fmt.Sprintf("unresolvable row width at offset %d: %d bytes fit neither width %d nor padded width %d",
		e.Offset, e.Total, e.Width, e.Padded)
}

func (e *UnresolvableRowWidthError) Unwrap() error { return ErrUnresolvableRowWidth }

// NoDatasetsError reports a transport file that contained no member.
type NoDatasetsError struct {
	Offset int64
}

func (e *NoDatasetsError) Error() string {
	return fmt.Sprintf("no datasets found (stream ended at offset %d)", e.Offset)
}

func (e *NoDatasetsError) Unwrap() error { return ErrNoDatasets }

// UnsupportedVersionError reports a V8/V9 banner.
type UnsupportedVersionError struct {
	Offset int64
	Found  string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported transport version at offset %d: %q (only V5/V6 is supported)", e.Offset, e.Found)
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }
