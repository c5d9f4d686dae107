package types

// Diagnostic kinds reported while decoding. None of them are failures.
const (
	DiagLibraryMissing     = "library_missing"      // no LIBRARY wrapper, single-member file assumed
	DiagDescriptorAbsent   = "descriptor_absent"    // DSCRPTR section skipped
	DiagHeaderDialect      = "header_dialect"       // single-card or two-card NAMESTR/OBS banners
	DiagCountHintMismatch  = "count_hint_mismatch"  // NAMESTR hint disagrees with the computed count
	DiagFillerCards        = "filler_cards"         // zero cards skipped before the descriptors
	DiagBlankDescriptors   = "blank_descriptors"    // trailing all-filler descriptor records dropped
	DiagTrailingFiller     = "trailing_filler"      // filler discarded after the last row
	DiagPaddedStride       = "padded_stride"        // rows are padded to a multiple of 8 bytes
	DiagPartialCard        = "partial_card"         // stream ended inside a card
	DiagShortRows          = "short_rows"           // rows skipped because their bytes ran short
	DiagBlankRows          = "blank_rows"           // all-blank rows in the last card's padding dropped
	DiagRowLimit           = "row_limit"            // decoding stopped at the configured row limit
)

// Diagnostic is a structured note about a tolerated deviation in the input.
type Diagnostic struct {
	Kind    string `json:"kind" yaml:"kind"`
	Offset  int64  `json:"offset" yaml:"offset"`
	Message string `json:"message" yaml:"message"`
	Count   int    `json:"count,omitempty" yaml:"count,omitempty"`
}
