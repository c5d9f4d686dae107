// Package header walks the banner cards of a transport file: the optional
// LIBRARY wrapper and, per member, the MEMBER, DSCRPTR, NAMESTR and OBS
// sections that precede the observation rows.
package header

import (
	"bytes"

	"github.com/cloudflare/ahocorasick"

	"github.com/xpttools/xpt/pkg/card"
)

// BannerPrefix starts every banner card.
const BannerPrefix = "HEADER RECORD*******"

// Section identifies the kind of a banner card.
type Section int

const (
	SectionNone Section = iota
	SectionLibrary
	SectionMember
	SectionDescriptor
	SectionNamestr
	SectionObs
	SectionV8 // any V8/V9 banner
)

var sectionNames = [...]string{"none", "LIBRARY", "MEMBER", "DSCRPTR", "NAMESTR", "OBS", "V8"}

func (s Section) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return "unknown"
}

// keyword indices into the automaton.
const (
	kwHeader = iota
	kwLibrary
	kwMember
	kwDescriptor
	kwNamestr
	kwObs
	kwFirstV8
)

var keywords = [...]string{
	"HEADER", "LIBRARY", "MEMBER", "DSCRPTR", "NAMESTR", "OBS",
	"LIBV8", "MEMBV8", "DSCPTV8", "NAMSTV8", "OBSV8", "LABELV8", "LABELV9",
}

// Built once; only MatchThreadSafe is used on it.
var matcher = ahocorasick.NewStringMatcher(keywords[:])

// IsBanner reports whether c starts with the banner literal.
func IsBanner(c *card.Card) bool {
	return bytes.HasPrefix(c[:], []byte(BannerPrefix))
}

// Classify recognizes the section a card announces by keyword containment.
// Cards without "HEADER" or without a section keyword are SectionNone.
func Classify(c *card.Card) Section {
	var seen [len(keywords)]bool
	for _, hit := range matcher.MatchThreadSafe(c[:]) {
		seen[hit] = true
	}
	if !seen[kwHeader] {
		return SectionNone
	}
	for i := kwFirstV8; i < len(keywords); i++ {
		if seen[i] {
			return SectionV8
		}
	}
	switch {
	case seen[kwLibrary]:
		return SectionLibrary
	case seen[kwMember]:
		return SectionMember
	case seen[kwDescriptor]:
		return SectionDescriptor
	case seen[kwNamestr]:
		return SectionNamestr
	case seen[kwObs]:
		return SectionObs
	}
	return SectionNone
}

// preview renders c as printable text for error messages.
func preview(c *card.Card) string {
	out := make([]byte, 0, card.Size)
	for _, b := range c {
		if b < 0x20 || b > 0x7e {
			b = '.'
		}
		out = append(out, b)
	}
	return string(bytes.TrimRight(out, " "))
}
