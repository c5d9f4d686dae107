package header

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/xpttools/xpt/pkg/card"
	"github.com/xpttools/xpt/pkg/types"
)

// sasDateTime is the ddMMMyy:hh:mm:ss stamp used in header data cards.
const sasDateTime = "02Jan06:15:04:05"

func field(c *card.Card, from, to int) string {
	return strings.TrimRight(string(c[from:to]), " \x00")
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(sasDateTime, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// isLibraryCard matches "SAS     SAS     SASLIB  ".
func isLibraryCard(c *card.Card) bool {
	return bytes.HasPrefix(c[:], []byte("SAS     SAS     SASLIB"))
}

// isMemberCard matches "SAS     <name>SASDATA ".
func isMemberCard(c *card.Card) bool {
	return bytes.HasPrefix(c[:], []byte("SAS     ")) && bytes.HasPrefix(c[16:], []byte("SASDATA"))
}

func parseLibrary(data []card.Card) types.Library {
	lib := types.Library{Wrapped: true}
	for i := range data {
		if !isLibraryCard(&data[i]) {
			continue
		}
		lib.SASVersion = field(&data[i], 24, 32)
		lib.OS = field(&data[i], 32, 40)
		lib.Created = parseStamp(field(&data[i], 64, 80))
		if i+1 < len(data) {
			lib.Modified = parseStamp(field(&data[i+1], 0, 16))
		}
		break
	}
	return lib
}

func (m *Member) parseMemberCards(data []card.Card) {
	for i := range data {
		if !isMemberCard(&data[i]) {
			continue
		}
		m.Name = strings.TrimSpace(field(&data[i], 8, 16))
		m.SASVersion = field(&data[i], 24, 32)
		m.OS = field(&data[i], 32, 40)
		m.Created = parseStamp(field(&data[i], 64, 80))
		if i+1 < len(data) {
			next := &data[i+1]
			m.Modified = parseStamp(field(next, 0, 16))
			m.Label = strings.TrimSpace(field(next, 32, 72))
			m.Type = strings.TrimSpace(field(next, 72, 80))
		}
		return
	}
}

// countHint reads the four ASCII digits at offset 54. It returns 0 when
// the field is not a number.
func countHint(c *card.Card) int {
	n, err := strconv.Atoi(string(c[54:58]))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// descriptorShaped reports whether c could start a NAMESTR record.
func descriptorShaped(c *card.Card) bool {
	return c[0] == 0 && (c[1] == 1 || c[1] == 2)
}
