package types

import (
	"encoding/json"
	"strconv"

	"github.com/xpttools/xpt/pkg/ibm370"
)

// Cell is one value of a row: a string for character variables, an
// optional float for numeric ones.
type Cell struct {
	Kind    Kind
	Str     string
	Num     float64
	Missing ibm370.Missing // non-zero when a numeric cell holds a SAS missing value
}

// StringCell returns a character cell.
func StringCell(s string) Cell {
	return Cell{Kind: Character, Str: s}
}

// NumberCell returns a numeric cell holding f.
func NumberCell(f float64) Cell {
	return Cell{Kind: Numeric, Num: f}
}

// MissingCell returns a numeric cell holding the missing value m.
func MissingCell(m ibm370.Missing) Cell {
	return Cell{Kind: Numeric, Missing: m}
}

// IsMissing reports whether c is a missing numeric value.
func (c Cell) IsMissing() bool {
	return c.Kind == Numeric && c.Missing != ibm370.NotMissing
}

// Float returns the numeric value and false when the cell is missing or character.
func (c Cell) Float() (float64, bool) {
	if c.Kind != Numeric || c.IsMissing() {
		return 0, false
	}
	return c.Num, true
}

// String renders the cell for text output. Missing values render as "".
func (c Cell) String() string {
	if c.Kind == Character {
		return c.Str
	}
	if c.IsMissing() {
		return ""
	}
	return strconv.FormatFloat(c.Num, 'g', -1, 64)
}

// Value returns the cell as a plain Go value: string, float64, or nil.
func (c Cell) Value() interface{} {
	if c.Kind == Character {
		return c.Str
	}
	if c.IsMissing() {
		return nil
	}
	return c.Num
}

// MarshalJSON implements json.Marshaler. Missing numerics encode as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

// Row is one observation, one cell per variable in dataset order.
type Row []Cell

// Strings renders every cell of r with Cell.String.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}
