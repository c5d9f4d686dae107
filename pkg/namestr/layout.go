package namestr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xpttools/xpt/pkg/types"
)

// Arrangement places variables inside a row.
type Arrangement struct {
	Variables []types.VarMeta // output column order
	Offsets   []int           // byte offset of each variable in a row
	Width     int             // bytes per row, before any padding
}

// Layout decides the column order and the byte offsets of a row.
type Layout interface {
	Arrange(vars []types.VarMeta) Arrangement
}

// byPosition returns vars in stable ascending position order.
func byPosition(vars []types.VarMeta) []types.VarMeta {
	out := append([]types.VarMeta(nil), vars...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Sequential packs variables back to back in position order and ignores
// the declared offsets. It is the default.
type Sequential struct{}

// Arrange implements Layout.
func (Sequential) Arrange(vars []types.VarMeta) Arrangement {
	a := Arrangement{Variables: byPosition(vars), Offsets: make([]int, len(vars))}
	for i, v := range a.Variables {
		a.Offsets[i] = a.Width
		a.Width += v.Length
	}
	return a
}

// DeclaredPosition reads every variable at its declared position.
type DeclaredPosition struct{}

// Arrange implements Layout.
func (DeclaredPosition) Arrange(vars []types.VarMeta) Arrangement {
	a := Arrangement{Variables: byPosition(vars), Offsets: make([]int, len(vars))}
	for i, v := range a.Variables {
		pos := v.Position
		if pos < 0 {
			pos = 0
		}
		a.Offsets[i] = pos
		if end := pos + v.Length; end > a.Width {
			a.Width = end
		}
	}
	return a
}

// LayoutByName maps "sequential" or "declared" to a Layout.
func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(name) {
	case "", "sequential":
		return Sequential{}, nil
	case "declared", "position":
		return DeclaredPosition{}, nil
	}
	return nil, fmt.Errorf("unknown layout %q (want sequential or declared)", name)
}
