package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlaceholderName names members whose header carries no recoverable name.
const PlaceholderName = "DATASET"

// Kind is the storage class of a variable.
type Kind int

const (
	// Numeric variables hold IBM/370 floating point values.
	Numeric Kind = iota
	// Character variables hold fixed-width code page text.
	Character
)

// String returns "numeric" or "character".
func (k Kind) String() string {
	if k == Character {
		return "character"
	}
	return "numeric"
}

// MarshalJSON implements json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// Format is a SAS format or informat reference. It is carried through, not applied.
type Format struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	Decimals int    `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	Justify  int    `json:"justify,omitempty" yaml:"justify,omitempty"` // formats only: 0 left, 1 right
}

// String renders the format the way SAS prints it, e.g. "DATE9." or "8.2".
func (f Format) String() string {
	if f.Name == "" && f.Width == 0 && f.Decimals == 0 {
		return ""
	}
	s := f.Name
	if f.Width > 0 {
		s += fmt.Sprintf("%d", f.Width)
	}
	s += "."
	if f.Decimals > 0 {
		s += fmt.Sprintf("%d", f.Decimals)
	}
	return s
}

// VarMeta is the metadata of one variable (column).
type VarMeta struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	Length   int    `json:"length" yaml:"length"`     // bytes occupied in a row
	Position int    `json:"position" yaml:"position"` // declared offset; advisory only
	Number   int    `json:"number" yaml:"number"`     // declared variable number
	Format   Format `json:"format" yaml:"format"`
	Informat Format `json:"informat" yaml:"informat"`
}

// IsNumeric reports whether v holds numbers.
func (v VarMeta) IsNumeric() bool {
	return v.Kind == Numeric
}

// Dataset is one decoded member of a transport file.
type Dataset struct {
	Name        string       `json:"name" yaml:"name"`
	Label       string       `json:"label,omitempty" yaml:"label,omitempty"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty"`
	SASVersion  string       `json:"sas_version,omitempty" yaml:"sas_version,omitempty"`
	OS          string       `json:"os,omitempty" yaml:"os,omitempty"`
	Created     time.Time    `json:"created,omitempty" yaml:"created,omitempty"`
	Modified    time.Time    `json:"modified,omitempty" yaml:"modified,omitempty"`
	Variables   []VarMeta    `json:"variables" yaml:"variables"`
	Rows        []Row        `json:"rows" yaml:"-"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// VariableIndex returns the index of the variable named name (case-insensitive), or -1.
func (d *Dataset) VariableIndex(name string) int {
	for i, v := range d.Variables {
		if strings.EqualFold(v.Name, name) {
			return i
		}
	}
	return -1
}

// Library holds the metadata of the LIBRARY wrapper.
type Library struct {
	Wrapped    bool      `json:"wrapped" yaml:"wrapped"` // false for wrapper-less single-member files
	SASVersion string    `json:"sas_version,omitempty" yaml:"sas_version,omitempty"`
	OS         string    `json:"os,omitempty" yaml:"os,omitempty"`
	Created    time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Modified   time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Transport is a fully decoded transport file.
type Transport struct {
	Library  Library    `json:"library" yaml:"library"`
	Datasets []*Dataset `json:"datasets" yaml:"datasets"`
}

// Select picks a dataset by 1-based index or case-insensitive name. An
// empty key selects the first dataset.
func Select(datasets []*Dataset, key string) (*Dataset, error) {
	if len(datasets) == 0 {
		return nil, ErrNoDatasets
	}
	if key == "" {
		return datasets[0], nil
	}
	if n, err := strconv.Atoi(key); err == nil {
		if n < 1 || n > len(datasets) {
			return nil, fmt.Errorf("dataset index %d out of range 1..%d", n, len(datasets))
		}
		return datasets[n-1], nil
	}
	for _, ds := range datasets {
		if strings.EqualFold(ds.Name, key) {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("no dataset named %q", key)
}
