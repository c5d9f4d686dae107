package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xpttools/xpt/pkg/xpttest"
)

func demoMember(name string) xpttest.Member {
	return xpttest.Member{
		Name:  name,
		Label: "Demographics",
		Vars: []xpttest.Var{
			{Name: "USUBJID", Label: "Subject", Length: 6, Position: -1},
			{Name: "AGE", Numeric: true, Position: -1, Format: "F", FormatW: 3},
		},
		Rows: [][]any{{"S-001", 54}, {"S-002", nil}, {"S-003", 61}},
	}
}

// writeTransport writes a library-wrapped transport file holding members
// into dir and returns its path.
func writeTransport(t *testing.T, dir, name string, members ...xpttest.Member) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f := xpttest.File{Library: true, Members: members}
	require.NoError(t, os.WriteFile(path, f.Bytes(), 0644))
	return path
}
