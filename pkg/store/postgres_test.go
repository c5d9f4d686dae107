//go:build !wasm

package store

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpttools/xpt/pkg/types"
)

type fakePG struct {
	execs   []string
	table   pgx.Identifier
	columns []string
	rows    [][]any
	copyErr error
}

func (f *fakePG) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakePG) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.table = table
	f.columns = columns
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.rows = append(f.rows, values)
	}
	return int64(len(f.rows)), src.Err()
}

func TestTableName(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", "AE", "ae"},
		{"study1", "SUPP-DM", "study1_supp_dm"},
		{"", "", "dataset"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TableName(tt.prefix, &types.Dataset{Name: tt.name}))
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL("ae", sample("AE"))

	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "ae" ("USUBJID" text, "AESEQ" double precision)`, got)
}

func TestPostgresSink_WriteDataset(t *testing.T) {
	// Arrange
	fake := &fakePG{}
	sink := &PostgresSink{conn: fake, logger: discardLogger()}

	// Act
	n, err := sink.WriteDataset(context.Background(), "ae", sample("AE"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.Len(t, fake.execs, 1)
	assert.Contains(t, fake.execs[0], `CREATE TABLE IF NOT EXISTS "ae"`)
	assert.Equal(t, pgx.Identifier{"ae"}, fake.table)
	assert.Equal(t, []string{"USUBJID", "AESEQ"}, fake.columns)
	assert.Equal(t, []any{"01-001", 1.0}, fake.rows[0])
	assert.Equal(t, []any{"01-002", nil}, fake.rows[1])
}

func TestPostgresSink_CopyError(t *testing.T) {
	fake := &fakePG{copyErr: errors.New("connection reset")}
	sink := &PostgresSink{conn: fake, logger: discardLogger()}

	_, err := sink.WriteDataset(context.Background(), "ae", sample("AE"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "copying rows into ae")
}

func TestPostgresSink_NoVariables(t *testing.T) {
	sink := &PostgresSink{conn: &fakePG{}, logger: discardLogger()}

	_, err := sink.WriteDataset(context.Background(), "empty", &types.Dataset{Name: "EMPTY"})

	assert.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
