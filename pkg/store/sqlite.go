//go:build !wasm

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xpttools/xpt/pkg/types"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
// Use ":memory:" for in-memory database (useful for testing).
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// a ":memory:" database exists per connection
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddDataset stores ds with its variables and rows in one transaction.
func (s *SQLiteStore) AddDataset(source string, ds *types.Dataset) (int64, error) {
	id, err := s.datasetID(source, ds.Name)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}

	diagJSON, err := json.Marshal(ds.Diagnostics)
	if err != nil {
		return 0, fmt.Errorf("marshaling diagnostics: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO datasets (source, name, label, type, sas_version, os, created, modified, row_count, diagnostics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		source,
		ds.Name,
		ds.Label,
		ds.Type,
		ds.SASVersion,
		ds.OS,
		formatTime(ds.Created),
		formatTime(ds.Modified),
		len(ds.Rows),
		string(diagJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting dataset: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading dataset id: %w", err)
	}

	if err := insertVariables(tx, id, ds.Variables); err != nil {
		return 0, err
	}
	if err := insertRows(tx, id, ds.Rows); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

func insertVariables(tx *sql.Tx, id int64, vars []types.VarMeta) error {
	stmt, err := tx.Prepare(`
		INSERT INTO variables (dataset_id, ordinal, name, label, kind, length, position, number, format_json, informat_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing variable insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range vars {
		format, err := json.Marshal(v.Format)
		if err != nil {
			return fmt.Errorf("marshaling format of %s: %w", v.Name, err)
		}
		informat, err := json.Marshal(v.Informat)
		if err != nil {
			return fmt.Errorf("marshaling informat of %s: %w", v.Name, err)
		}
		if _, err := stmt.Exec(id, i, v.Name, v.Label, v.Kind.String(), v.Length, v.Position, v.Number,
			string(format), string(informat)); err != nil {
			return fmt.Errorf("inserting variable %s: %w", v.Name, err)
		}
	}
	return nil
}

func insertRows(tx *sql.Tx, id int64, rows []types.Row) error {
	stmt, err := tx.Prepare("INSERT INTO observations (dataset_id, row_num, cells_json) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		cells, err := encodeRow(row)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(id, i, cells); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *SQLiteStore) datasetID(source, name string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM datasets WHERE source = ? AND name = ?", source, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying dataset: %w", err)
	}
	return id, nil
}

// DatasetExists checks if a dataset from source has been stored.
func (s *SQLiteStore) DatasetExists(source, name string) (bool, error) {
	id, err := s.datasetID(source, name)
	return id != 0, err
}

// GetDatasets retrieves the metadata of every stored dataset in insertion order.
func (s *SQLiteStore) GetDatasets() ([]*DatasetInfo, error) {
	rows, err := s.db.Query(`
		SELECT d.id, d.source, d.name, d.label, d.type, d.sas_version, d.os,
		       d.created, d.modified, d.row_count, d.diagnostics_json,
		       (SELECT COUNT(*) FROM variables v WHERE v.dataset_id = d.id)
		FROM datasets d
		ORDER BY d.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var infos []*DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		var created, modified sql.NullString
		var diagJSON string
		if err := rows.Scan(&info.ID, &info.Source, &info.Name, &info.Label, &info.Type, &info.SASVersion, &info.OS,
			&created, &modified, &info.RowCount, &diagJSON, &info.Variables); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		info.Created = parseTime(created)
		info.Modified = parseTime(modified)
		if err := json.Unmarshal([]byte(diagJSON), &info.Diagnostics); err != nil {
			return nil, fmt.Errorf("unmarshaling diagnostics: %w", err)
		}
		infos = append(infos, &info)
	}
	return infos, rows.Err()
}

// GetVariables retrieves the variables of a dataset in column order.
func (s *SQLiteStore) GetVariables(id int64) ([]types.VarMeta, error) {
	rows, err := s.db.Query(`
		SELECT name, label, kind, length, position, number, format_json, informat_json
		FROM variables
		WHERE dataset_id = ?
		ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying variables: %w", err)
	}
	defer rows.Close()

	var vars []types.VarMeta
	for rows.Next() {
		var v types.VarMeta
		var kind, format, informat string
		if err := rows.Scan(&v.Name, &v.Label, &kind, &v.Length, &v.Position, &v.Number, &format, &informat); err != nil {
			return nil, fmt.Errorf("scanning variable: %w", err)
		}
		if kind == types.Character.String() {
			v.Kind = types.Character
		}
		if err := json.Unmarshal([]byte(format), &v.Format); err != nil {
			return nil, fmt.Errorf("unmarshaling format: %w", err)
		}
		if err := json.Unmarshal([]byte(informat), &v.Informat); err != nil {
			return nil, fmt.Errorf("unmarshaling informat: %w", err)
		}
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

// GetRows retrieves up to limit rows of a dataset (all when limit < 0).
func (s *SQLiteStore) GetRows(id int64, limit int) ([]types.Row, error) {
	vars, err := s.GetVariables(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT cells_json FROM observations
		WHERE dataset_id = ?
		ORDER BY row_num
		LIMIT ?
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	var out []types.Row
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row, err := decodeRow(cells, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
