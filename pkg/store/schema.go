package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the database schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	if err := createDatasetsTable(db); err != nil {
		return fmt.Errorf("creating datasets table: %w", err)
	}

	if err := createVariablesTable(db); err != nil {
		return fmt.Errorf("creating variables table: %w", err)
	}

	if err := createObservationsTable(db); err != nil {
		return fmt.Errorf("creating observations table: %w", err)
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Insert version if table is empty
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	return nil
}

func createDatasetsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS datasets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			name TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			sas_version TEXT NOT NULL DEFAULT '',
			os TEXT NOT NULL DEFAULT '',
			created TEXT,
			modified TEXT,
			row_count INTEGER NOT NULL,
			diagnostics_json TEXT NOT NULL DEFAULT '[]',
			UNIQUE(source, name)
		)
	`)
	return err
}

func createVariablesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS variables (
			dataset_id INTEGER NOT NULL REFERENCES datasets(id),
			ordinal INTEGER NOT NULL,
			name TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			length INTEGER NOT NULL,
			position INTEGER NOT NULL,
			number INTEGER NOT NULL,
			format_json TEXT NOT NULL DEFAULT '{}',
			informat_json TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (dataset_id, ordinal)
		)
	`)
	return err
}

func createObservationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS observations (
			dataset_id INTEGER NOT NULL REFERENCES datasets(id),
			row_num INTEGER NOT NULL,
			cells_json TEXT NOT NULL,
			PRIMARY KEY (dataset_id, row_num)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_observations_dataset_id ON observations(dataset_id)
	`)
	return err
}
