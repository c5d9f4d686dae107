//go:build !wasm

package store

import (
	"database/sql"
	"fmt"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	DatasetsMerged   int
	DatasetsSkipped  int
	VariablesMerged  int
	RowsMerged       int
	SourcesProcessed int
}

// Merge combines multiple xpt databases into one. A dataset already present
// in the destination under the same source and name is skipped.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	destDB, err := sql.Open(DriverName, cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer destDB.Close()

	if err := CreateSchema(destDB); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	stats := &MergeStats{}

	for _, sourcePath := range cfg.SourcePaths {
		sourceStats, err := mergeFrom(destDB, sourcePath)
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.DatasetsMerged += sourceStats.DatasetsMerged
		stats.DatasetsSkipped += sourceStats.DatasetsSkipped
		stats.VariablesMerged += sourceStats.VariablesMerged
		stats.RowsMerged += sourceStats.RowsMerged
		stats.SourcesProcessed++
	}

	return stats, nil
}

// sourceDataset is a datasets row read from a source database.
type sourceDataset struct {
	id                                    int64
	source, name, label, typ, version, os string
	created, modified                     sql.NullString
	rowCount                              int
	diagnostics                           string
}

// mergeFrom copies data from a source database to the destination.
func mergeFrom(destDB *sql.DB, sourcePath string) (*MergeStats, error) {
	sourceDB, err := sql.Open(DriverName, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer sourceDB.Close()

	datasets, err := readDatasets(sourceDB)
	if err != nil {
		return nil, fmt.Errorf("reading datasets: %w", err)
	}

	stats := &MergeStats{}

	tx, err := destDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO datasets
		(source, name, label, type, sas_version, os, created, modified, row_count, diagnostics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, d := range datasets {
		result, err := stmt.Exec(d.source, d.name, d.label, d.typ, d.version, d.os,
			d.created, d.modified, d.rowCount, d.diagnostics)
		if err != nil {
			return nil, fmt.Errorf("inserting dataset %s: %w", d.name, err)
		}
		affected, _ := result.RowsAffected()
		if affected == 0 {
			stats.DatasetsSkipped++
			continue
		}
		destID, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}

		varCount, err := mergeVariables(tx, sourceDB, d.id, destID)
		if err != nil {
			return nil, fmt.Errorf("merging variables of %s: %w", d.name, err)
		}
		rowCount, err := mergeObservations(tx, sourceDB, d.id, destID)
		if err != nil {
			return nil, fmt.Errorf("merging rows of %s: %w", d.name, err)
		}
		stats.DatasetsMerged++
		stats.VariablesMerged += varCount
		stats.RowsMerged += rowCount
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return stats, nil
}

func readDatasets(sourceDB *sql.DB) ([]sourceDataset, error) {
	rows, err := sourceDB.Query(`
		SELECT id, source, name, label, type, sas_version, os, created, modified, row_count, diagnostics_json
		FROM datasets
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sourceDataset
	for rows.Next() {
		var d sourceDataset
		if err := rows.Scan(&d.id, &d.source, &d.name, &d.label, &d.typ, &d.version, &d.os,
			&d.created, &d.modified, &d.rowCount, &d.diagnostics); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func mergeVariables(tx *sql.Tx, sourceDB *sql.DB, sourceID, destID int64) (int, error) {
	rows, err := sourceDB.Query(`
		SELECT ordinal, name, label, kind, length, position, number, format_json, informat_json
		FROM variables
		WHERE dataset_id = ?
	`, sourceID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO variables
		(dataset_id, ordinal, name, label, kind, length, position, number, format_json, informat_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var ordinal, length, position, number int
		var name, label, kind, format, informat string
		if err := rows.Scan(&ordinal, &name, &label, &kind, &length, &position, &number, &format, &informat); err != nil {
			return count, err
		}
		result, err := stmt.Exec(destID, ordinal, name, label, kind, length, position, number, format, informat)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeObservations(tx *sql.Tx, sourceDB *sql.DB, sourceID, destID int64) (int, error) {
	rows, err := sourceDB.Query("SELECT row_num, cells_json FROM observations WHERE dataset_id = ?", sourceID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO observations (dataset_id, row_num, cells_json) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var rowNum int
		var cells string
		if err := rows.Scan(&rowNum, &cells); err != nil {
			return count, err
		}
		result, err := stmt.Exec(destID, rowNum, cells)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}
