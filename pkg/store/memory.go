package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/xpttools/xpt/pkg/types"
)

// datasetRecord holds one stored dataset.
type datasetRecord struct {
	info *DatasetInfo
	vars []types.VarMeta
	rows []types.Row
}

// MemoryStore implements Store using in-memory data structures.
// It backs WASM builds and the serve loop.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets []*datasetRecord
	byKey    map[string]int64 // source + "\x00" + name -> id
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		datasets: make([]*datasetRecord, 0),
		byKey:    make(map[string]int64),
	}
}

func datasetKey(source, name string) string {
	return source + "\x00" + name
}

// AddDataset stores a dataset (deduplicated on source and name).
func (m *MemoryStore) AddDataset(source string, ds *types.Dataset) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := datasetKey(source, ds.Name)
	if id, exists := m.byKey[key]; exists {
		return id, nil
	}

	id := int64(len(m.datasets) + 1)
	m.datasets = append(m.datasets, &datasetRecord{
		info: newDatasetInfo(id, source, ds),
		vars: slices.Clone(ds.Variables),
		rows: slices.Clone(ds.Rows),
	})
	m.byKey[key] = id
	return id, nil
}

// DatasetExists checks if a dataset from source has been stored.
func (m *MemoryStore) DatasetExists(source, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.byKey[datasetKey(source, name)]
	return exists, nil
}

// GetDatasets retrieves the metadata of every stored dataset in insertion order.
func (m *MemoryStore) GetDatasets() ([]*DatasetInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]*DatasetInfo, 0, len(m.datasets))
	for _, rec := range m.datasets {
		info := *rec.info
		infos = append(infos, &info)
	}
	return infos, nil
}

func (m *MemoryStore) record(id int64) (*datasetRecord, error) {
	if id < 1 || id > int64(len(m.datasets)) {
		return nil, fmt.Errorf("dataset %d not found", id)
	}
	return m.datasets[id-1], nil
}

// GetVariables retrieves the variables of a dataset in column order.
func (m *MemoryStore) GetVariables(id int64) ([]types.VarMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, err := m.record(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(rec.vars), nil
}

// GetRows retrieves up to limit rows of a dataset (all when limit < 0).
func (m *MemoryStore) GetRows(id int64, limit int) ([]types.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, err := m.record(id)
	if err != nil {
		return nil, err
	}
	rows := rec.rows
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return slices.Clone(rows), nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
