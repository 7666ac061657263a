// Package scans journals published scan results in a write-ahead log.
package scans

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

const (
	defaultJournalDir = "./journal"
	scanSegmentLimit  = 1000
	scanMaxSegments   = 100
	scanKeyPrefix     = "scan_"
)

var errNotInitialized = errors.New("scan journal is not initialized")

// WALStore persists scan results so the web stream can replay them by index.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens (or creates) the journal under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultJournalDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "scans_",
		SegmentThreshold: scanSegmentLimit,
		MaxSegments:      scanMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init scan journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the result and returns its journal index.
func (s *WALStore) Save(result domain.ScanResult) (uint64, error) {
	if s == nil || s.wal == nil {
		return 0, errNotInitialized
	}
	if result.ID == "" {
		return 0, errors.New("scan result id is required")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return 0, errors.Wrap(err, "marshal scan result")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(idx, scanKeyPrefix+result.ID, payload); err != nil {
		return 0, errors.Wrapf(err, "write scan %s", result.ID)
	}

	return idx, nil
}

// ResultsAfter returns every journaled result with an index greater than index.
func (s *WALStore) ResultsAfter(index uint64) ([]domain.ScanRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errNotInitialized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.ScanRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, scanKeyPrefix) {
			continue
		}
		var result domain.ScanResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, errors.Wrapf(err, "decode scan at index %d", idx)
		}
		records = append(records, domain.ScanRecord{Index: idx, Result: result})
	}

	return records, nil
}

// CurrentIndex returns the index of the last journaled result.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
