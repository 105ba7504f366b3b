package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rshade/ecopredict/internal/config"
)

const (
	cacheFileExtension = ".json"
	bytesPerMB         = 1024 * 1024
)

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// FileStore keeps entries as JSON files in a single directory.
// Safe for concurrent use within one process.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int

	// maxSizeMB bounds the directory size; 0 means unlimited.
	maxSizeMB int

	mu sync.RWMutex
}

// Stats summarizes the store contents for `ecopredict cache stats`.
type Stats struct {
	Directory  string `json:"directory"`
	Entries    int    `json:"entries"`
	Expired    int    `json:"expired"`
	SizeBytes  int64  `json:"size_bytes"`
	TTLSeconds int    `json:"ttl_seconds"`
	MaxSizeMB  int    `json:"max_size_mb"`
}

// NewFileStore creates a store rooted at directory, creating it if needed.
// A disabled store is returned without touching the filesystem.
func NewFileStore(directory string, enabled bool, ttlSeconds, maxSizeMB int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
		maxSizeMB:  maxSizeMB,
	}, nil
}

// OpenFromConfig creates a store from the cache config section with the
// ECOPREDICT_CACHE_* environment overrides applied.
func OpenFromConfig(cfg config.CacheConfig) (*FileStore, error) {
	return NewFileStore(
		DirFromEnv(cfg.Directory),
		EnabledFromEnv(cfg.Enabled),
		TTLFromEnv(cfg.TTLSeconds),
		MaxSizeFromEnv(cfg.MaxSizeMB),
	)
}

// Get returns the entry for key. It returns ErrCacheNotFound for a missing
// entry and ErrCacheExpired (after removing the file) for a stale one.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	filePath := s.keyToFilePath(key)
	entry, err := readEntry(filePath)
	s.mu.RUnlock()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheNotFound
		}
		return nil, err
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(filePath)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}

	return entry, nil
}

// Set stores data under key, replacing any existing entry. The file is
// written to a temporary name and renamed into place.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryData, err := json.MarshalIndent(NewEntry(key, data, s.ttlSeconds), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	filePath := s.keyToFilePath(key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return s.enforceMaxSize()
}

// Delete removes the entry for key. Deleting a missing entry is not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.cacheFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if removeErr := os.Remove(f.path); removeErr != nil {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(f.path), removeErr)
		}
		removed++
	}
	return removed, nil
}

// CleanupExpired removes expired or unreadable entries and returns how many
// were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.cacheFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		entry, readErr := readEntry(f.path)
		if readErr == nil && !entry.IsExpired() {
			continue
		}
		if os.Remove(f.path) == nil {
			removed++
		}
	}
	return removed, nil
}

// Size returns the total size of all entries in bytes.
func (s *FileStore) Size() (int64, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.cacheFiles()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return total, nil
}

// Count returns the number of entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.cacheFiles()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Stats reports entry counts and disk usage.
func (s *FileStore) Stats() (Stats, error) {
	if !s.enabled {
		return Stats{}, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.cacheFiles()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Directory:  s.directory,
		Entries:    len(files),
		TTLSeconds: s.ttlSeconds,
		MaxSizeMB:  s.maxSizeMB,
	}
	for _, f := range files {
		st.SizeBytes += f.size
		if entry, readErr := readEntry(f.path); readErr != nil || entry.IsExpired() {
			st.Expired++
		}
	}
	return st, nil
}

// IsEnabled reports whether caching is active.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// GetDirectory returns the cache directory path.
func (s *FileStore) GetDirectory() string {
	return s.directory
}

// GetTTL returns the entry TTL in seconds.
func (s *FileStore) GetTTL() int {
	return s.ttlSeconds
}

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

// cacheFiles lists entry files. Callers must hold mu.
func (s *FileStore) cacheFiles() ([]cacheFile, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	files := make([]cacheFile, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != cacheFileExtension {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, cacheFile{
			path:    filepath.Join(s.directory, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// enforceMaxSize removes the oldest entries until the directory fits within
// maxSizeMB. Callers must hold mu for writing.
func (s *FileStore) enforceMaxSize() error {
	if s.maxSizeMB <= 0 {
		return nil
	}

	files, err := s.cacheFiles()
	if err != nil {
		return err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}
	limit := int64(s.maxSizeMB) * bytesPerMB
	if total <= limit {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, f := range files {
		if total <= limit {
			break
		}
		if os.Remove(f.path) == nil {
			total -= f.size
		}
	}
	return nil
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", unmarshalErr)
	}
	return &entry, nil
}

// keyToFilePath maps a key to its file. Keys are hex digests, so only path
// separators need guarding.
func (s *FileStore) keyToFilePath(key string) string {
	return filepath.Join(s.directory, filepath.Base(filepath.Clean("/"+key))+cacheFileExtension)
}
