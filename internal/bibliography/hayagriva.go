package bibliography

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// hayagrivaEntry is the on-disk shape of one record in a hayagriva
// bibliography file.
type hayagrivaEntry struct {
	Type  string `yaml:"type"`
	Title string `yaml:"title,omitempty"`
	Path  string `yaml:"path,omitempty"`
}

// HayagrivaBib is a Bibliography backed by a hayagriva YAML file. The
// file is read once on creation; writes go through to disk and keep
// the in-memory view current.
type HayagrivaBib struct {
	filePath string

	mu      sync.RWMutex
	entries map[string]hayagrivaEntry
}

// NewHayagrivaBib opens the bibliography at filePath. A missing file is
// not an error; it is created on the first write.
func NewHayagrivaBib(filePath string) (*HayagrivaBib, error) {
	h := &HayagrivaBib{
		filePath: filePath,
		entries:  make(map[string]hayagrivaEntry),
	}

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bibliography: %w", err)
	}
	if err := yaml.Unmarshal(data, &h.entries); err != nil {
		return nil, fmt.Errorf("failed to parse bibliography: %w", err)
	}
	return h, nil
}

// Resolve looks up the entry for a citation key.
func (h *HayagrivaBib) Resolve(key string) (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.entries[key]
	if !ok {
		return Entry{}, false
	}
	return Entry{Key: key, Type: e.Type, Title: e.Title, Path: e.Path}, true
}

// Keys returns every citation key in the bibliography, sorted.
func (h *HayagrivaBib) Keys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := make([]string, 0, len(h.entries))
	for key := range h.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Append adds new entries to the bibliography. Existing keys are left
// untouched.
func (h *HayagrivaBib) Append(entries []Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, entry := range entries {
		if _, ok := h.entries[entry.Key]; ok {
			continue
		}
		h.entries[entry.Key] = hayagrivaEntry{
			Type:  entry.Type,
			Title: entry.Title,
			Path:  entry.Path,
		}
	}
	return h.write()
}

// Override replaces the entire bibliography with new entries.
func (h *HayagrivaBib) Override(entries []Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = make(map[string]hayagrivaEntry, len(entries))
	for _, entry := range entries {
		h.entries[entry.Key] = hayagrivaEntry{
			Type:  entry.Type,
			Title: entry.Title,
			Path:  entry.Path,
		}
	}
	return h.write()
}

// write persists the in-memory view. Callers hold the write lock.
func (h *HayagrivaBib) write() error {
	dir := filepath.Dir(h.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(h.entries)
	if err != nil {
		return fmt.Errorf("failed to encode bibliography: %w", err)
	}
	if err := os.WriteFile(h.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write bibliography: %w", err)
	}
	return nil
}
