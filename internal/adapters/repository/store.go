// Package repository persists flavors and guest mixes as JSON array files.
//
// Every write replaces the whole file through a temporary sibling and an
// atomic rename, so readers never observe a half-written document.
package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/hookah/pkg/metrics"
)

// jsonFile reads and writes one JSON array file. Callers serialize access.
type jsonFile struct {
	path  string
	store string // metrics label
	perm  os.FileMode
}

// Path returns the backing file path.
func (f *jsonFile) Path() string { return f.path }

func (f *jsonFile) ensure() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	_, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return os.WriteFile(f.path, []byte("[]"), f.perm)
	}
	return err
}

// read returns the raw array elements. A missing or empty file reads as an
// empty list; any other content that is not a JSON array is ErrCorruptFile.
func (f *jsonFile) read() ([]json.RawMessage, error) {
	defer observe(f.store, "read", time.Now())
	if err := f.ensure(); err != nil {
		metrics.RecordStoreError(f.store, "read")
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		metrics.RecordStoreError(f.store, "read")
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		metrics.RecordStoreError(f.store, "read")
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptFile, f.path, err)
	}
	return items, nil
}

func (f *jsonFile) write(v any) error {
	defer observe(f.store, "write", time.Now())
	if err := f.ensure(); err != nil {
		metrics.RecordStoreError(f.store, "write")
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		metrics.RecordStoreError(f.store, "write")
		return fmt.Errorf("encode %s: %w", f.store, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, f.perm); err != nil {
		metrics.RecordStoreError(f.store, "write")
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		metrics.RecordStoreError(f.store, "write")
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// decodeList decodes each element on its own. Elements that do not fit T
// are returned as kept so writes can carry them over unchanged.
func decodeList[T any](items []json.RawMessage) (out []T, kept []json.RawMessage) {
	out = make([]T, 0, len(items))
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			kept = append(kept, raw)
			continue
		}
		out = append(out, v)
	}
	return out, kept
}

// withKept appends the kept raw elements after items for writing.
func withKept[T any](items []T, kept []json.RawMessage) any {
	if len(kept) == 0 {
		if items == nil {
			return []T{}
		}
		return items
	}
	out := make([]any, 0, len(items)+len(kept))
	for _, v := range items {
		out = append(out, v)
	}
	for _, raw := range kept {
		out = append(out, raw)
	}
	return out
}

func observe(store, op string, start time.Time) {
	metrics.RecordStoreLatency(store, op, float64(time.Since(start).Microseconds())/1000)
}
