package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Registry maps tenant IDs to the channel ID that receives their alerts.
// It is backed by a JSON file ({"<tenantId>": "<channelId>"}) that is loaded
// once at startup and rewritten in full on every mutation.
//
// Registry is safe for concurrent use.
type Registry struct {
	path string

	mu   sync.RWMutex
	data map[string]string
}

// Open loads the registry file at path. A missing file is not an error — the
// registry starts empty and the file is created on the first Set.
func Open(path string) (*Registry, error) {
	r := &Registry{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &r.data); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	return r, nil
}

// Get returns the channel ID configured for tenant.
func (r *Registry) Get(tenant string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.data[tenant]
	return ch, ok
}

// All returns a copy of every tenant → channel binding.
func (r *Registry) All() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	return out
}

// Count returns the number of registered destinations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Set upserts the destination channel for tenant and persists the whole
// registry. If the write fails the in-memory entry is rolled back, so memory
// and disk never diverge.
func (r *Registry) Set(tenant, channel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, had := r.data[tenant]
	r.data[tenant] = channel
	if err := r.save(); err != nil {
		if had {
			r.data[tenant] = prev
		} else {
			delete(r.data, tenant)
		}
		return err
	}
	return nil
}

// save rewrites the registry file. Indented output keeps the file
// human-diffable. Written via temp file + rename so a crash mid-write never
// leaves a truncated registry behind. Caller must hold the write lock.
func (r *Registry) save() error {
	out, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: encode: %w", err)
	}
	out = append(out, '\n')

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("registry: rename %s: %w", tmp, err)
	}
	return nil
}
