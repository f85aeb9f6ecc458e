package discord

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// hashCache persists the hash of every synced command per scope (a guild ID,
// or "global") as <dir>/<scope>.json.
type hashCache struct {
	path string
}

func newHashCache(dir, scope string) *hashCache {
	if scope == "" {
		scope = "global"
	}
	return &hashCache{path: filepath.Join(dir, scope+".json")}
}

// Load returns the cached hashes. A missing or unreadable cache is empty,
// which makes the next sync re-send everything.
func (c *hashCache) Load() map[string]string {
	out := make(map[string]string)
	data, err := os.ReadFile(c.path)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return make(map[string]string)
	}
	return out
}

func (c *hashCache) Save(hashes map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
