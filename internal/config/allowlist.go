package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// AllowList holds the user IDs allowed to run admin commands.
type AllowList struct {
	ids map[string]struct{}
}

func NewAllowList(ids ...string) *AllowList {
	a := &AllowList{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			a.ids[id] = struct{}{}
		}
	}
	return a
}

func (a *AllowList) Contains(userID string) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[userID]
	return ok
}

func (a *AllowList) Len() int { return len(a.ids) }

// IDs returns the allowed IDs, sorted.
func (a *AllowList) IDs() []string {
	out := make([]string, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type permissionsFile struct {
	AllowedUsers []json.RawMessage `json:"allowed_users"`
}

// LoadAllowList reads {"allowed_users": [...]} from path and adds extra. IDs
// may be JSON numbers or strings. A missing file yields just extra.
func LoadAllowList(path string, extra ...string) (*AllowList, error) {
	ids := append([]string(nil), extra...)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewAllowList(ids...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pf permissionsFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, raw := range pf.AllowedUsers {
		id, err := userID(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: allowed_users[%d]: %w", path, i, err)
		}
		ids = append(ids, id)
	}
	return NewAllowList(ids...), nil
}

// userID decodes a snowflake written as a JSON string or number. Numbers are
// kept as their literal digits so large IDs are not rounded through float64.
func userID(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		if _, err := t.Int64(); err != nil {
			return "", fmt.Errorf("not an integer id: %s", t)
		}
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported id %s", raw)
	}
}
