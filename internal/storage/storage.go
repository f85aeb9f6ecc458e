// Package storage persists command definitions, one record per command name.
package storage

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrAlreadyExists = errors.New("command already exists")
	ErrNotFound      = errors.New("command not found")
	ErrInvalidName   = errors.New("invalid command name")
)

// ReservedName is the documentation entry kept next to the definitions. It is
// never listed as a command.
const ReservedName = "readme"

// nameRe follows Discord's rules for chat command names, restricted to ASCII so
// a name is always a safe file name.
var nameRe = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// Store is the source of truth for definitions. Implementations must be safe
// for concurrent use and must never expose a partially written definition.
type Store interface {
	Create(ctx context.Context, name string, content []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

// NormalizeName lowercases and trims name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateName reports ErrInvalidName for names that cannot be stored or
// registered as a slash command.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) || name == ReservedName {
		return ErrInvalidName
	}
	return nil
}
