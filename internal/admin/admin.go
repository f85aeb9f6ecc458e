// Package admin implements the operator actions that mutate the definition
// store. Every action checks the caller against the allow-list before doing
// anything else.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/definition"
	"github.com/keshon/dynacmd/internal/dynamic"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/pkg/util"
)

// listWorkers bounds concurrent reads when listing definitions.
const listWorkers = 8

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrReservedName     = errors.New("name is reserved for a built-in command")
	ErrMissingURL       = errors.New("webhook url is required")
)

// AllowList decides who may run admin actions.
type AllowList interface {
	Contains(userID string) bool
}

// Reloader brings the registry in line with the store.
type Reloader interface {
	Reload(ctx context.Context) (dynamic.ReloadResult, error)
}

// WebhookInput is what an operator supplies to create a webhook command.
type WebhookInput struct {
	Name        string
	URL         string
	Title       string
	Description string
	ChannelID   string
	Color       string
	Thumbnail   string
}

// Entry describes one stored definition.
type Entry struct {
	Name string
	Kind definition.Kind
}

// StopFunc ends the process; restart asks for the binary to be started again.
type StopFunc func(restart bool)

type Service struct {
	store  storage.Store
	loader Reloader
	allow  AllowList

	mu       sync.RWMutex
	reserved map[string]struct{}
	stop     StopFunc
}

func NewService(store storage.Store, loader Reloader, allow AllowList) *Service {
	return &Service{
		store:    store,
		loader:   loader,
		allow:    allow,
		reserved: make(map[string]struct{}),
	}
}

// Reserve marks names that definitions may not take.
func (s *Service) Reserve(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		s.reserved[storage.NormalizeName(n)] = struct{}{}
	}
}

// OnStop sets the hook run by Shutdown and Restart.
func (s *Service) OnStop(fn StopFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop = fn
}

// Authorize returns ErrPermissionDenied unless userID is on the allow-list.
func (s *Service) Authorize(userID string) error {
	if userID == "" || s.allow == nil || !s.allow.Contains(userID) {
		return ErrPermissionDenied
	}
	return nil
}

func (s *Service) CreateText(ctx context.Context, userID, name, content string) error {
	if err := s.Authorize(userID); err != nil {
		return err
	}
	name, err := s.checkName(name)
	if err != nil {
		return err
	}
	if err := s.store.Create(ctx, name, []byte(content)); err != nil {
		return err
	}
	log.Info().Str("command", name).Str("user_id", userID).Str("kind", "text").Msg("command created")
	return s.reload(ctx)
}

func (s *Service) CreateWebhook(ctx context.Context, userID string, in WebhookInput) error {
	if err := s.Authorize(userID); err != nil {
		return err
	}
	name, err := s.checkName(in.Name)
	if err != nil {
		return err
	}
	if in.URL == "" {
		return ErrMissingURL
	}
	raw, err := definition.Encode(in.URL, in.Title, in.Description, in.ChannelID, in.Color, in.Thumbnail)
	if err != nil {
		return err
	}
	if err := s.store.Create(ctx, name, raw); err != nil {
		return err
	}
	log.Info().Str("command", name).Str("user_id", userID).Str("kind", "webhook").Str("channel_id", in.ChannelID).Msg("command created")
	return s.reload(ctx)
}

func (s *Service) Delete(ctx context.Context, userID, name string) error {
	if err := s.Authorize(userID); err != nil {
		return err
	}
	name = storage.NormalizeName(name)
	if storage.ValidateName(name) != nil {
		// nothing can be stored under an invalid name
		return storage.ErrNotFound
	}
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	log.Info().Str("command", name).Str("user_id", userID).Msg("command deleted")
	return s.reload(ctx)
}

// List returns every stored definition with its kind, sorted by name.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	if err := s.Authorize(userID); err != nil {
		return nil, err
	}
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(names))
	err = util.Parallel(ctx, names, listWorkers, func(ctx context.Context, i int, name string) error {
		raw, err := s.store.Read(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		entries[i] = Entry{Name: name, Kind: definition.Parse(raw).Kind}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Definitions deleted while listing leave empty slots.
	out := entries[:0]
	for _, e := range entries {
		if e.Name != "" {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Service) Shutdown(userID string) error { return s.halt(userID, false) }
func (s *Service) Restart(userID string) error  { return s.halt(userID, true) }

func (s *Service) halt(userID string, restart bool) error {
	if err := s.Authorize(userID); err != nil {
		return err
	}
	s.mu.RLock()
	stop := s.stop
	s.mu.RUnlock()
	if stop == nil {
		return errors.New("stop is not configured")
	}
	log.Warn().Str("user_id", userID).Bool("restart", restart).Msg("stop requested")
	stop(restart)
	return nil
}

func (s *Service) checkName(name string) (string, error) {
	name = storage.NormalizeName(name)
	if err := storage.ValidateName(name); err != nil {
		return "", err
	}
	s.mu.RLock()
	_, taken := s.reserved[name]
	s.mu.RUnlock()
	if taken {
		return "", ErrReservedName
	}
	return name, nil
}

// reload runs after a successful mutation. The mutation stands even when the
// reload fails; the error tells the operator the registry may be stale.
func (s *Service) reload(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	if _, err := s.loader.Reload(ctx); err != nil {
		return fmt.Errorf("saved, but reload failed: %w", err)
	}
	return nil
}
