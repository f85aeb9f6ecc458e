package dynamic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/pkg/cmd"
)

// ReloadResult lists what a reload changed.
type ReloadResult struct {
	Added   []string
	Removed []string
	Skipped []string
}

func (r ReloadResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Loader projects the store onto the registry.
type Loader struct {
	store       storage.Store
	registry    *cmd.Registry
	dispatcher  *Dispatcher
	middlewares []cmd.Middleware

	mu       sync.Mutex
	onChange []func()
}

func NewLoader(store storage.Store, registry *cmd.Registry, d *Dispatcher, mws ...cmd.Middleware) *Loader {
	return &Loader{store: store, registry: registry, dispatcher: d, middlewares: mws}
}

// OnChange registers fn to run after a reload that changed the registry.
func (l *Loader) OnChange(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Reload registers every stored definition that is not registered yet and
// drops dynamic entries whose definition is gone. Names already taken by a
// built-in command are skipped. Registered dynamic commands are never
// replaced, so reloading twice is a no-op.
func (l *Loader) Reload(ctx context.Context) (ReloadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res ReloadResult
	names, err := l.store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list definitions: %w", err)
	}

	stored := make(map[string]struct{}, len(names))
	for _, name := range names {
		stored[name] = struct{}{}
		if existing, ok := l.registry.Get(name); ok {
			if !IsDynamic(existing) {
				res.Skipped = append(res.Skipped, name)
			}
			continue
		}
		c := cmd.Apply(NewCommand(name, l.dispatcher), l.middlewares...)
		if err := l.registry.Register(c); err != nil {
			if errors.Is(err, cmd.ErrAlreadyRegistered) {
				continue
			}
			return res, err
		}
		res.Added = append(res.Added, name)
	}

	for _, c := range l.registry.GetAll() {
		if !IsDynamic(c) {
			continue
		}
		if _, ok := stored[c.Name()]; ok {
			continue
		}
		if l.registry.Unregister(c.Name()) {
			res.Removed = append(res.Removed, c.Name())
		}
	}

	if len(res.Skipped) > 0 {
		log.Warn().Strs("names", res.Skipped).Msg("definitions shadowed by built-in commands")
	}
	if res.Changed() {
		log.Info().Strs("added", res.Added).Strs("removed", res.Removed).Msg("dynamic commands reloaded")
		for _, fn := range l.onChange {
			fn()
		}
	}
	return res, nil
}

// IsDynamic reports whether c (possibly wrapped) is bound to a definition.
func IsDynamic(c cmd.Command) bool {
	_, ok := cmd.Root(c).(*Command)
	return ok
}
