// Package cmd is the transport-agnostic command core: a command has a name, a
// description and Run(ctx, invocation). Registration with a chat platform and
// the shape of Invocation.Data are up to the adapter that drives it.
package cmd

import "context"

// Invocation is what any adapter hands to a command. UserID identifies the
// caller; Data carries the adapter's own context (for Discord, the session and
// the interaction event).
type Invocation struct {
	UserID string
	Args   map[string]any
	Data   any
}

// Arg returns the named argument as a string, or "" when absent.
func (inv *Invocation) Arg(name string) string {
	if inv == nil || inv.Args == nil {
		return ""
	}
	s, _ := inv.Args[name].(string)
	return s
}

// Command is the contract every registry entry satisfies.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
