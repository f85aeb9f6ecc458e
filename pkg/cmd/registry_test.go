package cmd

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubCommand struct {
	name string
	runs int
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub " + s.name }
func (s *stubCommand) Run(ctx context.Context, inv *Invocation) error {
	s.runs++
	return nil
}

func TestRegisterSkipsExisting(t *testing.T) {
	r := NewRegistry()
	first := &stubCommand{name: "ping"}
	second := &stubCommand{name: "ping"}

	if err := r.Register(first); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(second); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("second register: got %v, want ErrAlreadyRegistered", err)
	}

	got, ok := r.Get("ping")
	if !ok || got != first {
		t.Fatalf("registry entry was overwritten")
	}
}

func TestUnregisterAndNames(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(&stubCommand{name: n}); err != nil {
			t.Fatal(err)
		}
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	if !r.Unregister("mid") {
		t.Fatal("Unregister(mid) = false")
	}
	if r.Unregister("mid") {
		t.Fatal("second Unregister(mid) = true")
	}
	if r.Has("mid") {
		t.Fatal("mid still registered")
	}
	if len(r.GetAll()) != 2 {
		t.Fatalf("GetAll() len = %d, want 2", len(r.GetAll()))
	}
}

func TestConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Register(&stubCommand{name: "race"}) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 1 {
		t.Fatalf("%d registrations succeeded, want 1", ok)
	}
}

func TestWrapAndRoot(t *testing.T) {
	inner := &stubCommand{name: "inner"}
	var order []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				order = append(order, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	c := Apply(inner, mw("a"), mw("b"))
	if c.Name() != "inner" {
		t.Fatalf("Name() = %q", c.Name())
	}
	if err := c.Run(context.Background(), &Invocation{}); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("middleware order = %v, want [b a]", order)
	}
	if inner.runs != 1 {
		t.Fatalf("inner ran %d times", inner.runs)
	}
	if Root(c) != inner {
		t.Fatal("Root did not return the inner command")
	}
}

func TestInvocationArg(t *testing.T) {
	inv := &Invocation{Args: map[string]any{"name": "ping", "n": 3}}
	if inv.Arg("name") != "ping" {
		t.Fatal("Arg(name)")
	}
	if inv.Arg("n") != "" || inv.Arg("missing") != "" {
		t.Fatal("non-string or missing args must be empty")
	}
	var nilInv *Invocation
	if nilInv.Arg("x") != "" {
		t.Fatal("nil invocation")
	}
}
