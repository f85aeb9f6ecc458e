package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/keshon/dynacmd/internal/definition"
	"github.com/keshon/dynacmd/internal/dynamic"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/internal/webhook"
	"github.com/keshon/dynacmd/pkg/cmd"
)

type users map[string]bool

func (u users) Contains(id string) bool { return u[id] }

type countingSender struct{ calls int }

func (c *countingSender) Send(ctx context.Context, m webhook.Message) error {
	c.calls++
	return nil
}

type fixture struct {
	svc      *Service
	store    *storage.FileStore
	registry *cmd.Registry
	sender   *countingSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sender := &countingSender{}
	reg := cmd.NewRegistry()
	loader := dynamic.NewLoader(store, reg, dynamic.NewDispatcher(store, sender))
	svc := NewService(store, loader, users{"100": true})
	svc.Reserve("createcmd", "deletecmd")
	return &fixture{svc: svc, store: store, registry: reg, sender: sender}
}

func TestDeniedCallerHasNoEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.CreateText(ctx, "999", "hello", "hi"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("CreateText: got %v, want ErrPermissionDenied", err)
	}
	err := f.svc.CreateWebhook(ctx, "999", WebhookInput{Name: "hook", URL: "https://example.invalid/hook"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("CreateWebhook: got %v, want ErrPermissionDenied", err)
	}
	if _, err := f.svc.List(ctx, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("List: got %v, want ErrPermissionDenied", err)
	}

	names, err := f.store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 || len(f.registry.Names()) != 0 || f.sender.calls != 0 {
		t.Fatalf("denied calls mutated state: store %v, registry %v, sends %d", names, f.registry.Names(), f.sender.calls)
	}
}

func TestDeniedDeleteKeepsDefinition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.CreateText(ctx, "100", "keep", "me"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, "999", "keep"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("got %v, want ErrPermissionDenied", err)
	}
	if ok, _ := f.store.Exists(ctx, "keep"); !ok {
		t.Fatal("definition removed by a denied caller")
	}
}

func TestCreateTextRegisters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.CreateText(ctx, "100", "Hello", "Hello, world!"); err != nil {
		t.Fatal(err)
	}
	if !f.registry.Has("hello") {
		t.Fatalf("hello not registered, have %v", f.registry.Names())
	}
	if err := f.svc.CreateText(ctx, "100", "hello", "other"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("second create: got %v, want ErrAlreadyExists", err)
	}
	raw, err := f.store.Read(ctx, "hello")
	if err != nil || string(raw) != "Hello, world!" {
		t.Fatalf("original overwritten: %q, %v", raw, err)
	}
}

func TestCreateRejectsNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		want error
	}{
		{"createcmd", ErrReservedName},
		{"readme", storage.ErrInvalidName},
		{"../etc", storage.ErrInvalidName},
		{"", storage.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.svc.CreateText(ctx, "100", tt.name, "x"); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateWebhookStoresDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.CreateWebhook(ctx, "100", WebhookInput{
		Name:      "announce",
		URL:       "https://example.invalid/hook",
		Title:     "Hi",
		ChannelID: "42",
	})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := f.store.Read(ctx, "announce")
	if err != nil {
		t.Fatal(err)
	}
	def := definition.Parse(raw)
	if def.Kind != definition.KindWebhook || def.Webhook.Color != definition.DefaultColor || def.Webhook.ChannelID != "42" {
		t.Fatalf("unexpected stored definition %+v", def.Webhook)
	}
	if f.sender.calls != 0 {
		t.Fatal("creating a webhook command must not send it")
	}

	if err := f.svc.CreateWebhook(ctx, "100", WebhookInput{Name: "nourl"}); !errors.Is(err, ErrMissingURL) {
		t.Fatalf("got %v, want ErrMissingURL", err)
	}
}

func TestDeletePrunesRegistry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.CreateText(ctx, "100", "gone", "x"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, "100", "gone"); err != nil {
		t.Fatal(err)
	}
	if f.registry.Has("gone") {
		t.Fatal("deleted command still registered")
	}
	if err := f.svc.Delete(ctx, "100", "gone"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteInvalidNameIsNotFound(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Has Space", "../etc", ""} {
		if err := f.svc.Delete(context.Background(), "100", name); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Delete(%q) = %v, want ErrNotFound", name, err)
		}
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.CreateText(ctx, "100", "b", "text"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.CreateWebhook(ctx, "100", WebhookInput{Name: "a", URL: "https://example.invalid/hook"}); err != nil {
		t.Fatal(err)
	}
	entries, err := f.svc.List(ctx, "100")
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{{"a", definition.KindWebhook}, {"b", definition.KindText}}
	if len(entries) != len(want) {
		t.Fatalf("got %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: got %v, want %v", i, entries[i], want[i])
		}
	}
}

func TestStop(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.Shutdown("100"); err == nil {
		t.Fatal("expected an error without a stop hook")
	}

	var got []bool
	f.svc.OnStop(func(restart bool) { got = append(got, restart) })

	if err := f.svc.Restart("999"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("got %v, want ErrPermissionDenied", err)
	}
	if err := f.svc.Shutdown("100"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Restart("100"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] || !got[1] {
		t.Fatalf("unexpected stop calls %v", got)
	}
}
