package manage

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dynacmd/internal/admin"
	"github.com/keshon/dynacmd/internal/command"
	"github.com/keshon/dynacmd/internal/dynamic"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/internal/webhook"
	"github.com/keshon/dynacmd/pkg/cmd"
)

type users map[string]bool

func (u users) Contains(id string) bool { return u[id] }

type nopSender struct{}

func (nopSender) Send(ctx context.Context, m webhook.Message) error { return nil }

type replies struct{ got []string }

func (r *replies) RespondEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error {
	r.got = append(r.got, content)
	return nil
}

func (r *replies) RespondDeferredEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	return nil
}

func (r *replies) EditResponse(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error {
	r.got = append(r.got, content)
	return nil
}

func (r *replies) FollowupEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error {
	r.got = append(r.got, content)
	return nil
}

func (r *replies) last() string {
	if len(r.got) == 0 {
		return ""
	}
	return r.got[len(r.got)-1]
}

func setup(t *testing.T) (map[string]cmd.Command, *admin.Service, *cmd.Registry) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reg := cmd.NewRegistry()
	loader := dynamic.NewLoader(store, reg, dynamic.NewDispatcher(store, nopSender{}))
	svc := admin.NewService(store, loader, users{"100": true})
	svc.Reserve(Names()...)

	byName := make(map[string]cmd.Command)
	for _, c := range All(svc) {
		if err := reg.Register(c); err != nil {
			t.Fatal(err)
		}
		byName[c.Name()] = c
	}
	return byName, svc, reg
}

func run(t *testing.T, c cmd.Command, user string, args map[string]any) string {
	t.Helper()
	r := &replies{}
	inv := &cmd.Invocation{UserID: user, Args: args, Data: &command.SlashInteractionContext{Responder: r}}
	if err := c.Run(context.Background(), inv); err != nil {
		t.Fatalf("%s: %v", c.Name(), err)
	}
	return r.last()
}

func TestCreateListDelete(t *testing.T) {
	cmds, _, reg := setup(t)

	if got := run(t, cmds["createcmd"], "100", map[string]any{"name": "hello", "content": "hi"}); got != "Command `hello` created!" {
		t.Fatalf("create: %q", got)
	}
	if !reg.Has("hello") {
		t.Fatal("hello not registered")
	}
	if got := run(t, cmds["createcmd"], "100", map[string]any{"name": "hello", "content": "again"}); got != "Command `hello` already exists!" {
		t.Fatalf("duplicate create: %q", got)
	}

	got := run(t, cmds["createwebhookcmd"], "100", map[string]any{
		"name":        "news",
		"webhook_url": "https://example.invalid/hook",
		"title":       "News",
		"description": "d",
		"channel":     "42",
	})
	if got != "Webhook command `news` created and linked to <#42>!" {
		t.Fatalf("create webhook: %q", got)
	}

	list := run(t, cmds["listcmd"], "100", nil)
	if !strings.Contains(list, "`/hello` - text") || !strings.Contains(list, "`/news` - webhook") {
		t.Fatalf("list: %q", list)
	}

	if got := run(t, cmds["deletecmd"], "100", map[string]any{"name": "hello"}); got != "Command `hello` deleted!" {
		t.Fatalf("delete: %q", got)
	}
	if reg.Has("hello") {
		t.Fatal("hello still registered")
	}
	if got := run(t, cmds["deletecmd"], "100", map[string]any{"name": "hello"}); got != dynamic.MsgNotFound {
		t.Fatalf("second delete: %q", got)
	}
}

func TestDeniedReplies(t *testing.T) {
	cmds, _, reg := setup(t)

	for _, name := range []string{"createcmd", "deletecmd", "listcmd", "shutdown", "restart"} {
		t.Run(name, func(t *testing.T) {
			got := run(t, cmds[name], "999", map[string]any{"name": "x", "content": "y"})
			if got != MsgDenied {
				t.Fatalf("got %q, want %q", got, MsgDenied)
			}
		})
	}
	if reg.Has("x") {
		t.Fatal("denied create registered a command")
	}
}

func TestReservedAndInvalidNames(t *testing.T) {
	cmds, _, _ := setup(t)

	if got := run(t, cmds["createcmd"], "100", map[string]any{"name": "restart", "content": "x"}); !strings.Contains(got, "reserved") {
		t.Fatalf("reserved: %q", got)
	}
	if got := run(t, cmds["createcmd"], "100", map[string]any{"name": "has space", "content": "x"}); got != MsgBadName {
		t.Fatalf("invalid: %q", got)
	}
}

func TestStopRepliesFirst(t *testing.T) {
	cmds, svc, _ := setup(t)

	r := &replies{}
	var stopped []bool
	svc.OnStop(func(restart bool) {
		if len(r.got) == 0 {
			t.Error("stopped before replying")
		}
		stopped = append(stopped, restart)
	})

	inv := &cmd.Invocation{UserID: "100", Data: &command.SlashInteractionContext{Responder: r}}
	if err := cmds["restart"].Run(context.Background(), inv); err != nil {
		t.Fatal(err)
	}
	if r.last() != "Restarting..." || len(stopped) != 1 || !stopped[0] {
		t.Fatalf("replies %v, stops %v", r.got, stopped)
	}
}

func TestNames(t *testing.T) {
	want := []string{"createcmd", "createwebhookcmd", "deletecmd", "listcmd", "shutdown", "restart"}
	got := Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
	for _, c := range All(nil) {
		def := c.(command.SlashProvider).SlashDefinition()
		if def.Name != c.Name() || def.Description == "" {
			t.Fatalf("bad definition for %s: %+v", c.Name(), def)
		}
	}
}
