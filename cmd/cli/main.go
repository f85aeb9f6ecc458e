// Command cli manages definitions from a shell, against the same store the
// bot uses, without going through Discord.
//
//	cli list
//	cli show <name>
//	cli invoke <name>
//	cli create <name> <content>
//	cli create-webhook -url URL [-title T] [-description D] [-channel ID] [-color C] [-thumbnail URL] <name>
//	cli delete <name>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/admin"
	"github.com/keshon/dynacmd/internal/command/manage"
	"github.com/keshon/dynacmd/internal/dynamic"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/internal/webhook"
)

type cliConfig struct {
	CommandsDir    string        `env:"COMMANDS_DIR" envDefault:"commands"`
	StoreBackend   string        `env:"STORE_BACKEND" envDefault:"file"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPrefix    string        `env:"REDIS_PREFIX" envDefault:"dynacmd:cmd:"`
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
}

// operator is the local user; shell access implies permission.
const operator = "cli"

type everyone struct{}

func (everyone) Contains(string) bool { return true }

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse environment")
	}

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.StoreBackend,
		Dir:         cfg.CommandsDir,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	svc := admin.NewService(store, nil, everyone{})
	svc.Reserve(manage.Names()...)

	if err := run(ctx, store, svc, cfg, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		closeStore()
		os.Exit(1)
	}
}

func run(ctx context.Context, store storage.Store, svc *admin.Service, cfg cliConfig, args []string) error {
	switch args[0] {
	case "list":
		entries, err := svc.List(ctx, operator)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-32s %s\n", e.Name, e.Kind)
		}
		return nil

	case "show":
		name, err := oneName(args[1:])
		if err != nil {
			return err
		}
		raw, err := store.Read(ctx, name)
		if err != nil {
			return err
		}
		os.Stdout.Write(raw)
		fmt.Println()
		return nil

	case "invoke":
		name, err := oneName(args[1:])
		if err != nil {
			return err
		}
		relay := webhook.NewRelay(webhook.Options{Timeout: cfg.WebhookTimeout})
		resp := dynamic.NewDispatcher(store, relay).Invoke(ctx, name, dynamic.Caller{UserID: operator})
		fmt.Println(resp.Content)
		return nil

	case "create":
		if len(args) < 3 {
			return errors.New("usage: create <name> <content>")
		}
		if err := svc.CreateText(ctx, operator, args[1], strings.Join(args[2:], " ")); err != nil {
			return err
		}
		fmt.Printf("Command `%s` created!\n", storage.NormalizeName(args[1]))
		return nil

	case "create-webhook":
		flags := flag.NewFlagSet("create-webhook", flag.ContinueOnError)
		in := admin.WebhookInput{}
		flags.StringVar(&in.URL, "url", "", "webhook URL")
		flags.StringVar(&in.Title, "title", "", "embed title")
		flags.StringVar(&in.Description, "description", "", "embed description")
		flags.StringVar(&in.ChannelID, "channel", "", "channel ID shown in the confirmation")
		flags.StringVar(&in.Color, "color", "", "embed color, #RRGGBB or decimal")
		flags.StringVar(&in.Thumbnail, "thumbnail", "", "thumbnail URL")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		name, err := oneName(flags.Args())
		if err != nil {
			return err
		}
		in.Name = name
		if err := svc.CreateWebhook(ctx, operator, in); err != nil {
			return err
		}
		fmt.Printf("Webhook command `%s` created!\n", name)
		return nil

	case "delete":
		name, err := oneName(args[1:])
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, operator, name); err != nil {
			return err
		}
		fmt.Printf("Command `%s` deleted!\n", name)
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func oneName(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("expected exactly one command name")
	}
	return storage.NormalizeName(args[0]), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cli <list|show|invoke|create|create-webhook|delete> [args]`)
}
