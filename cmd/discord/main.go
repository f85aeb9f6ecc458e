// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/admin"
	"github.com/keshon/dynacmd/internal/command/manage"
	"github.com/keshon/dynacmd/internal/config"
	"github.com/keshon/dynacmd/internal/discord"
	"github.com/keshon/dynacmd/internal/docs"
	"github.com/keshon/dynacmd/internal/dynamic"
	"github.com/keshon/dynacmd/internal/keepalive"
	"github.com/keshon/dynacmd/internal/logging"
	"github.com/keshon/dynacmd/internal/middleware"
	"github.com/keshon/dynacmd/internal/storage"
	v "github.com/keshon/dynacmd/internal/version"
	"github.com/keshon/dynacmd/internal/webhook"
	"github.com/keshon/dynacmd/pkg/cmd"
)

func main() {
	restart, err := run()
	if err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	if restart {
		log.Info().Msg("Restarting...")
		if err := reexec(); err != nil {
			log.Fatal().Err(err).Msg("restart failed")
		}
	}
	log.Info().Msg("Discord bot exited cleanly")
}

func run() (restart bool, err error) {
	cfg, err := config.Load()
	if err != nil {
		return false, err
	}

	logCloser, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return false, err
	}
	defer logCloser.Close()

	log.Info().Str("version", v.Version).Msgf("Starting %s bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	allow, err := config.LoadAllowList(cfg.PermissionsPath, cfg.AllowedUsers...)
	if err != nil {
		return false, err
	}
	if allow.Len() == 0 {
		log.Warn().Str("path", cfg.PermissionsPath).Msg("allow-list is empty, admin commands are disabled")
	}

	store, closeStore, err := storage.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return false, err
	}
	defer closeStore()
	log.Info().Str("backend", cfg.StoreBackend).Msg("definition store opened")

	relay := webhook.NewRelay(webhook.Options{
		Timeout:     cfg.WebhookTimeout,
		MaxAttempts: cfg.WebhookMaxAttempts,
	})

	mws := []cmd.Middleware{middleware.WithRecover(), middleware.WithCommandLogger()}
	registry := cmd.NewRegistry()
	loader := dynamic.NewLoader(store, registry, dynamic.NewDispatcher(store, relay), mws...)

	svc := admin.NewService(store, loader, allow)
	svc.Reserve(manage.Names()...)
	for _, c := range manage.All(svc) {
		if err := registry.Register(cmd.Apply(c, mws...)); err != nil {
			return false, fmt.Errorf("register %s: %w", c.Name(), err)
		}
	}

	if cfg.StoreBackend == storage.BackendFile {
		if err := docs.WriteReadme(cfg.CommandsDir, manage.All(svc)); err != nil {
			log.Warn().Err(err).Msg("failed to update readme")
		}
	}

	var restartRequested atomic.Bool
	svc.OnStop(func(r bool) {
		restartRequested.Store(r)
		cancel()
	})

	bot, err := discord.New(discord.Options{
		Token:            cfg.DiscordToken,
		GuildID:          cfg.GuildID,
		CacheDir:         cfg.CommandCacheDir,
		PresenceInterval: cfg.PresenceInterval,
	}, registry)
	if err != nil {
		return false, err
	}
	loader.OnChange(bot.RefreshCommands)

	res, err := loader.Reload(ctx)
	if err != nil {
		return false, err
	}
	log.Info().Int("dynamic", len(res.Added)).Int("total", len(registry.Names())).Msg("commands loaded")

	if cfg.KeepAliveAddr != "" {
		h := keepalive.Handler(func() int { return len(registry.Names()) })
		go func() {
			if err := keepalive.Run(ctx, cfg.KeepAliveAddr, h); err != nil {
				log.Error().Err(err).Msg("keep-alive server failed")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("Received signal, shutting down...")
		cancel()
	case err := <-errCh:
		cancel()
		if err != nil {
			return false, fmt.Errorf("discord bot error: %w", err)
		}
		return restartRequested.Load(), nil
	case <-ctx.Done():
	}

	if err := <-errCh; err != nil {
		return false, fmt.Errorf("discord bot error: %w", err)
	}
	return restartRequested.Load(), nil
}
