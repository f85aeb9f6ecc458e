// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives JSON logs with rotation in addition to the
	// console output.
	File    string
	Console io.Writer
}

// Setup installs the global logger and routes discordgo's own logging through
// it. The returned closer flushes the log file, if any.
func Setup(opts Options) (io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	discordgo.Logger = discordLogger
	return closer, nil
}

// discordLogger adapts discordgo.Logger.
func discordLogger(msgL, caller int, format string, a ...interface{}) {
	var ev *zerolog.Event
	switch msgL {
	case discordgo.LogError:
		ev = log.Error()
	case discordgo.LogWarning:
		ev = log.Warn()
	case discordgo.LogInformational:
		ev = log.Info()
	default:
		ev = log.Debug()
	}
	ev.Str("lib", "discordgo").Msgf(format, a...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
