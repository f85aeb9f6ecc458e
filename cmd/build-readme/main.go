// Command build-readme regenerates readme.txt in the commands directory.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/command/manage"
	"github.com/keshon/dynacmd/internal/docs"
)

func main() {
	dir := flag.String("dir", envOr("COMMANDS_DIR", "commands"), "commands directory")
	flag.Parse()

	if err := docs.WriteReadme(*dir, manage.All(nil)); err != nil {
		log.Fatal().Err(err).Msg("failed to write readme")
	}
	log.Info().Str("dir", *dir).Msg("readme.txt updated")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
