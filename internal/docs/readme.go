// Package docs writes the readme entry kept next to the definitions. It
// explains the definition format and lists the built-in commands; the store
// never lists it as a command.
package docs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/definition"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/pkg/cmd"
)

var readmeTmpl = template.Must(template.New("readme").Parse(`Dynamic commands
================

Every <name>{{.Suffix}} file in this directory is a slash command called /<name>.
Names are 1-32 characters: lowercase letters, digits, '-' and '_'.

Text command: anything that is not a JSON object with "webhook_url".
The file content is replied privately to whoever runs the command.

Webhook command: a JSON object such as

  {
    "webhook_url": "https://discord.com/api/webhooks/<id>/<token>",
    "title": "Title",
    "description": "Body",
    "channel_id": "123456789012345678",
    "color": "{{.DefaultColor}}",
    "thumbnail": null
  }

Running it posts one embed to the webhook. color accepts "#RRGGBB" or a
decimal number and falls back to {{.DefaultColor}}.

Built-in commands
-----------------
{{range .Builtins}}
/{{.Name}}  {{.Description}}{{end}}
`))

type entry struct {
	Name        string
	Description string
}

// Render returns the readme text for builtins.
func Render(builtins []cmd.Command) ([]byte, error) {
	entries := make([]entry, 0, len(builtins))
	for _, c := range builtins {
		entries = append(entries, entry{Name: c.Name(), Description: c.Description()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var buf bytes.Buffer
	err := readmeTmpl.Execute(&buf, map[string]any{
		"Suffix":       storage.Suffix,
		"DefaultColor": definition.DefaultColorHex,
		"Builtins":     entries,
	})
	if err != nil {
		return nil, fmt.Errorf("render readme: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReadme writes <dir>/readme.txt, replacing any previous copy.
func WriteReadme(dir string, builtins []cmd.Command) error {
	data, err := Render(builtins)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, storage.ReservedName+storage.Suffix)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	log.Debug().Str("path", path).Msg("readme updated")
	return nil
}
