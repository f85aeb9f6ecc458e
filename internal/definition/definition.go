// Package definition classifies stored command definitions.
//
// A definition is either a text command, replied verbatim (or rendered when it
// decodes as JSON), or a webhook command that relays an embed. Parse never
// fails: anything that is not a well-formed webhook document is text.
package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// DefaultColor is the embed color used when none is given or it cannot be parsed.
const DefaultColor = 0x00FF00

// DefaultColorHex is DefaultColor as stored in definition files.
const DefaultColorHex = "#00FF00"

type Kind int

const (
	KindText Kind = iota
	KindWebhook
)

func (k Kind) String() string {
	if k == KindWebhook {
		return "webhook"
	}
	return "text"
}

// Definition is the parsed form of one stored command. Exactly one of Text or
// Webhook is meaningful, selected by Kind.
type Definition struct {
	Kind    Kind
	Text    string
	Webhook *WebhookDefinition
}

// WebhookDefinition describes an embed relayed to a webhook URL.
type WebhookDefinition struct {
	URL         string
	Title       string
	Description string
	ChannelID   string
	Color       int
	Thumbnail   string
}

// stored is the on-disk shape of a webhook definition.
type stored struct {
	WebhookURL  any     `json:"webhook_url"`
	Title       any     `json:"title,omitempty"`
	Description any     `json:"description,omitempty"`
	ChannelID   any     `json:"channel_id,omitempty"`
	Color       any     `json:"color,omitempty"`
	Thumbnail   *string `json:"thumbnail"`
}

// Parse classifies raw definition content.
func Parse(raw []byte) Definition {
	var value any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return Definition{Kind: KindText, Text: string(raw)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Definition{Kind: KindText, Text: string(raw)}
	}

	obj, isObject := value.(map[string]any)
	if !isObject {
		return Definition{Kind: KindText, Text: render(value)}
	}
	if _, ok := obj["webhook_url"]; !ok {
		return Definition{Kind: KindText, Text: render(value)}
	}

	url, _ := obj["webhook_url"].(string)
	if url == "" {
		// malformed webhook document: reply with what is stored
		return Definition{Kind: KindText, Text: string(raw)}
	}

	color, present := obj["color"]
	if !present {
		color = DefaultColorHex
	}

	return Definition{
		Kind: KindWebhook,
		Webhook: &WebhookDefinition{
			URL:         url,
			Title:       stringField(obj["title"]),
			Description: stringField(obj["description"]),
			ChannelID:   idField(obj["channel_id"]),
			Color:       ParseColor(color),
			Thumbnail:   stringField(obj["thumbnail"]),
		},
	}
}

// Encode produces the stored document for a webhook definition. Color is kept
// as given so the file mirrors what the operator typed.
func Encode(url, title, description, channelID, color, thumbnail string) ([]byte, error) {
	if color == "" {
		color = DefaultColorHex
	}
	doc := stored{
		WebhookURL:  url,
		Title:       title,
		Description: description,
		ChannelID:   channelID,
		Color:       color,
	}
	if thumbnail != "" {
		doc.Thumbnail = &thumbnail
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode webhook definition: %w", err)
	}
	return data, nil
}

// render turns a decoded JSON value into reply text. Scalars are replied as
// their literal text; objects and arrays as an indented JSON code block.
func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return "```json\n" + string(out) + "\n```"
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// idField accepts snowflakes stored either as strings or as JSON numbers.
func idField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		if n, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return strconv.FormatUint(n, 10)
		}
		return t.String()
	default:
		return ""
	}
}
