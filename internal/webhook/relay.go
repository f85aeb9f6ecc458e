// Package webhook delivers embeds to Discord-style webhook URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/pkg/retrylimit"
)

// Message is one embed to relay.
type Message struct {
	URL         string
	Title       string
	Description string
	Color       int
	Thumbnail   string
}

// Embed builds the discordgo embed for m.
func (m Message) Embed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       m.Title,
		Description: m.Description,
		Color:       m.Color,
	}
	if m.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: m.Thumbnail}
	}
	return embed
}

// TransportError reports a failed delivery. Status is 0 when no HTTP
// response was received (DNS, TLS, timeout).
type TransportError struct {
	URL    string
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("webhook returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("webhook request failed: %s", e.Detail)
}

func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) StatusCode() int { return e.Status }

// Options configures a Relay.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	Client      *http.Client
}

// Relay posts embeds. One Relay is shared by all invocations. Each webhook URL
// gets its own limiter, so an endpoint answering 429 only slows its own sends.
type Relay struct {
	client   *http.Client
	timeout  time.Duration
	retry    retrylimit.Config
	limiters sync.Map // url -> *retrylimit.AdaptiveLimiter
}

func NewRelay(opts Options) *Relay {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	retry := retrylimit.DefaultConfig()
	if opts.MaxAttempts > 0 {
		retry.MaxAttempts = opts.MaxAttempts
	}
	return &Relay{
		client:  opts.Client,
		timeout: opts.Timeout,
		retry:   retry,
	}
}

func (r *Relay) limiterFor(url string) *retrylimit.AdaptiveLimiter {
	if l, ok := r.limiters.Load(url); ok {
		return l.(*retrylimit.AdaptiveLimiter)
	}
	l, _ := r.limiters.LoadOrStore(url, retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5))
	return l.(*retrylimit.AdaptiveLimiter)
}

// Send delivers m and returns a *TransportError on any failure. The whole
// call, retries included, is bounded by the relay timeout. Only attempts the
// endpoint cannot have processed are repeated: 429 answers and failures to
// connect. Everything else is final so an embed is never posted twice.
func (r *Relay) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(&discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{m.Embed()},
	})
	if err != nil {
		return &TransportError{URL: m.URL, Detail: err.Error(), Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cfg := r.retry
	cfg.OnRetry = func(attempt int, err error) {
		log.Warn().Str("url", redact(m.URL)).Int("attempt", attempt).Err(err).Msg("webhook send failed, retrying")
	}

	err = retrylimit.Do(ctx, r.limiterFor(m.URL), cfg, func() error {
		return r.post(ctx, m.URL, body)
	})
	if err == nil {
		return nil
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return &TransportError{URL: m.URL, Detail: err.Error(), Err: err}
}

func (r *Relay) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &retrylimit.FatalError{Err: &TransportError{URL: url, Detail: err.Error(), Err: err}}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		te := &TransportError{URL: url, Detail: err.Error(), Err: err}
		if notSent(err) {
			return te
		}
		return &retrylimit.FatalError{Err: te}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	te := &TransportError{URL: url, Status: resp.StatusCode, Detail: strings.TrimSpace(string(msg))}
	if te.Detail == "" {
		te.Detail = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return te
	}
	return &retrylimit.FatalError{Err: te}
}

// notSent reports whether err happened before the request reached the
// endpoint: name resolution or dialing.
func notSent(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// redact drops the token part of a webhook URL for logging.
func redact(url string) string {
	if i := strings.LastIndex(url, "/"); i > 0 && i < len(url)-1 {
		return url[:i+1] + "***"
	}
	return url
}
