package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/skywatch/skywatch/internal/config"
	"github.com/skywatch/skywatch/internal/metrics"
	"github.com/skywatch/skywatch/internal/registry"
	"github.com/skywatch/skywatch/internal/track"
)

const deliveryTimeout = 10 * time.Second

// Broadcaster delivers sighting alerts to every destination in the registry.
// The channel set can be swapped at runtime via ReplaceChannels when the
// config file is edited.
type Broadcaster struct {
	registry *registry.Registry
	client   *http.Client

	mu       sync.RWMutex
	channels map[string]config.Channel
}

// New creates a Broadcaster over the given registry and channel set.
func New(reg *registry.Registry, channels []config.Channel) *Broadcaster {
	return &Broadcaster{
		registry: reg,
		channels: channelMap(channels),
		client:   &http.Client{Timeout: deliveryTimeout},
	}
}

func channelMap(channels []config.Channel) map[string]config.Channel {
	m := make(map[string]config.Channel, len(channels))
	for _, ch := range channels {
		m[ch.ID] = ch
	}
	return m
}

// ReplaceChannels swaps the configured channel set used for delivery.
func (b *Broadcaster) ReplaceChannels(channels []config.Channel) {
	b.mu.Lock()
	b.channels = channelMap(channels)
	b.mu.Unlock()
}

// channel resolves a channel ID against the current set.
func (b *Broadcaster) channel(id string) (config.Channel, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ch, ok := b.channels[id]
	return ch, ok
}

// Message renders the alert text for a sighting.
func Message(s track.Sighting) string {
	return fmt.Sprintf("Tracked aircraft %s has been spotted!\nhttps://globe.adsbexchange.com/?icao=%s",
		s.Registration, s.Icao24)
}

// Broadcast delivers the alert for s to every registered destination.
// One destination's failure never blocks or aborts delivery to the others:
// unresolvable channels are skipped, delivery errors are logged and counted,
// and nothing is retried — the next qualifying sighting is the retry path.
// Broadcast never returns an error.
func (b *Broadcaster) Broadcast(ctx context.Context, s track.Sighting) {
	msg := Message(s)

	for tenant, channelID := range b.registry.All() {
		ch, ok := b.channel(channelID)
		if !ok {
			slog.Warn("notify: destination channel no longer configured — skipping",
				"tenant", tenant, "channel", channelID)
			metrics.Deliveries.WithLabelValues("skipped").Inc()
			continue
		}

		url := ch.URL()
		if url == "" {
			slog.Warn("notify: webhook URL not set — skipping",
				"tenant", tenant, "channel", channelID, "env", ch.URLEnv)
			metrics.Deliveries.WithLabelValues("skipped").Inc()
			continue
		}

		var err error
		switch ch.Type {
		case "discord":
			err = b.sendDiscord(ctx, url, msg)
		case "slack":
			err = b.sendSlack(ctx, url, msg)
		default: // "http"
			err = b.sendHTTP(ctx, url, msg, s)
		}

		if err != nil {
			slog.Error("notify: delivery failed",
				"tenant", tenant, "channel", channelID, "err", err)
			metrics.Deliveries.WithLabelValues("error").Inc()
		} else {
			slog.Debug("notify: delivered",
				"tenant", tenant, "channel", channelID, "registration", s.Registration)
			metrics.Deliveries.WithLabelValues("ok").Inc()
		}
	}
}

func (b *Broadcaster) sendDiscord(ctx context.Context, url, msg string) error {
	body, _ := json.Marshal(map[string]string{"content": msg})
	return b.post(ctx, url, body)
}

func (b *Broadcaster) sendSlack(ctx context.Context, url, msg string) error {
	body, _ := json.Marshal(map[string]string{"text": msg})
	return b.post(ctx, url, body)
}

func (b *Broadcaster) sendHTTP(ctx context.Context, url, msg string, s track.Sighting) error {
	body, _ := json.Marshal(map[string]string{
		"message":      msg,
		"icao24":       s.Icao24,
		"registration": s.Registration,
		"observed_at":  s.ObservedAt.UTC().Format(time.RFC3339),
	})
	return b.post(ctx, url, body)
}

func (b *Broadcaster) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
