package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/skywatch/skywatch/internal/config"
	"github.com/skywatch/skywatch/internal/registry"
)

// Sentinel errors returned by the admin operations. Transports map these to
// user-facing responses; nothing else propagates.
var (
	ErrNoTenant       = errors.New("tenant context required")
	ErrNotAdmin       = errors.New("administrator privileges required")
	ErrUnknownChannel = errors.New("unknown channel")
)

// Destination statuses returned by GetDestination.
const (
	StatusOK      = "ok"      // bound to a channel that still resolves
	StatusUnset   = "unset"   // no destination configured for the tenant
	StatusInvalid = "invalid" // bound to a channel no longer in the config
)

// Service implements the admin operations on the destination registry,
// independent of whichever transport dispatches them. The channel set can be
// swapped at runtime via ReplaceChannels when the config file is edited.
type Service struct {
	registry *registry.Registry

	mu       sync.RWMutex
	channels map[string]config.Channel
}

// New creates a Service over the given registry and channel set.
func New(reg *registry.Registry, channels []config.Channel) *Service {
	return &Service{registry: reg, channels: channelMap(channels)}
}

func channelMap(channels []config.Channel) map[string]config.Channel {
	m := make(map[string]config.Channel, len(channels))
	for _, ch := range channels {
		m[ch.ID] = ch
	}
	return m
}

// ReplaceChannels swaps the configured channel set. Destination bindings are
// untouched; ones pointing at a removed channel start reporting
// StatusInvalid, and start resolving again if the channel comes back.
func (s *Service) ReplaceChannels(channels []config.Channel) {
	s.mu.Lock()
	s.channels = channelMap(channels)
	s.mu.Unlock()
}

// Destinations returns the number of registered destination bindings.
func (s *Service) Destinations() int {
	return s.registry.Count()
}

// channelExists reports whether id is in the current channel set.
func (s *Service) channelExists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.channels[id]
	return ok
}

// SetDestinationRequest carries the requester identity alongside the
// destination binding to apply.
type SetDestinationRequest struct {
	TenantID         string
	ChannelID        string
	RequesterIsAdmin bool
}

// SetDestination binds the tenant's alerts to the given channel and persists
// the registry. Only administrators may call it; a rejected request leaves
// the registry unchanged.
func (s *Service) SetDestination(req SetDestinationRequest) error {
	if req.TenantID == "" {
		return ErrNoTenant
	}
	if !req.RequesterIsAdmin {
		return ErrNotAdmin
	}
	if !s.channelExists(req.ChannelID) {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, req.ChannelID)
	}

	if err := s.registry.Set(req.TenantID, req.ChannelID); err != nil {
		return fmt.Errorf("persist destination: %w", err)
	}
	slog.Info("admin: destination set", "tenant", req.TenantID, "channel", req.ChannelID)
	return nil
}

// GetDestinationResult is the outcome of a destination lookup.
type GetDestinationResult struct {
	Status    string
	ChannelID string
}

// GetDestination reports the channel bound for tenantID. An unbound tenant
// yields StatusUnset, not an error. A binding whose channel has since been
// removed from the config yields StatusInvalid with the stale channel ID.
func (s *Service) GetDestination(tenantID string) (GetDestinationResult, error) {
	if tenantID == "" {
		return GetDestinationResult{}, ErrNoTenant
	}

	channelID, ok := s.registry.Get(tenantID)
	if !ok {
		return GetDestinationResult{Status: StatusUnset}, nil
	}
	if !s.channelExists(channelID) {
		return GetDestinationResult{Status: StatusInvalid, ChannelID: channelID}, nil
	}
	return GetDestinationResult{Status: StatusOK, ChannelID: channelID}, nil
}
