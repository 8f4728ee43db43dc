package admin

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/skywatch/skywatch/internal/config"
	"github.com/skywatch/skywatch/internal/registry"
)

var channels = []config.Channel{
	{ID: "ops", Type: "discord", URLEnv: "OPS_WEBHOOK"},
	{ID: "spotters", Type: "slack", URLEnv: "SPOTTERS_WEBHOOK"},
}

func newService(t *testing.T) (*Service, *registry.Registry) {
	t.Helper()
	reg, err := registry.Open(filepath.Join(t.TempDir(), "destinations.json"))
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	return New(reg, channels), reg
}

func TestSetDestination_AdminSucceeds(t *testing.T) {
	svc, reg := newService(t)

	err := svc.SetDestination(SetDestinationRequest{
		TenantID:         "guild-1",
		ChannelID:        "ops",
		RequesterIsAdmin: true,
	})
	if err != nil {
		t.Fatalf("SetDestination: %v", err)
	}
	if ch, ok := reg.Get("guild-1"); !ok || ch != "ops" {
		t.Errorf("registry: got %q,%v, want ops,true", ch, ok)
	}
}

func TestSetDestination_NonAdminRejected(t *testing.T) {
	svc, reg := newService(t)

	err := svc.SetDestination(SetDestinationRequest{
		TenantID:         "guild-1",
		ChannelID:        "ops",
		RequesterIsAdmin: false,
	})
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("SetDestination by non-admin: got %v, want ErrNotAdmin", err)
	}
	if reg.Count() != 0 {
		t.Errorf("registry must be unchanged after rejected request, got %d entries", reg.Count())
	}
}

func TestSetDestination_NoTenant(t *testing.T) {
	svc, _ := newService(t)

	err := svc.SetDestination(SetDestinationRequest{
		ChannelID:        "ops",
		RequesterIsAdmin: true,
	})
	if !errors.Is(err, ErrNoTenant) {
		t.Fatalf("SetDestination without tenant: got %v, want ErrNoTenant", err)
	}
}

func TestSetDestination_UnknownChannel(t *testing.T) {
	svc, reg := newService(t)

	err := svc.SetDestination(SetDestinationRequest{
		TenantID:         "guild-1",
		ChannelID:        "nope",
		RequesterIsAdmin: true,
	})
	if !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("SetDestination with unknown channel: got %v, want ErrUnknownChannel", err)
	}
	if reg.Count() != 0 {
		t.Errorf("registry must be unchanged, got %d entries", reg.Count())
	}
}

func TestGetDestination_Unset(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.GetDestination("guild-1")
	if err != nil {
		t.Fatalf("GetDestination on unset tenant must not error, got: %v", err)
	}
	if res.Status != StatusUnset {
		t.Errorf("Status: got %q, want %q", res.Status, StatusUnset)
	}
}

func TestGetDestination_OK(t *testing.T) {
	svc, reg := newService(t)
	if err := reg.Set("guild-1", "spotters"); err != nil {
		t.Fatalf("seed registry: %v", err)
	}

	res, err := svc.GetDestination("guild-1")
	if err != nil {
		t.Fatalf("GetDestination: %v", err)
	}
	if res.Status != StatusOK || res.ChannelID != "spotters" {
		t.Errorf("got %+v, want ok/spotters", res)
	}
}

func TestGetDestination_ChannelNoLongerValid(t *testing.T) {
	svc, reg := newService(t)
	// The stored channel was removed from the config since it was bound.
	if err := reg.Set("guild-1", "decommissioned"); err != nil {
		t.Fatalf("seed registry: %v", err)
	}

	res, err := svc.GetDestination("guild-1")
	if err != nil {
		t.Fatalf("GetDestination: %v", err)
	}
	if res.Status != StatusInvalid {
		t.Errorf("Status: got %q, want %q", res.Status, StatusInvalid)
	}
	if res.ChannelID != "decommissioned" {
		t.Errorf("ChannelID: got %q, want the stale binding", res.ChannelID)
	}
}

func TestGetDestination_NoTenant(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.GetDestination(""); !errors.Is(err, ErrNoTenant) {
		t.Fatalf("GetDestination without tenant: got %v, want ErrNoTenant", err)
	}
}

func TestReplaceChannels(t *testing.T) {
	svc, reg := newService(t)
	if err := reg.Set("guild-1", "ops"); err != nil {
		t.Fatalf("seed registry: %v", err)
	}

	// Drop "ops" from the channel set, as a config edit would.
	svc.ReplaceChannels([]config.Channel{
		{ID: "spotters", Type: "slack", URLEnv: "SPOTTERS_WEBHOOK"},
	})

	res, err := svc.GetDestination("guild-1")
	if err != nil {
		t.Fatalf("GetDestination: %v", err)
	}
	if res.Status != StatusInvalid {
		t.Errorf("Status after channel removed: got %q, want %q", res.Status, StatusInvalid)
	}

	err = svc.SetDestination(SetDestinationRequest{
		TenantID:         "guild-2",
		ChannelID:        "ops",
		RequesterIsAdmin: true,
	})
	if !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("SetDestination on removed channel: got %v, want ErrUnknownChannel", err)
	}

	// Restoring the channel makes the old binding resolve again.
	svc.ReplaceChannels(channels)
	res, err = svc.GetDestination("guild-1")
	if err != nil {
		t.Fatalf("GetDestination: %v", err)
	}
	if res.Status != StatusOK {
		t.Errorf("Status after channel restored: got %q, want %q", res.Status, StatusOK)
	}
}

func TestDestinations_Count(t *testing.T) {
	svc, reg := newService(t)
	if svc.Destinations() != 0 {
		t.Errorf("Destinations: got %d, want 0", svc.Destinations())
	}
	if err := reg.Set("guild-1", "ops"); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	if svc.Destinations() != 1 {
		t.Errorf("Destinations: got %d, want 1", svc.Destinations())
	}
}
