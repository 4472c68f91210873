package services

import (
	"context"
	"testing"
	"time"
)

func TestPlaceholderProviderMintsUsableCredentials(t *testing.T) {
	provider := NewPlaceholderRTCProvider()
	ctx := context.Background()
	before := time.Now()

	host, err := provider.MintHostCredential(ctx, "fitstream_12", 7, 24*time.Hour)
	if err != nil {
		t.Fatalf("MintHostCredential: %v", err)
	}
	if host.Token != "placeholder-rtc-token" {
		t.Fatalf("unexpected token %q", host.Token)
	}
	if !host.Placeholder {
		t.Fatalf("expected credential to be flagged as placeholder")
	}
	if host.ChannelName != "fitstream_12" || host.UID != 7 || host.Role != "host" {
		t.Fatalf("unexpected credential fields: %+v", host)
	}
	if host.ExpiresAt.Before(before.Add(23 * time.Hour)) {
		t.Fatalf("expected ~24h expiry, got %v", host.ExpiresAt)
	}

	viewer, err := provider.MintViewerCredential(ctx, "fitstream_12", 42, 3*time.Hour)
	if err != nil {
		t.Fatalf("MintViewerCredential: %v", err)
	}
	if viewer.Role != "viewer" || viewer.UID != 42 || !viewer.Placeholder {
		t.Fatalf("unexpected viewer credential: %+v", viewer)
	}
	if viewer.ExpiresAt.After(before.Add(4 * time.Hour)) {
		t.Fatalf("expected ~3h expiry, got %v", viewer.ExpiresAt)
	}
}

func TestPlaceholderProviderRecordingAndMembers(t *testing.T) {
	provider := NewPlaceholderRTCProvider()
	ctx := context.Background()

	// Member listing fails so callers fall back to the stored roster.
	if _, err := provider.ListChannelMembers(ctx, "fitstream_12"); err == nil {
		t.Fatalf("expected member listing to fail")
	}

	// No recording backend: start yields no ids, stop is a no-op.
	resourceID, sid, err := provider.StartRecording(ctx, "fitstream_12", 7)
	if err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if resourceID != "" || sid != "" {
		t.Fatalf("expected empty recording ids, got %q/%q", resourceID, sid)
	}
	if err := provider.StopRecording(ctx, "fitstream_12", "sid", "resource"); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
}
