package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

// RTCProvider mints channel credentials and drives recordings on the external
// video provider. It is injected into the stream service so callers never
// touch provider configuration directly.
type RTCProvider interface {
	MintHostCredential(ctx context.Context, channel string, uid int64, ttl time.Duration) (*models.StreamCredential, error)
	MintViewerCredential(ctx context.Context, channel string, uid int64, ttl time.Duration) (*models.StreamCredential, error)
	ListChannelMembers(ctx context.Context, channel string) ([]string, error)
	StartRecording(ctx context.Context, channel string, uid int64) (resourceID, sid string, err error)
	StopRecording(ctx context.Context, channel, sid, resourceID string) error
}

type RESTRTCProvider struct {
	baseURL    string
	appID      string
	appCert    string
	httpClient *http.Client
}

func NewRESTRTCProvider(baseURL, appID, appCert string) *RESTRTCProvider {
	return &RESTRTCProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appID:      appID,
		appCert:    appCert,
		httpClient: http.DefaultClient,
	}
}

type mintTokenRequest struct {
	Channel    string `json:"channel"`
	UID        int64  `json:"uid"`
	Role       string `json:"role"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type mintTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (p *RESTRTCProvider) MintHostCredential(ctx context.Context, channel string, uid int64, ttl time.Duration) (*models.StreamCredential, error) {
	return p.mintCredential(ctx, channel, uid, "host", ttl)
}

func (p *RESTRTCProvider) MintViewerCredential(ctx context.Context, channel string, uid int64, ttl time.Duration) (*models.StreamCredential, error) {
	return p.mintCredential(ctx, channel, uid, "viewer", ttl)
}

func (p *RESTRTCProvider) mintCredential(ctx context.Context, channel string, uid int64, role string, ttl time.Duration) (*models.StreamCredential, error) {
	tokenURL := fmt.Sprintf("%s/v1/projects/%s/tokens", p.baseURL, p.appID)
	body, err := json.Marshal(mintTokenRequest{
		Channel:    channel,
		UID:        uid,
		Role:       role,
		TTLSeconds: int(ttl.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal token payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(p.appID, p.appCert)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mint credential: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("mint credential: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var minted mintTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&minted); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if minted.Token == "" {
		return nil, fmt.Errorf("token missing from response")
	}

	return &models.StreamCredential{
		Token:       minted.Token,
		ChannelName: channel,
		UID:         uid,
		Role:        role,
		ExpiresAt:   minted.ExpiresAt,
	}, nil
}

func (p *RESTRTCProvider) ListChannelMembers(ctx context.Context, channel string) ([]string, error) {
	membersURL := fmt.Sprintf("%s/v1/projects/%s/channels/%s/members", p.baseURL, p.appID, channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, membersURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build members request: %w", err)
	}
	req.SetBasicAuth(p.appID, p.appCert)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list channel members: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("list channel members: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var response struct {
		Members []string `json:"members"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode members response: %w", err)
	}
	return response.Members, nil
}

func (p *RESTRTCProvider) StartRecording(ctx context.Context, channel string, uid int64) (string, string, error) {
	startURL := fmt.Sprintf("%s/v1/projects/%s/recordings/start", p.baseURL, p.appID)
	body, err := json.Marshal(map[string]any{
		"channel": channel,
		"uid":     uid,
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal start payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, startURL, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("build start request: %w", err)
	}
	req.SetBasicAuth(p.appID, p.appCert)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("start recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", "", fmt.Errorf("start recording: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var started struct {
		ResourceID string `json:"resource_id"`
		SID        string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return "", "", fmt.Errorf("decode start response: %w", err)
	}
	return started.ResourceID, started.SID, nil
}

func (p *RESTRTCProvider) StopRecording(ctx context.Context, channel, sid, resourceID string) error {
	stopURL := fmt.Sprintf("%s/v1/projects/%s/recordings/stop", p.baseURL, p.appID)
	body, err := json.Marshal(map[string]string{
		"channel":     channel,
		"sid":         sid,
		"resource_id": resourceID,
	})
	if err != nil {
		return fmt.Errorf("marshal stop payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stopURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build stop request: %w", err)
	}
	req.SetBasicAuth(p.appID, p.appCert)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stop recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("stop recording: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}
	return nil
}

const placeholderToken = "placeholder-rtc-token"

// PlaceholderRTCProvider backs local and dev environments where no RTC
// credentials are configured. Credential requests succeed with a fixed token
// instead of failing the surrounding request.
type PlaceholderRTCProvider struct{}

func NewPlaceholderRTCProvider() *PlaceholderRTCProvider {
	return &PlaceholderRTCProvider{}
}

func (p *PlaceholderRTCProvider) MintHostCredential(_ context.Context, channel string, uid int64, ttl time.Duration) (*models.StreamCredential, error) {
	return placeholderCredential(channel, uid, "host", ttl), nil
}

func (p *PlaceholderRTCProvider) MintViewerCredential(_ context.Context, channel string, uid int64, ttl time.Duration) (*models.StreamCredential, error) {
	return placeholderCredential(channel, uid, "viewer", ttl), nil
}

func (p *PlaceholderRTCProvider) ListChannelMembers(context.Context, string) ([]string, error) {
	return nil, fmt.Errorf("rtc provider not configured")
}

func (p *PlaceholderRTCProvider) StartRecording(context.Context, string, int64) (string, string, error) {
	return "", "", nil
}

func (p *PlaceholderRTCProvider) StopRecording(context.Context, string, string, string) error {
	return nil
}

func placeholderCredential(channel string, uid int64, role string, ttl time.Duration) *models.StreamCredential {
	return &models.StreamCredential{
		Token:       placeholderToken,
		ChannelName: channel,
		UID:         uid,
		Role:        role,
		ExpiresAt:   time.Now().Add(ttl),
		Placeholder: true,
	}
}
