package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubStreamService struct {
	startResult       *models.StreamInfo
	startErr          error
	endResult         *models.StreamInfo
	endErr            error
	joinResult        *models.Participant
	joinErr           error
	leaveResult       *models.Participant
	leaveErr          error
	infoResult        *models.StreamInfo
	infoErr           error
	participantsList  []models.Participant
	channelMembers    []string
	participantsErr   error
	lastActorID       int64
	lastRole          string
	lastSessionID     int64
}

func (s *stubStreamService) StartStream(_ context.Context, trainerID int64, role string, sessionID int64) (*models.StreamInfo, error) {
	s.lastActorID = trainerID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.startResult, s.startErr
}

func (s *stubStreamService) EndStream(_ context.Context, trainerID int64, role string, sessionID int64) (*models.StreamInfo, error) {
	s.lastActorID = trainerID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.endResult, s.endErr
}

func (s *stubStreamService) JoinStream(_ context.Context, userID int64, role string, sessionID int64) (*models.Participant, error) {
	s.lastActorID = userID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.joinResult, s.joinErr
}

func (s *stubStreamService) LeaveStream(_ context.Context, userID int64, sessionID int64) (*models.Participant, error) {
	s.lastActorID = userID
	s.lastSessionID = sessionID
	return s.leaveResult, s.leaveErr
}

func (s *stubStreamService) GetStreamInfo(_ context.Context, userID int64, role string, sessionID int64) (*models.StreamInfo, error) {
	s.lastActorID = userID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.infoResult, s.infoErr
}

func (s *stubStreamService) ListParticipants(_ context.Context, sessionID int64) ([]models.Participant, []string, error) {
	s.lastSessionID = sessionID
	return s.participantsList, s.channelMembers, s.participantsErr
}

func newStreamTestApp(handler *StreamHandler, role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/stream/:sessionId/start", handler.Start)
	app.Post("/api/stream/:sessionId/end", handler.End)
	app.Post("/api/stream/:sessionId/join", handler.Join)
	app.Post("/api/stream/:sessionId/leave", handler.Leave)
	app.Get("/api/stream/:sessionId", handler.GetInfo)
	app.Get("/api/stream/:sessionId/participants", handler.ListParticipants)
	return app
}

func TestStartStreamReturnsCredential(t *testing.T) {
	started := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	service := &stubStreamService{
		startResult: &models.StreamInfo{
			SessionID:   12,
			Status:      models.SessionStatusLive,
			ChannelName: "fitstream_12",
			StartedAt:   &started,
			Credential: &models.StreamCredential{
				Token:       "host-token",
				ChannelName: "fitstream_12",
				UID:         7,
				Role:        "host",
			},
		},
	}
	handler := &StreamHandler{service: service}
	app := newStreamTestApp(handler, "trainer", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/stream/12/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 7 || service.lastSessionID != 12 {
		t.Fatalf("unexpected actor/session: %d/%d", service.lastActorID, service.lastSessionID)
	}
	var body struct {
		Stream models.StreamInfo `json:"stream"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Stream.ChannelName != "fitstream_12" {
		t.Fatalf("unexpected channel: %q", body.Stream.ChannelName)
	}
	if body.Stream.Credential == nil || body.Stream.Credential.Token != "host-token" {
		t.Fatalf("expected host credential in payload")
	}
}

func TestStartStreamForbiddenForOtherTrainer(t *testing.T) {
	handler := &StreamHandler{service: &stubStreamService{startErr: services.ErrForbidden}}
	app := newStreamTestApp(handler, "trainer", "8")

	req := httptest.NewRequest(http.MethodPost, "/api/stream/12/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestStartStreamUpstreamFailure(t *testing.T) {
	handler := &StreamHandler{service: &stubStreamService{startErr: services.ErrUpstream}}
	app := newStreamTestApp(handler, "trainer", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/stream/12/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestJoinStreamTracksParticipant(t *testing.T) {
	service := &stubStreamService{
		joinResult: &models.Participant{ID: 1, SessionID: 12, UserID: 42},
	}
	handler := &StreamHandler{service: service}
	app := newStreamTestApp(handler, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/stream/12/join", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Joined      bool                `json:"joined"`
		Participant *models.Participant `json:"participant"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Joined || body.Participant == nil || body.Participant.UserID != 42 {
		t.Fatalf("unexpected join payload: %+v", body)
	}
}

func TestJoinStreamTrainerIsNotTracked(t *testing.T) {
	handler := &StreamHandler{service: &stubStreamService{}}
	app := newStreamTestApp(handler, "trainer", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/stream/12/join", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Joined      bool                `json:"joined"`
		Participant *models.Participant `json:"participant"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Joined || body.Participant != nil {
		t.Fatalf("unexpected join payload: %+v", body)
	}
}

func TestLeaveStreamRequiresParticipation(t *testing.T) {
	handler := &StreamHandler{service: &stubStreamService{leaveErr: services.ErrNotParticipant}}
	app := newStreamTestApp(handler, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/stream/12/leave", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGetStreamInfoWhenNotLive(t *testing.T) {
	handler := &StreamHandler{service: &stubStreamService{infoErr: services.ErrSessionNotLive}}
	app := newStreamTestApp(handler, "user", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/stream/12", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListParticipantsIncludesChannelMembers(t *testing.T) {
	service := &stubStreamService{
		participantsList: []models.Participant{{ID: 1, SessionID: 12, UserID: 42}},
		channelMembers:   []string{"42", "43"},
	}
	handler := &StreamHandler{service: service}
	app := newStreamTestApp(handler, "trainer", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/stream/12/participants", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Participants   []models.Participant `json:"participants"`
		ChannelMembers []string             `json:"channel_members"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Participants) != 1 || len(body.ChannelMembers) != 2 {
		t.Fatalf("unexpected roster payload: %+v", body)
	}
}
