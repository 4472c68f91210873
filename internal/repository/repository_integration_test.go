package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func createIntegrationUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role string) int64 {
	t.Helper()

	userRepo := NewUserRepository(pool)
	user := &models.User{
		Email:        fmt.Sprintf("repo-test-%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "test-hash",
		Role:         role,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", role, err)
	}
	return user.ID
}

func createIntegrationSession(t *testing.T, ctx context.Context, pool *pgxpool.Pool, trainerID int64, maxParticipants int) *models.Session {
	t.Helper()

	session, err := NewSessionRepository(pool).Create(ctx, CreateSessionInput{
		TrainerID:       trainerID,
		Title:           "Integration Session",
		ScheduledAt:     time.Now().Add(24 * time.Hour).UTC(),
		DurationMinutes: 45,
		TokenCost:       2,
		MaxParticipants: maxParticipants,
	})
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return session
}

func cleanupIntegrationUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...int64) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}

	if _, err := pool.Exec(ctx, "DELETE FROM participants WHERE user_id = ANY($1) OR session_id IN (SELECT id FROM sessions WHERE trainer_id = ANY($1))", userIDs); err != nil {
		t.Fatalf("cleanup participants: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM bookings WHERE user_id = ANY($1) OR session_id IN (SELECT id FROM sessions WHERE trainer_id = ANY($1))", userIDs); err != nil {
		t.Fatalf("cleanup bookings: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM sessions WHERE trainer_id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup sessions: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
}

func TestSessionCreateAcceptsUnlimitedCapacity(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)

	trainerID := createIntegrationUser(t, ctx, pool, "trainer")
	t.Cleanup(func() { cleanupIntegrationUsers(t, ctx, pool, trainerID) })

	// Zero capacity means no participant cap at all.
	session := createIntegrationSession(t, ctx, pool, trainerID, 0)
	if session.MaxParticipants != 0 {
		t.Fatalf("expected capacity 0, got %d", session.MaxParticipants)
	}

	loaded, err := NewSessionRepository(pool).GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loaded.MaxParticipants != 0 {
		t.Fatalf("expected stored capacity 0, got %d", loaded.MaxParticipants)
	}
}

func TestParticipantRejoinAccumulatesDuration(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	participantRepo := NewParticipantRepository(pool)

	trainerID := createIntegrationUser(t, ctx, pool, "trainer")
	userID := createIntegrationUser(t, ctx, pool, "user")
	t.Cleanup(func() { cleanupIntegrationUsers(t, ctx, pool, trainerID, userID) })

	session := createIntegrationSession(t, ctx, pool, trainerID, 10)

	backdateJoin := func(seconds int) {
		if _, err := pool.Exec(ctx,
			"UPDATE participants SET joined_at = NOW() - make_interval(secs => $3) WHERE session_id = $1 AND user_id = $2",
			session.ID, userID, seconds,
		); err != nil {
			t.Fatalf("backdate join: %v", err)
		}
	}

	if _, err := participantRepo.RecordJoin(ctx, session.ID, userID); err != nil {
		t.Fatalf("first RecordJoin: %v", err)
	}
	backdateJoin(90)
	first, err := participantRepo.RecordLeave(ctx, session.ID, userID)
	if err != nil {
		t.Fatalf("first RecordLeave: %v", err)
	}
	if first.LeftAt == nil {
		t.Fatalf("expected left_at after leave")
	}
	if first.DurationSeconds < 88 || first.DurationSeconds > 93 {
		t.Fatalf("expected ~90s after first interval, got %d", first.DurationSeconds)
	}

	rejoined, err := participantRepo.RecordJoin(ctx, session.ID, userID)
	if err != nil {
		t.Fatalf("second RecordJoin: %v", err)
	}
	if rejoined.LeftAt != nil {
		t.Fatalf("expected rejoin to clear left_at")
	}
	if rejoined.DurationSeconds != first.DurationSeconds {
		t.Fatalf("rejoin must keep the accumulated duration, got %d", rejoined.DurationSeconds)
	}

	backdateJoin(60)
	second, err := participantRepo.RecordLeave(ctx, session.ID, userID)
	if err != nil {
		t.Fatalf("second RecordLeave: %v", err)
	}
	if second.DurationSeconds < first.DurationSeconds+58 || second.DurationSeconds > first.DurationSeconds+63 {
		t.Fatalf("expected both intervals summed, got %d after %d", second.DurationSeconds, first.DurationSeconds)
	}

	// A leave without an open join is reported, not double counted.
	if _, err := participantRepo.RecordLeave(ctx, session.ID, userID); err == nil {
		t.Fatalf("expected second leave in a row to fail")
	}
}
