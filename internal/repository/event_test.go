package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapvault/gallery-server-go/internal/database"
	"github.com/snapvault/gallery-server-go/internal/model"
)

// The status window logic lives in the SQL predicates, not in Go, so these
// tests run against a real Postgres. Set TEST_DATABASE_URL to a scratch
// database to enable them.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Connect(dsn)
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id         text PRIMARY KEY,
			slug       text NOT NULL UNIQUE,
			name       text NOT NULL,
			event_date timestamptz NOT NULL,
			end_date   timestamptz NOT NULL,
			status     text NOT NULL DEFAULT 'draft',
			pin        text,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec(`TRUNCATE events`)
	require.NoError(t, err)

	return db
}

func insertEvent(t *testing.T, db *database.DB, id, status string, eventDate, endDate time.Time) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO events (id, slug, name, event_date, end_date, status)
		VALUES ($1, $1, $1, $2, $3, $4)
	`, id, eventDate, endDate, status)
	require.NoError(t, err)
}

func assertStatus(t *testing.T, repo EventRepository, id string, want model.EventStatus) {
	t.Helper()
	event, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, want, event.Status, "event %s", id)
}

func TestEventRepository_ActivateDue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEventRepository(db.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	// 12h before event_date is inside the 13h early window; 20h is not.
	insertEvent(t, db, "opens-soon", "draft", now.Add(12*time.Hour), now.Add(36*time.Hour))
	insertEvent(t, db, "too-early", "draft", now.Add(20*time.Hour), now.Add(44*time.Hour))
	insertEvent(t, db, "already-active", "active", now.Add(-1*time.Hour), now.Add(23*time.Hour))
	// A draft whose close threshold has passed never activates.
	insertEvent(t, db, "long-over", "draft", now.Add(-5*24*time.Hour), now.Add(-4*24*time.Hour))

	count, err := repo.ActivateDue(ctx, 13, 13)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assertStatus(t, repo, "opens-soon", model.EventStatusActive)
	assertStatus(t, repo, "too-early", model.EventStatusDraft)
	assertStatus(t, repo, "already-active", model.EventStatusActive)
	assertStatus(t, repo, "long-over", model.EventStatusDraft)

	t.Run("second tick matches nothing", func(t *testing.T) {
		count, err := repo.ActivateDue(ctx, 13, 13)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestEventRepository_CloseDue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEventRepository(db.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	// end_date 12h ago puts the close threshold (end + 1d + 13h) 25h out.
	insertEvent(t, db, "still-open", "active", now.Add(-36*time.Hour), now.Add(-12*time.Hour))
	insertEvent(t, db, "past-grace", "active", now.Add(-3*24*time.Hour), now.Add(-2*24*time.Hour))
	// A draft that was never activated closes directly.
	insertEvent(t, db, "never-activated", "draft", now.Add(-3*24*time.Hour), now.Add(-2*24*time.Hour))
	insertEvent(t, db, "already-closed", "closed", now.Add(-10*24*time.Hour), now.Add(-9*24*time.Hour))

	count, err := repo.CloseDue(ctx, 13)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assertStatus(t, repo, "still-open", model.EventStatusActive)
	assertStatus(t, repo, "past-grace", model.EventStatusClosed)
	assertStatus(t, repo, "never-activated", model.EventStatusClosed)
	assertStatus(t, repo, "already-closed", model.EventStatusClosed)

	t.Run("closed is terminal", func(t *testing.T) {
		count, err := repo.CloseDue(ctx, 13)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
