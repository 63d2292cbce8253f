package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/config"
	"github.com/example/room-reservations/internal/persistence/memory"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestHashAdminToken(t *testing.T) {
	t.Parallel()

	t.Run("token argument", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		err := run(context.Background(), []string{"hash-admin-token", "-memory", "1024", "-iterations", "1", "s3cret"}, nil, &out)
		require.NoError(t, err)

		hash := strings.TrimSpace(out.String())
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,"), hash)
		assert.NoError(t, application.VerifyToken(hash, "s3cret"))
	})

	t.Run("token from stdin", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		err := run(context.Background(), []string{"hash-admin-token", "-memory", "1024", "-iterations", "1"}, strings.NewReader("from-stdin\n"), &out)
		require.NoError(t, err)
		assert.NoError(t, application.VerifyToken(strings.TrimSpace(out.String()), "from-stdin"))
	})

	t.Run("blank token", func(t *testing.T) {
		t.Parallel()
		err := run(context.Background(), []string{"hash-admin-token"}, strings.NewReader("\n"), &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestOpenStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sqlite applies migrations", func(t *testing.T) {
		t.Parallel()
		cfg := config.Config{Store: config.StoreSQLite, SQLiteDSN: filepath.Join(t.TempDir(), "data", "reservations.db")}
		store, err := openStore(ctx, cfg, discard())
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.Ping(ctx))
		rooms, err := store.ListRooms(ctx)
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		store, err := openStore(ctx, config.Config{Store: config.StoreMemory}, discard())
		require.NoError(t, err)
		assert.NoError(t, store.Ping(ctx))
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()
		_, err := openStore(ctx, config.Config{Store: "mongo"}, discard())
		assert.ErrorContains(t, err, "unsupported store")
	})
}

func TestNewHandler_BookingRoundTrip(t *testing.T) {
	t.Parallel()

	handler, err := newHandler(config.Config{Store: config.StoreMemory, RoomCacheTTL: time.Minute}, memory.New(), discard())
	require.NoError(t, err)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodPost, "/rooms", `{"id":"S01","name":"Room S01","capacity":6}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	booking := `{"room_id":"S01","requester":"Ana","start":"2025-10-21T14:00:00Z","end":"2025-10-21T15:00:00Z"}`
	rec = send(http.MethodPost, "/reservations", booking)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(http.MethodPost, "/reservations", booking)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "the requested time slot for this room is already reserved")

	rec = send(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewHandler_RejectsMalformedHash(t *testing.T) {
	t.Parallel()

	_, err := newHandler(config.Config{AdminTokenHash: "plain-text"}, memory.New(), discard())
	assert.ErrorIs(t, err, application.ErrInvalidTokenHash)
}
