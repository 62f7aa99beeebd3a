package postgresql

import (
	"context"
	"fmt"
	"testing"
	"time"

	"marketplace_admin/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *Storage {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf(
		"postgres://test:test@%s:%s/testdb?sslmode=disable",
		host, port.Port(),
	)

	s, err := New(ctx, connStr, "test_changes")
	require.NoError(t, err)

	require.NoError(t, s.Migrate(ctx))

	t.Cleanup(func() {
		s.Stop()
		_ = pgContainer.Terminate(ctx)
	})

	return s
}

func TestStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "pubadmin:v1:status")
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("upsert keeps the last write", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "pubadmin:v1:status", []byte(`{"p1":"activo"}`)))
		require.NoError(t, s.Set(ctx, "pubadmin:v1:status", []byte(`{"p1":"eliminado"}`)))

		raw, err := s.Get(ctx, "pubadmin:v1:status")
		require.NoError(t, err)
		assert.JSONEq(t, `{"p1":"eliminado"}`, string(raw))
	})

	t.Run("malformed bytes are stored verbatim", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "broken", []byte("{not json")))

		raw, err := s.Get(ctx, "broken")
		require.NoError(t, err)
		assert.Equal(t, "{not json", string(raw))
	})

	t.Run("notify reaches listener", func(t *testing.T) {
		lctx, lcancel := context.WithCancel(ctx)
		defer lcancel()

		got := make(chan string, 1)
		go func() {
			_ = s.Listen(lctx, func(payload []byte) {
				select {
				case got <- string(payload):
				default:
				}
			})
		}()

		require.Eventually(t, func() bool {
			_ = s.Publish(ctx, []byte("ping"))
			select {
			case p := <-got:
				return p == "ping"
			case <-time.After(100 * time.Millisecond):
				return false
			}
		}, 10*time.Second, 200*time.Millisecond)
	})
}
