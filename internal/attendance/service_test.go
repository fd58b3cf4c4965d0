package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestRecentServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cached := BuildRecentView([]Event{{IndexNumber: "ST-1", Status: StatusEntered}})
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, rdb.Set(context.Background(), recentCacheKey, raw, time.Minute).Err())

	// No repository behind the service; a cache hit must never reach it.
	svc := NewService(nil, rdb, time.Minute, zerolog.Nop())
	view, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, view)
}

func TestRecentCacheMissHitsJournal(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, err := sql.Open("pgx", "postgres://u:p@127.0.0.1:1/qrattend?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(NewRepository(db), rdb, time.Minute, zerolog.Nop())
	_, err = svc.Recent(context.Background())
	assert.Error(t, err)
}
