package attendance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const recentCacheKey = "qrattend:recent"

// Service coordinates the scan journal and the cached recent-attendance view.
type Service struct {
	repo     *Repository
	cache    *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewService creates a service backed by the journal repository. cache may be
// nil, in which case every read hits the database.
func NewService(repo *Repository, cache *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

// Record journals a normalized event and drops the cached view so the next
// read reflects it.
func (s *Service) Record(ctx context.Context, evt Event) (Event, error) {
	stored, err := s.repo.InsertEvent(ctx, evt)
	if err != nil {
		return Event{}, err
	}
	s.invalidate(ctx)
	return stored, nil
}

// SetMessageStatus records a notification outcome and refreshes the view.
func (s *Service) SetMessageStatus(ctx context.Context, id string, status MessageStatus) error {
	if err := s.repo.UpdateMessageStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Event returns a single journal entry.
func (s *Service) Event(ctx context.Context, id string) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// Recent returns today's scans as a display view. Reads go through the cache;
// the TTL matches the dashboard's refresh period, so concurrent refreshes are
// last-write-wins over the same key.
func (s *Service) Recent(ctx context.Context) (RecentView, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, recentCacheKey).Result(); err == nil {
			var view RecentView
			if err := json.Unmarshal([]byte(raw), &view); err == nil {
				return view, nil
			}
		}
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	events, err := s.repo.ListSince(ctx, midnight, 200)
	if err != nil {
		return RecentView{}, err
	}
	view := BuildRecentView(events)

	if s.cache != nil {
		if raw, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, recentCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("recent view cache write failed")
			}
		}
	}
	return view, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, recentCacheKey).Err(); err != nil {
		s.log.Warn().Err(err).Msg("recent view cache invalidation failed")
	}
}
