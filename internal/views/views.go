// Package views counts reads of public notes. Counts are buffered in Redis
// and flushed to the note_views table on a timer; without Redis configured
// they are written straight to the table.
package views

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/notespace-app/notespace/internal/store"
)

const keyPrefix = "note:views:"

type Counter struct {
	rdb   *redis.Client
	store *store.Store
	log   zerolog.Logger
}

// New builds a Counter. rdb may be nil, in which case every Record hits the
// database directly.
func New(rdb *redis.Client, st *store.Store, log zerolog.Logger) *Counter {
	return &Counter{rdb: rdb, store: st, log: log}
}

// Record registers one view of a note. Failures are logged and swallowed: a
// lost view count never fails the request that caused it.
func (c *Counter) Record(ctx context.Context, noteID int64) {
	if c.rdb != nil {
		if err := c.rdb.Incr(ctx, key(noteID)).Err(); err != nil {
			c.log.Error().Err(err).Int64("note_id", noteID).Msg("failed to record view in redis")
		}
		return
	}
	if err := c.store.AddNoteViews(ctx, noteID, 1); err != nil {
		c.log.Error().Err(err).Int64("note_id", noteID).Msg("failed to record view")
	}
}

// Count returns the total views for a note: the persisted counter plus
// whatever is still buffered in Redis.
func (c *Counter) Count(ctx context.Context, noteID int64) int64 {
	total, err := c.store.GetNoteViews(ctx, noteID)
	if err != nil {
		c.log.Error().Err(err).Int64("note_id", noteID).Msg("failed to read view count")
		return 0
	}
	if c.rdb != nil {
		if pending, err := c.rdb.Get(ctx, key(noteID)).Int64(); err == nil {
			total += pending
		}
	}
	return total
}

// Start flushes buffered counts to the database on a ticker until ctx is
// cancelled. No-op without Redis.
func (c *Counter) Start(ctx context.Context, interval time.Duration) {
	if c.rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.Flush(context.Background())
				return
			case <-ticker.C:
				c.Flush(ctx)
			}
		}
	}()
}

// Flush drains the Redis counters into note_views.
func (c *Counter) Flush(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	keys, err := c.rdb.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		c.log.Error().Err(err).Msg("failed to list view keys")
		return
	}
	for _, k := range keys {
		noteID, err := strconv.ParseInt(strings.TrimPrefix(k, keyPrefix), 10, 64)
		if err != nil {
			continue
		}
		count, err := c.rdb.GetDel(ctx, k).Int64()
		if err != nil || count == 0 {
			continue
		}
		if err := c.store.AddNoteViews(ctx, noteID, count); err != nil {
			c.log.Error().Err(err).Int64("note_id", noteID).Msg("failed to persist view count")
			// Put the delta back so it is not lost.
			c.rdb.IncrBy(ctx, k, count)
		}
	}
}

func key(noteID int64) string {
	return keyPrefix + strconv.FormatInt(noteID, 10)
}
