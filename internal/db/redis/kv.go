package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.B().Get().Key(key).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// scanBatch is the COUNT hint per SCAN round trip.
const scanBatch = 500

// DeleteByPrefix removes all keys matching prefix*. Keys are walked with SCAN
// and released with UNLINK, so large keyspaces do not block the server.
func (s *Store) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(prefix + "*").Count(scanBatch).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return removed, &db.Error{Op: db.OpScan, Err: err}
		}

		if len(entry.Elements) > 0 {
			del := s.client.B().Unlink().Key(entry.Elements...).Build()
			n, err := s.client.Do(ctx, del).AsInt64()
			if err != nil {
				return removed, &db.Error{Op: db.OpDel, Err: err}
			}
			removed += int(n)
		}

		if entry.Cursor == 0 {
			return removed, nil
		}
		cursor = entry.Cursor
	}
}
