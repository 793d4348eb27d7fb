package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per user under <prefix>:<userID>.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "clipsaver:user"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

func (s *RedisStore) Load(ctx context.Context, userID int64) (*Profile, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load profile %d: %w", userID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	downloads, _ := strconv.Atoi(fields["total_downloads"])
	return &Profile{
		FirstName:      fields["first_name"],
		Username:       fields["username"],
		FirstUse:       fields["first_use"],
		LastUse:        fields["last_use"],
		TotalDownloads: downloads,
	}, nil
}

func (s *RedisStore) Save(ctx context.Context, userID int64, p *Profile) error {
	return s.rdb.HSet(ctx, s.key(userID),
		"first_name", p.FirstName,
		"username", p.Username,
		"first_use", p.FirstUse,
		"last_use", p.LastUse,
		"total_downloads", p.TotalDownloads,
	).Err()
}
