package livestate

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func snapshotKey(trolley string) string {
	return "supplytrack:trolley:" + trolley + ":snapshot"
}

const allTrolleysKey = "supplytrack:trolleys"

func (r *RedisStore) SetSnapshot(ctx context.Context, s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, snapshotKey(s.Trolley), data, 0)
	pipe.SAdd(ctx, allTrolleysKey, s.Trolley)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) GetSnapshot(ctx context.Context, trolley string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(trolley)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	return &s, json.Unmarshal(data, &s)
}

func (r *RedisStore) AllTrolleys(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, allTrolleysKey).Result()
}

func (r *RedisStore) RemoveTrolley(ctx context.Context, trolley string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, snapshotKey(trolley))
	pipe.SRem(ctx, allTrolleysKey, trolley)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) FlushAll(ctx context.Context) error {
	trolleys, err := r.AllTrolleys(ctx)
	if err != nil {
		return err
	}
	for _, tr := range trolleys {
		r.RemoveTrolley(ctx, tr)
	}
	return r.client.Del(ctx, allTrolleysKey).Err()
}
