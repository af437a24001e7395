package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	denyPrefix    = "auth:deny:"
	detailsPrefix = "recs:details:"

	detailsTTL = 15 * time.Minute
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// DenyToken blocks a JWT until it would have expired anyway.
func (s *Store) DenyToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, denyPrefix+token, "1", ttl).Err()
}

func (s *Store) IsTokenDenied(ctx context.Context, token string) (bool, error) {
	_, err := s.rdb.Get(ctx, denyPrefix+token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Restaurant details cache: the insights details call is slow, and the card
// only needs fresh data every so often.

func (s *Store) GetRestaurantDetails(ctx context.Context, restaurantID string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, detailsPrefix+restaurantID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) SetRestaurantDetails(ctx context.Context, restaurantID, payload string) error {
	return s.rdb.Set(ctx, detailsPrefix+restaurantID, payload, detailsTTL).Err()
}
