package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisStore keeps the server-side half of each session in redis.
// The signed token carries the jti, redis holds jti -> {account, role},
// so logout actually revokes a token before its expiry.
type RedisStore struct {
	rdb *redis.Client
	mgr *Manager
}

func NewRedisStore(rdb *redis.Client, mgr *Manager) *RedisStore {
	return &RedisStore{rdb: rdb, mgr: mgr}
}

type sessionRecord struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

func sessionKey(jti string) string {
	return "session:" + jti
}

func (s *RedisStore) Create(ctx context.Context, accountID, role string) (Session, error) {
	raw, jti, expiresAt, err := s.mgr.Issue(accountID, role)

	if err != nil {
		return Session{}, err
	}

	payload, err := json.Marshal(sessionRecord{AccountID: accountID, Role: role})

	if err != nil {
		return Session{}, err
	}

	err = s.rdb.Set(ctx, sessionKey(jti), payload, s.mgr.TTL()).Err()

	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     raw,
		ID:        jti,
		AccountID: accountID,
		Role:      role,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *RedisStore) Verify(ctx context.Context, token string) (Session, error) {
	claims, err := s.mgr.Parse(token)

	if err != nil {
		return Session{}, ErrNotFound
	}

	val, err := s.rdb.Get(ctx, sessionKey(claims.JTI)).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}

		return Session{}, err
	}

	var rec sessionRecord

	if err := json.Unmarshal(val, &rec); err != nil {
		return Session{}, err
	}

	// the redis record is authoritative over the token claims
	return Session{
		Token:     token,
		ID:        claims.JTI,
		AccountID: rec.AccountID,
		Role:      rec.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	claims, err := s.mgr.Parse(token)

	if err != nil {
		// nothing to revoke for a token we cannot parse
		return nil
	}

	return s.rdb.Del(ctx, sessionKey(claims.JTI)).Err()
}
