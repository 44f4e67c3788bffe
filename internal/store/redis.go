package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/mastery"
)

const (
	redisDialTimeout = 5 * time.Second

	// attemptHistoryLimit bounds the per-topic attempt list; the engine
	// only ever reads a small recent window.
	attemptHistoryLimit = 50
)

// Redis persists engine state in a Redis instance, for deployments where
// several processes serve the same learners.
type Redis struct {
	client *goredis.Client
	prefix string
}

func OpenRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	if prefix == "" {
		prefix = "pacer"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: redisDialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis at %s: %w", addr, err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (s *Redis) Mastery() MasteryRepo  { return &redisMasteryRepo{s} }
func (s *Redis) Bandits() BanditRepo   { return &redisBanditRepo{s} }
func (s *Redis) Attempts() AttemptRepo { return &redisAttemptRepo{s} }

func (s *Redis) Close() error { return s.client.Close() }

func (s *Redis) masteryKey(userID, topicID string) string {
	return s.prefix + ":mastery:" + userID + ":" + topicID
}

func (s *Redis) banditKey(userID string) string {
	return s.prefix + ":bandit:" + userID
}

func (s *Redis) attemptsKey(userID, topicID string) string {
	return s.prefix + ":attempts:" + userID + ":" + topicID
}

func (s *Redis) daysKey(userID string) string {
	return s.prefix + ":days:" + userID
}

func (s *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %d keys under %s: %w", len(keys), pattern, err)
	}
	return nil
}

func (s *Redis) Reset(ctx context.Context, userID string) error {
	if err := s.deleteMatching(ctx, s.prefix+":mastery:"+userID+":*"); err != nil {
		return err
	}
	if err := s.deleteMatching(ctx, s.prefix+":attempts:"+userID+":*"); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.banditKey(userID), s.daysKey(userID)).Err(); err != nil {
		return fmt.Errorf("reset user %s: %w", userID, err)
	}
	return nil
}

func (s *Redis) ResetAll(ctx context.Context) error {
	return s.deleteMatching(ctx, s.prefix+":*")
}

type redisMasteryRepo struct {
	s *Redis
}

func (r *redisMasteryRepo) LoadOrCreate(ctx context.Context, userID, topicID string) (mastery.State, error) {
	key := r.s.masteryKey(userID, topicID)
	payload, err := r.s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		st := mastery.NewState()
		if err := r.Save(ctx, userID, topicID, st); err != nil {
			return mastery.State{}, err
		}
		return st, nil
	}
	if err != nil {
		return mastery.State{}, fmt.Errorf("load mastery %s/%s: %w", userID, topicID, err)
	}

	var st mastery.State
	if err := json.Unmarshal(payload, &st); err != nil {
		return mastery.State{}, fmt.Errorf("decode mastery %s/%s: %w", userID, topicID, err)
	}
	return st, nil
}

func (r *redisMasteryRepo) Save(ctx context.Context, userID, topicID string, st mastery.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode mastery %s/%s: %w", userID, topicID, err)
	}
	if err := r.s.client.Set(ctx, r.s.masteryKey(userID, topicID), payload, 0).Err(); err != nil {
		return fmt.Errorf("save mastery %s/%s: %w", userID, topicID, err)
	}
	return nil
}

func (r *redisMasteryRepo) All(ctx context.Context, userID string) (map[string]mastery.State, error) {
	keyPrefix := r.s.prefix + ":mastery:" + userID + ":"
	iter := r.s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()

	out := make(map[string]mastery.State)
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := r.s.client.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		var st mastery.State
		if err := json.Unmarshal(payload, &st); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		out[strings.TrimPrefix(key, keyPrefix)] = st
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list mastery for %s: %w", userID, err)
	}
	return out, nil
}

type redisBanditRepo struct {
	s *Redis
}

func (r *redisBanditRepo) Load(ctx context.Context, userID string) (*bandit.Model, error) {
	payload, err := r.s.client.Get(ctx, r.s.banditKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bandit for %s: %w", userID, err)
	}

	var m bandit.Model
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("decode bandit for %s: %w", userID, err)
	}
	return &m, nil
}

func (r *redisBanditRepo) LoadOrCreate(ctx context.Context, userID string) (*bandit.Model, error) {
	m, err := r.Load(ctx, userID)
	if err != nil || m != nil {
		return m, err
	}
	m = bandit.NewModel()
	if err := r.Save(ctx, userID, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *redisBanditRepo) Save(ctx context.Context, userID string, m *bandit.Model) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode bandit for %s: %w", userID, err)
	}
	if err := r.s.client.Set(ctx, r.s.banditKey(userID), payload, 0).Err(); err != nil {
		return fmt.Errorf("save bandit for %s: %w", userID, err)
	}
	return nil
}

type redisAttemptRepo struct {
	s *Redis
}

func (r *redisAttemptRepo) Record(ctx context.Context, a learner.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode attempt for %s/%s: %w", a.UserID, a.TopicID, err)
	}

	key := r.s.attemptsKey(a.UserID, a.TopicID)
	_, err = r.s.client.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.LPush(ctx, key, payload)
		p.LTrim(ctx, key, 0, attemptHistoryLimit-1)
		p.SAdd(ctx, r.s.daysKey(a.UserID), a.At.UTC().Format(time.DateOnly))
		return nil
	})
	if err != nil {
		return fmt.Errorf("record attempt for %s/%s: %w", a.UserID, a.TopicID, err)
	}
	return nil
}

func (r *redisAttemptRepo) Recent(ctx context.Context, userID, topicID string, limit int) ([]learner.Attempt, error) {
	payloads, err := r.s.client.LRange(ctx, r.s.attemptsKey(userID, topicID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("load attempts for %s/%s: %w", userID, topicID, err)
	}

	out := make([]learner.Attempt, 0, len(payloads))
	for _, payload := range payloads {
		var a learner.Attempt
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode attempt for %s/%s: %w", userID, topicID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *redisAttemptRepo) StreakDays(ctx context.Context, userID string, now time.Time) (int, error) {
	days, err := r.s.client.SMembers(ctx, r.s.daysKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("load practice days for %s: %w", userID, err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return streakFromDays(days, now), nil
}
