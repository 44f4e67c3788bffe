package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/learner"
	"github.com/lumenlearn/pacer/internal/mastery"
)

type userTopic struct {
	user  string
	topic string
}

// Memory keeps all state in process. It backs the simulator and tests,
// where runs must not touch the filesystem.
type Memory struct {
	mu       sync.RWMutex
	mastery  map[userTopic]mastery.State
	bandits  map[string]*bandit.Model
	attempts map[userTopic][]learner.Attempt
}

func NewMemory() *Memory {
	return &Memory{
		mastery:  make(map[userTopic]mastery.State),
		bandits:  make(map[string]*bandit.Model),
		attempts: make(map[userTopic][]learner.Attempt),
	}
}

func (m *Memory) Mastery() MasteryRepo  { return &memoryMasteryRepo{m} }
func (m *Memory) Bandits() BanditRepo   { return &memoryBanditRepo{m} }
func (m *Memory) Attempts() AttemptRepo { return &memoryAttemptRepo{m} }

func (m *Memory) Reset(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.mastery {
		if key.user == userID {
			delete(m.mastery, key)
		}
	}
	delete(m.bandits, userID)
	for key := range m.attempts {
		if key.user == userID {
			delete(m.attempts, key)
		}
	}
	return nil
}

func (m *Memory) ResetAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mastery = make(map[userTopic]mastery.State)
	m.bandits = make(map[string]*bandit.Model)
	m.attempts = make(map[userTopic][]learner.Attempt)
	return nil
}

func (m *Memory) Close() error { return nil }

func cloneModel(src *bandit.Model) *bandit.Model {
	if src == nil {
		return nil
	}
	c := *src
	c.Arms = make(map[bandit.Arm]bandit.ArmParams, len(src.Arms))
	for arm, params := range src.Arms {
		c.Arms[arm] = params
	}
	return &c
}

type memoryMasteryRepo struct {
	m *Memory
}

func (r *memoryMasteryRepo) LoadOrCreate(ctx context.Context, userID, topicID string) (mastery.State, error) {
	key := userTopic{userID, topicID}

	r.m.mu.RLock()
	st, ok := r.m.mastery[key]
	r.m.mu.RUnlock()
	if ok {
		return st, nil
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if st, ok := r.m.mastery[key]; ok {
		return st, nil
	}
	st = mastery.NewState()
	r.m.mastery[key] = st
	return st, nil
}

func (r *memoryMasteryRepo) Save(ctx context.Context, userID, topicID string, st mastery.State) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.mastery[userTopic{userID, topicID}] = st
	return nil
}

func (r *memoryMasteryRepo) All(ctx context.Context, userID string) (map[string]mastery.State, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := make(map[string]mastery.State)
	for key, st := range r.m.mastery {
		if key.user == userID {
			out[key.topic] = st
		}
	}
	return out, nil
}

type memoryBanditRepo struct {
	m *Memory
}

func (r *memoryBanditRepo) Load(ctx context.Context, userID string) (*bandit.Model, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return cloneModel(r.m.bandits[userID]), nil
}

func (r *memoryBanditRepo) LoadOrCreate(ctx context.Context, userID string) (*bandit.Model, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if m, ok := r.m.bandits[userID]; ok {
		return cloneModel(m), nil
	}
	m := bandit.NewModel()
	r.m.bandits[userID] = cloneModel(m)
	return m, nil
}

func (r *memoryBanditRepo) Save(ctx context.Context, userID string, m *bandit.Model) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.bandits[userID] = cloneModel(m)
	return nil
}

type memoryAttemptRepo struct {
	m *Memory
}

func (r *memoryAttemptRepo) Record(ctx context.Context, a learner.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	key := userTopic{a.UserID, a.TopicID}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.attempts[key] = append(r.m.attempts[key], a)
	return nil
}

func (r *memoryAttemptRepo) Recent(ctx context.Context, userID, topicID string, limit int) ([]learner.Attempt, error) {
	r.m.mu.RLock()
	all := append([]learner.Attempt(nil), r.m.attempts[userTopic{userID, topicID}]...)
	r.m.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].At.After(all[j].At) })
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryAttemptRepo) StreakDays(ctx context.Context, userID string, now time.Time) (int, error) {
	r.m.mu.RLock()
	seen := make(map[string]struct{})
	for key, attempts := range r.m.attempts {
		if key.user != userID {
			continue
		}
		for _, a := range attempts {
			seen[a.At.UTC().Format(time.DateOnly)] = struct{}{}
		}
	}
	r.m.mu.RUnlock()

	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return streakFromDays(days, now), nil
}
