package simulation

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/logging"
	"github.com/lumenlearn/pacer/internal/randvar"
	"github.com/lumenlearn/pacer/internal/store"
)

var simStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newSimulator(policySeed, simSeed uint64) *Simulator {
	backend := store.NewMemory()
	coord := engine.New(backend, bandit.NewPolicy(randvar.New(policySeed)), logging.Nop())
	return New(coord, randvar.New(simSeed), logging.Nop(), simStart)
}

func TestRunDeterministicForSeed(t *testing.T) {
	ctx := context.Background()

	run := func() Result {
		sim := newSimulator(21, 22)
		res, err := sim.Run(ctx, DefaultProfiles(), 30)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return res
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Error("same seeds produced different runs")
	}
}

func TestRunRecordsTrajectories(t *testing.T) {
	ctx := context.Background()
	sim := newSimulator(3, 4)

	res, err := sim.Run(ctx, DefaultProfiles(), 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Learners) != 3 {
		t.Fatalf("learners = %d, want 3", len(res.Learners))
	}

	for _, l := range res.Learners {
		if len(l.Trajectory) != 5 {
			t.Fatalf("%s trajectory length = %d, want 5", l.Profile, len(l.Trajectory))
		}
		total := 0
		for _, n := range l.ArmPulls {
			total += n
		}
		if total != 5 {
			t.Errorf("%s arm pulls sum to %d, want 5: %v", l.Profile, total, l.ArmPulls)
		}
		for i, turn := range l.Trajectory {
			if turn.Turn != i+1 {
				t.Errorf("%s turn %d numbered %d", l.Profile, i+1, turn.Turn)
			}
			if turn.Difficulty < bandit.MinDifficulty || turn.Difficulty > bandit.MaxDifficulty {
				t.Errorf("%s turn %d difficulty %v out of range", l.Profile, i+1, turn.Difficulty)
			}
			if turn.Mastery <= 0 || turn.Mastery >= 1 {
				t.Errorf("%s turn %d mastery %v out of range", l.Profile, i+1, turn.Mastery)
			}
			if turn.Engagement == "" {
				t.Errorf("%s turn %d missing engagement status", l.Profile, i+1)
			}
		}
		if l.CorrectRate < 0 || l.CorrectRate > 1 {
			t.Errorf("%s correct rate %v out of range", l.Profile, l.CorrectRate)
		}
	}
}

func TestRunAdaptsToAbility(t *testing.T) {
	ctx := context.Background()
	sim := newSimulator(7, 8)

	res, err := sim.Run(ctx, DefaultProfiles(), 60)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	byName := make(map[string]LearnerResult)
	for _, l := range res.Learners {
		byName[l.Profile] = l
	}
	quick, struggling := byName["quick"], byName["struggling"]

	if quick.MeanDifficulty <= struggling.MeanDifficulty {
		t.Errorf("mean difficulty: quick %v <= struggling %v; engine failed to separate them",
			quick.MeanDifficulty, struggling.MeanDifficulty)
	}
	if quick.ArmPulls[string(bandit.ArmHard)] <= struggling.ArmPulls[string(bandit.ArmHard)] {
		t.Errorf("hard pulls: quick %d <= struggling %d",
			quick.ArmPulls[string(bandit.ArmHard)], struggling.ArmPulls[string(bandit.ArmHard)])
	}
	if quick.FinalMastery <= struggling.FinalMastery {
		t.Errorf("final mastery: quick %v <= struggling %v",
			quick.FinalMastery, struggling.FinalMastery)
	}
	if quick.CorrectRate <= struggling.CorrectRate {
		t.Errorf("correct rate: quick %v <= struggling %v",
			quick.CorrectRate, struggling.CorrectRate)
	}
}

func TestClockSittingsAdvanceDaily(t *testing.T) {
	sim := &Simulator{start: simStart}

	first := sim.clock(0)
	if first.Hour() != sittingHour {
		t.Errorf("first turn at hour %d, want %d", first.Hour(), sittingHour)
	}

	lastOfDay := sim.clock(turnsPerDay - 1)
	if lastOfDay.Day() != first.Day() {
		t.Errorf("turn %d spilled into the next day", turnsPerDay-1)
	}

	nextDay := sim.clock(turnsPerDay)
	if got := nextDay.Sub(first); got != 24*time.Hour {
		t.Errorf("day gap = %v, want 24h", got)
	}
}
