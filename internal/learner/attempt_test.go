package learner

import (
	"errors"
	"testing"
	"time"
)

func TestOutcomeValidate(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		wantErr bool
	}{
		{"valid", Outcome{Correct: true, Difficulty: 0.6, TimeTakenSeconds: 28.5}, false},
		{"boundary difficulties", Outcome{Difficulty: 0, TimeTakenSeconds: 1}, false},
		{"max difficulty", Outcome{Difficulty: 1, TimeTakenSeconds: 1}, false},
		{"zero time", Outcome{Difficulty: 0.5, TimeTakenSeconds: 0}, true},
		{"negative time", Outcome{Difficulty: 0.5, TimeTakenSeconds: -3}, true},
		{"difficulty too high", Outcome{Difficulty: 1.2, TimeTakenSeconds: 10}, true},
		{"difficulty negative", Outcome{Difficulty: -0.1, TimeTakenSeconds: 10}, true},
		{"negative signals", Outcome{Difficulty: 0.5, TimeTakenSeconds: 10, FrustrationSignals: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.outcome.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.Is(err, ErrInvalidOutcome) {
					t.Errorf("error %v does not wrap ErrInvalidOutcome", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestNewAttempt(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	out := Outcome{Correct: true, Difficulty: 0.62, TimeTakenSeconds: 28.5}

	a := NewAttempt("u1", "fractions", out, now)

	if a.ID == "" {
		t.Error("expected a generated ID")
	}
	if a.UserID != "u1" || a.TopicID != "fractions" {
		t.Errorf("keys = (%q, %q), want (u1, fractions)", a.UserID, a.TopicID)
	}
	if !a.Correct || a.Difficulty != 0.62 || a.TimeTakenSeconds != 28.5 {
		t.Errorf("outcome fields not carried over: %+v", a)
	}
	if !a.At.Equal(now) {
		t.Errorf("At = %v, want %v", a.At, now)
	}

	b := NewAttempt("u1", "fractions", out, now)
	if a.ID == b.ID {
		t.Error("expected unique IDs per attempt")
	}
}
