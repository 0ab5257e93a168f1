package domain

import (
	"fmt"
	"math"
)

type ScoringPolicy struct {
	DistractionPenalty   float64
	IdlePenaltyPerMinute float64
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{DistractionPenalty: 5, IdlePenaltyPerMinute: 2}
}

func (p ScoringPolicy) Validate() error {
	if p.DistractionPenalty < 0 || p.IdlePenaltyPerMinute < 0 {
		return fmt.Errorf("scoring penalties must be non-negative")
	}
	return nil
}

type ScoreBreakdown struct {
	Completion         float64
	Base               float64
	DistractionPenalty float64
	IdlePenalty        float64
	Final              int
}

// Breakdown scores s from its duration, planned length, distractions and
// idle time. Final is always within [0,100].
func (p ScoringPolicy) Breakdown(s Session) ScoreBreakdown {
	completion := 1.0
	if s.PlannedDuration > 0 {
		completion = math.Min(1, float64(s.Duration())/float64(s.PlannedDuration))
	}
	if completion < 0 {
		completion = 0
	}
	b := ScoreBreakdown{
		Completion:         completion,
		Base:               100 * completion,
		DistractionPenalty: p.DistractionPenalty * float64(s.Stats.Distractions),
		IdlePenalty:        p.IdlePenaltyPerMinute * s.Stats.IdleTime.Seconds() / 60,
	}
	raw := math.Floor(b.Base - b.DistractionPenalty - b.IdlePenalty + 0.5)
	b.Final = int(math.Max(0, math.Min(100, raw)))
	return b
}

func (p ScoringPolicy) Score(s Session) int {
	return p.Breakdown(s).Final
}
