package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Network simulation defaults
const (
	DefaultMinDelay         = 200 * time.Millisecond
	DefaultMaxDelay         = 1200 * time.Millisecond
	DefaultErrorRate        = 0.08
	DefaultReorderErrorRate = 0.10
)

// SimulatorConfig tunes latency and fault injection.
type SimulatorConfig struct {
	MinDelay         time.Duration
	MaxDelay         time.Duration
	ErrorRate        float64
	ReorderErrorRate float64
}

// DefaultSimulatorConfig returns the standard latency window and failure rates.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		MinDelay:         DefaultMinDelay,
		MaxDelay:         DefaultMaxDelay,
		ErrorRate:        DefaultErrorRate,
		ReorderErrorRate: DefaultReorderErrorRate,
	}
}

// Simulator imposes artificial latency and random failures on service calls.
type Simulator struct {
	cfg SimulatorConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator builds a simulator drawing from src. A nil src uses a randomly seeded PCG.
func NewSimulator(cfg SimulatorConfig, src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if cfg.ReorderErrorRate < cfg.ErrorRate {
		cfg.ReorderErrorRate = cfg.ErrorRate
	}
	return &Simulator{cfg: cfg, rng: rand.New(src)}
}

// Instant returns a simulator with no latency and no failures.
func Instant() *Simulator {
	return NewSimulator(SimulatorConfig{}, rand.NewPCG(1, 2))
}

// Delay sleeps for a uniform random duration in [MinDelay, MaxDelay], or until ctx is done.
func (s *Simulator) Delay(ctx context.Context) error {
	d := s.cfg.MinDelay
	if spread := s.cfg.MaxDelay - s.cfg.MinDelay; spread > 0 {
		s.mu.Lock()
		d += time.Duration(s.rng.Int64N(int64(spread) + 1))
		s.mu.Unlock()
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fail returns a *SimulatedError for op with probability ErrorRate.
func (s *Simulator) Fail(op string) error {
	return s.failWith(op, s.cfg.ErrorRate)
}

// FailReorder is Fail with the elevated reorder rate.
func (s *Simulator) FailReorder(op string) error {
	return s.failWith(op, s.cfg.ReorderErrorRate)
}

func (s *Simulator) failWith(op string, rate float64) error {
	if rate <= 0 {
		return nil
	}
	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()
	if roll < rate {
		return &SimulatedError{Op: op}
	}
	return nil
}
