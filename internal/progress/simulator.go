// Package progress approximates the progress of a remote analysis whose real
// state is unknown to the client.
package progress

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/internal/config"
)

// ErrRunning is returned by Start when the simulator is already active.
var ErrRunning = errors.New("progress simulator already running")

// State is one snapshot of the simulated progress.
type State struct {
	Percent   float64       `json:"percent"`
	Phase     int           `json:"phase"`
	Label     string        `json:"label"`
	Remaining time.Duration `json:"remaining"`
}

// StepCounter renders the phase as "n/13".
func (s State) StepCounter() string {
	return fmt.Sprintf("%d/%d", s.Phase+1, PhaseCount)
}

// RemainingText renders the estimate as m:ss.
func (s State) RemainingText() string {
	secs := int(s.Remaining / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Ticker is the periodic clock driving the simulator.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

// NewTimeTicker is the production TickerFactory.
func NewTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// Option configures a Simulator.
type Option func(*Simulator)

// WithTickerFactory replaces the wall clock, mainly for tests.
func WithTickerFactory(f TickerFactory) Option {
	return func(s *Simulator) { s.newTicker = f }
}

// WithRandom replaces the source of increments. f must return values in [0, 1).
func WithRandom(f func() float64) Option {
	return func(s *Simulator) { s.random = f }
}

// WithOnUpdate registers a callback invoked with every new state. It runs on
// the simulator's goroutine and must not call Stop.
func WithOnUpdate(f func(State)) Option {
	return func(s *Simulator) { s.onUpdate = f }
}

// Simulator advances a percentage on a fixed interval by a bounded random
// amount, never reaching the ceiling's far side. Only real completion shows 100%.
type Simulator struct {
	cfg       config.ProgressConfig
	logger    *zap.Logger
	newTicker TickerFactory
	random    func() float64
	onUpdate  func(State)

	mu      sync.Mutex
	state   State
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates an idle simulator.
func New(cfg config.ProgressConfig, logger *zap.Logger, opts ...Option) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Simulator{
		cfg:       cfg,
		logger:    logger.Named("progress"),
		newTicker: NewTimeTicker,
		random:    rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start resets progress to zero and begins ticking.
func (s *Simulator) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.state = Compute(s.cfg, 0)
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	ticker := s.newTicker(s.cfg.Interval)
	initial := s.state
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(initial)
	}
	go s.loop(ticker, stop, done)
	s.logger.Debug("Progress simulation started", zap.Duration("interval", s.cfg.Interval))
	return nil
}

// Stop halts ticking and waits for the tick goroutine to exit, so no update
// is delivered after Stop returns. Calling Stop on an idle simulator is a no-op.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Debug("Progress simulation stopped")
}

// Running reports whether the simulator is ticking.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot returns the current state while running.
func (s *Simulator) Snapshot() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.running
}

func (s *Simulator) loop(ticker Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			next, changed := s.advance()
			if !changed {
				continue
			}
			// A stop that raced with this tick wins: nothing is delivered once Stop was called.
			select {
			case <-stop:
				return
			default:
			}
			if s.onUpdate != nil {
				s.onUpdate(next)
			}
		}
	}
}

func (s *Simulator) advance() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return s.state, false
	}
	p := s.state.Percent
	if p >= s.cfg.Ceiling {
		return s.state, false
	}
	p = math.Min(p+s.random()*s.cfg.MaxIncrement, s.cfg.Ceiling)
	s.state = Compute(s.cfg, p)
	return s.state, true
}

// Compute maps a percentage onto a phase index and a remaining time estimate
// using the configured bucket width and assumed rate.
func Compute(cfg config.ProgressConfig, percent float64) State {
	phase := int(math.Floor(percent / cfg.BucketWidth))
	if phase > PhaseCount-1 {
		phase = PhaseCount - 1
	}
	if phase < 0 {
		phase = 0
	}
	remaining := math.Floor(math.Max(0, 100-percent) / cfg.AssumedRate)
	return State{
		Percent:   percent,
		Phase:     phase,
		Label:     Phases[phase],
		Remaining: time.Duration(remaining) * time.Second,
	}
}
