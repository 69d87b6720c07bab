// Package model holds the Model State (spec.md §4.3): the mutable,
// per-model runtime record embedding an immutable ModelConfig and exposing
// independently-lockable live fields.
package model

import (
	"time"

	"github.com/ByteBell/pyano/internal/registry"
)

// CallOptions overlays caller-supplied sampling parameters onto a State at
// construction time (spec.md §4.6 get_llm: "If options are provided,
// overlay every supplied field ... onto the state").
type CallOptions struct {
	Temperature       *float64
	TopK              *int
	TopP              *float64
	MaxTokens         *int
	RepetitionPenalty *float64
	Port              *int
}

// State is one mutable per-model runtime record. Every mutable field is an
// independently guarded cell; Config never changes after construction.
type State struct {
	Config registry.ModelConfig

	temperature       *cell[float64]
	topK              *cell[int]
	topP              *cell[float64]
	maxTokens         *cell[int]
	repetitionPenalty *cell[float64]

	status   *cell[Status]
	lastUsed *cell[time.Time]
	port     *cell[*int]
	pid      *cell[*int]
}

// New constructs a State from cfg, initializing every live field from the
// config's defaults/server section (spec.md §4.3), then applies opts if
// non-nil (spec.md §4.6 get_llm overlay step).
func New(cfg registry.ModelConfig, opts *CallOptions) *State {
	s := &State{
		Config:            cfg,
		temperature:       newCell(cfg.Defaults.Temperature),
		topK:              newCell(cfg.Defaults.TopK),
		topP:              newCell(cfg.Defaults.TopP),
		maxTokens:         newCell(cfg.Defaults.MaxTokens),
		repetitionPenalty: newCell(cfg.Defaults.RepetitionPenalty),
		status:            newCell(Stopped()),
		lastUsed:          newCell(time.Now()),
		port:              newCell(cfg.Server.Port),
		pid:               newCell[*int](nil),
	}

	if opts == nil {
		return s
	}
	if opts.Temperature != nil {
		s.temperature.set(*opts.Temperature)
	}
	if opts.TopK != nil {
		s.topK.set(*opts.TopK)
	}
	if opts.TopP != nil {
		s.topP.set(*opts.TopP)
	}
	if opts.MaxTokens != nil {
		s.maxTokens.set(*opts.MaxTokens)
	}
	if opts.RepetitionPenalty != nil {
		s.repetitionPenalty.set(*opts.RepetitionPenalty)
	}
	if opts.Port != nil {
		port := *opts.Port
		s.port.set(&port)
	}
	return s
}

func (s *State) Name() string { return s.Config.Name() }

func (s *State) Temperature() float64       { return s.temperature.get() }
func (s *State) SetTemperature(v float64)   { s.temperature.set(v) }
func (s *State) TopK() int                  { return s.topK.get() }
func (s *State) SetTopK(v int)              { s.topK.set(v) }
func (s *State) TopP() float64              { return s.topP.get() }
func (s *State) SetTopP(v float64)          { s.topP.set(v) }
func (s *State) MaxTokens() int             { return s.maxTokens.get() }
func (s *State) SetMaxTokens(v int)         { s.maxTokens.set(v) }
func (s *State) RepetitionPenalty() float64 { return s.repetitionPenalty.get() }

func (s *State) Status() Status         { return s.status.get() }
func (s *State) SetStatus(status Status) { s.status.set(status) }

func (s *State) LastUsed() time.Time { return s.lastUsed.get() }
func (s *State) Touch()              { s.lastUsed.set(time.Now()) }

// SetLastUsedForTest overrides LastUsed directly, bypassing Touch's
// time.Now() stamp. Exported for tests that need deterministic eviction
// ordering; production code should only ever call Touch.
func (s *State) SetLastUsedForTest(t time.Time) { s.lastUsed.set(t) }

func (s *State) Port() *int {
	p := s.port.get()
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
func (s *State) SetPort(port int) { s.port.set(&port) }

func (s *State) PID() *int { return s.pid.get() }
func (s *State) SetPID(pid int) {
	v := pid
	s.pid.set(&v)
}
