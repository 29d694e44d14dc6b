package planner

import (
	"context"
	"errors"
	"sync"
)

type UpdateKind int

const (
	UpdatePartial UpdateKind = iota
	UpdateDone
	UpdateFailed
)

// Update is published by a slot run. RunID tells consumers which run it
// belongs to, updates of a superseded run must be ignored.
type Update struct {
	RunID uint64
	Kind  UpdateKind
	Text  string
	Err   error
}

// PlanGenerator is satisfied by *Generator.
type PlanGenerator interface {
	Generate(ctx context.Context, req Request, onPartial func(text string)) (string, error)
}

// Slot holds at most one in-flight generation. Starting a new one
// cancels the previous run.
type Slot struct {
	generator PlanGenerator

	mu     sync.Mutex
	runID  uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSlot(generator PlanGenerator) *Slot {
	return &Slot{generator: generator}
}

// Start launches a run and returns its id. publish is called from the run's
// goroutine and is skipped once the run has been superseded or cancelled.
// The check happens before publish runs and publish may block on its
// consumer, so an update produced while a newer run starts can still be
// delivered. Consumers compare Update.RunID with IsCurrent.
func (s *Slot) Start(ctx context.Context, req Request, publish func(Update)) uint64 {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.runID++
	runID := s.runID
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		text, err := s.generator.Generate(runCtx, req, func(running string) {
			s.publishIfCurrent(runID, publish, Update{RunID: runID, Kind: UpdatePartial, Text: running})
		})
		if err != nil {
			if errors.Is(err, context.Canceled) && runCtx.Err() != nil {
				s.finish(runID)
				return
			}
			s.publishIfCurrent(runID, publish, Update{RunID: runID, Kind: UpdateFailed, Err: err})
			s.finish(runID)
			return
		}
		s.publishIfCurrent(runID, publish, Update{RunID: runID, Kind: UpdateDone, Text: text})
		s.finish(runID)
	}()

	return runID
}

func (s *Slot) publishIfCurrent(runID uint64, publish func(Update), u Update) {
	s.mu.Lock()
	current := s.runID == runID && s.cancel != nil
	s.mu.Unlock()
	if current && publish != nil {
		publish(u)
	}
}

func (s *Slot) finish(runID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID == runID {
		s.cancel = nil
	}
}

// IsCurrent reports whether runID is the latest run started on the slot.
func (s *Slot) IsCurrent(runID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID == runID
}

// Busy reports whether a run is in flight.
func (s *Slot) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Cancel aborts the in-flight run, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Close cancels the in-flight run and waits for its goroutine.
func (s *Slot) Close() {
	s.Cancel()
	s.wg.Wait()
}
