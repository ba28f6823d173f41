// Package model holds the strip wizard: which step the user is on and what
// they have chosen so far.
package model

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shhac/mipo/internal/domain"
	"github.com/shhac/mipo/internal/generate"
)

// Step is a wizard screen.
type Step int

const (
	StepWelcome Step = iota
	StepTemplates
	StepBackground
	StepCapture
	StepGenerating
	StepResult
)

// String returns the lowercase name of the step.
func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepTemplates:
		return "templates"
	case StepBackground:
		return "background"
	case StepCapture:
		return "capture"
	case StepGenerating:
		return "generating"
	case StepResult:
		return "result"
	default:
		return "unknown"
	}
}

// ErrWrongStep is returned for an action the current step does not allow.
var ErrWrongStep = errors.New("action not allowed at this step")

// Ticket identifies one generation. Results carrying an old ticket are
// dropped.
type Ticket uint64

// State is a snapshot of the wizard.
type State struct {
	Step       Step
	Template   *domain.Template
	SlotCount  int
	Background *domain.Background
	Title      string
	Names      string
	Date       string
	Photos     []string
	Result     *generate.Outcome
	Error      string
}

// Wizard is safe for concurrent use. Listeners run after each change,
// outside the lock.
type Wizard struct {
	mu        sync.Mutex
	state     State
	ticket    Ticket
	listeners []func(State)
}

// NewWizard returns a wizard on the welcome step.
func NewWizard() *Wizard {
	return &Wizard{state: State{Step: StepWelcome, SlotCount: domain.DefaultSlots}}
}

// Subscribe registers fn to receive every new state.
func (w *Wizard) Subscribe(fn func(State)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Snapshot returns a copy of the current state.
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// Start leaves the welcome step.
func (w *Wizard) Start() error {
	return w.update(func(s *State) error {
		if s.Step != StepWelcome {
			return wrongStep("start", s.Step)
		}
		s.Step = StepTemplates
		return nil
	})
}

// SelectTemplate picks t and resets the slot count to its default.
func (w *Wizard) SelectTemplate(t domain.Template) error {
	return w.update(func(s *State) error {
		if s.Step != StepTemplates {
			return wrongStep("select template", s.Step)
		}
		s.Template = &t
		s.SlotCount = defaultSlots(t)
		return nil
	})
}

// SetSlotCount changes how many photos the strip holds.
func (w *Wizard) SetSlotCount(n int) error {
	return w.update(func(s *State) error {
		if s.Step != StepTemplates || s.Template == nil {
			return wrongStep("set slot count", s.Step)
		}
		if n < domain.MinStripSlots || !s.Template.AllowsSlots(n) {
			return fmt.Errorf("template %q does not offer %d photos", s.Template.Name, n)
		}
		s.SlotCount = n
		return nil
	})
}

// SelectBackground picks a background; nil means none.
func (w *Wizard) SelectBackground(b *domain.Background) error {
	return w.update(func(s *State) error {
		if s.Step != StepBackground {
			return wrongStep("select background", s.Step)
		}
		s.Background = b
		return nil
	})
}

// SetDetails sets the text printed on the strip.
func (w *Wizard) SetDetails(title, names, date string) error {
	return w.update(func(s *State) error {
		if s.Step != StepBackground {
			return wrongStep("set details", s.Step)
		}
		s.Title, s.Names, s.Date = title, names, date
		return nil
	})
}

// Continue moves from templates to background and from background to
// capture.
func (w *Wizard) Continue() error {
	return w.update(func(s *State) error {
		switch s.Step {
		case StepTemplates:
			if s.Template == nil {
				return errors.New("choose a template first")
			}
			s.Step = StepBackground
		case StepBackground:
			s.Step = StepCapture
		default:
			return wrongStep("continue", s.Step)
		}
		return nil
	})
}

// Back returns to the previous step. Leaving the result drops the
// generated strip.
func (w *Wizard) Back() error {
	return w.update(func(s *State) error {
		switch s.Step {
		case StepTemplates:
			s.Step = StepWelcome
		case StepBackground:
			s.Step = StepTemplates
		case StepCapture:
			s.Step = StepBackground
		case StepResult:
			s.Step = StepCapture
			s.Result = nil
			s.Error = ""
		default:
			return wrongStep("go back", s.Step)
		}
		return nil
	})
}

// DoneCapture stores the photos and enters the generating step. The ticket
// must accompany the generation's result.
func (w *Wizard) DoneCapture(photos []string) (Ticket, error) {
	var t Ticket
	err := w.update(func(s *State) error {
		if s.Step != StepCapture || s.Template == nil {
			return wrongStep("finish capture", s.Step)
		}
		if len(photos) == 0 {
			return errors.New("take at least one photo")
		}
		s.Photos = slices.Clone(photos)
		s.Error = ""
		s.Step = StepGenerating
		w.ticket++
		t = w.ticket
		return nil
	})
	return t, err
}

// CompleteGeneration shows out if ticket is still current. It reports
// whether the result was applied.
func (w *Wizard) CompleteGeneration(t Ticket, out *generate.Outcome) bool {
	applied := false
	_ = w.update(func(s *State) error {
		if t != w.ticket || s.Step != StepGenerating || out == nil {
			return errStale
		}
		s.Result = out
		s.Error = ""
		s.Step = StepResult
		applied = true
		return nil
	})
	return applied
}

// FailGeneration records msg if ticket is still current. It reports
// whether the failure was applied.
func (w *Wizard) FailGeneration(t Ticket, msg string) bool {
	applied := false
	_ = w.update(func(s *State) error {
		if t != w.ticket || s.Step != StepGenerating {
			return errStale
		}
		s.Error = msg
		applied = true
		return nil
	})
	return applied
}

// BackToCapture leaves the generating step. A generation still running
// is abandoned: its result will be ignored.
func (w *Wizard) BackToCapture() error {
	return w.update(func(s *State) error {
		if s.Step != StepGenerating {
			return wrongStep("go back to capture", s.Step)
		}
		s.Step = StepCapture
		s.Error = ""
		w.ticket++
		return nil
	})
}

// NewStrip discards everything and returns to the welcome step.
func (w *Wizard) NewStrip() {
	_ = w.update(func(s *State) error {
		*s = State{Step: StepWelcome, SlotCount: domain.DefaultSlots}
		w.ticket++
		return nil
	})
}

var errStale = errors.New("stale generation")

// update applies fn under the lock and notifies listeners when it succeeds.
func (w *Wizard) update(fn func(*State) error) error {
	w.mu.Lock()
	if err := fn(&w.state); err != nil {
		w.mu.Unlock()
		return err
	}
	snap := w.state.clone()
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return nil
}

func (s State) clone() State {
	out := s
	out.Photos = slices.Clone(s.Photos)
	if s.Template != nil {
		t := *s.Template
		t.SlotOptions = slices.Clone(t.SlotOptions)
		out.Template = &t
	}
	if s.Background != nil {
		b := *s.Background
		out.Background = &b
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	return out
}

func wrongStep(action string, step Step) error {
	return fmt.Errorf("%s on %s: %w", action, step, ErrWrongStep)
}

// defaultSlots is the template's slot count clamped to what strips hold.
func defaultSlots(t domain.Template) int {
	n := t.SlotCount
	if n == 0 {
		n = domain.DefaultSlots
	}
	return min(domain.MaxSlots, max(domain.MinStripSlots, n))
}
