package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/mipo/internal/domain"
	"github.com/shhac/mipo/internal/generate"
)

func classic() domain.Template {
	return domain.Template{ID: "classic", Name: "Classic", SlotCount: 3}
}

// atCapture walks a fresh wizard to the capture step.
func atCapture(t *testing.T) *Wizard {
	t.Helper()
	w := NewWizard()
	require.NoError(t, w.Start())
	require.NoError(t, w.SelectTemplate(classic()))
	require.NoError(t, w.Continue())
	require.NoError(t, w.Continue())
	require.Equal(t, StepCapture, w.Snapshot().Step)
	return w
}

func TestWizard_HappyPath(t *testing.T) {
	w := NewWizard()
	s := w.Snapshot()
	assert.Equal(t, StepWelcome, s.Step)
	assert.Equal(t, 3, s.SlotCount)

	require.NoError(t, w.Start())
	require.NoError(t, w.SelectTemplate(classic()))
	require.NoError(t, w.Continue())

	bg := domain.Background{ID: "beach", Name: "Beach"}
	require.NoError(t, w.SelectBackground(&bg))
	require.NoError(t, w.SetDetails("Party", "An & Binh", "2024-05-01"))
	require.NoError(t, w.Continue())

	ticket, err := w.DoneCapture([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, StepGenerating, w.Snapshot().Step)

	out := &generate.Outcome{StripURL: "http://x/strip.png", MimeType: "image/png"}
	assert.True(t, w.CompleteGeneration(ticket, out))

	s = w.Snapshot()
	assert.Equal(t, StepResult, s.Step)
	assert.Equal(t, "classic", s.Template.ID)
	assert.Equal(t, "beach", s.Background.ID)
	assert.Equal(t, "Party", s.Title)
	assert.Equal(t, "An & Binh", s.Names)
	assert.Equal(t, "2024-05-01", s.Date)
	assert.Equal(t, []string{"a", "b", "c"}, s.Photos)
	assert.Equal(t, "http://x/strip.png", s.Result.StripURL)
}

func TestWizard_SelectTemplateClampsSlots(t *testing.T) {
	tests := []struct {
		name  string
		slots int
		want  int
	}{
		{"unset uses default", 0, 3},
		{"one becomes two", 1, 2},
		{"two", 2, 2},
		{"four", 4, 4},
		{"six becomes four", 6, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWizard()
			require.NoError(t, w.Start())
			require.NoError(t, w.SelectTemplate(domain.Template{ID: "t", SlotCount: tt.slots}))
			assert.Equal(t, tt.want, w.Snapshot().SlotCount)
		})
	}
}

func TestWizard_SetSlotCount(t *testing.T) {
	w := NewWizard()
	require.NoError(t, w.Start())

	assert.ErrorIs(t, w.SetSlotCount(2), ErrWrongStep, "no template chosen yet")

	require.NoError(t, w.SelectTemplate(domain.Template{ID: "t", SlotCount: 3, SlotOptions: []int{2, 4}}))
	require.NoError(t, w.SetSlotCount(4))
	assert.Equal(t, 4, w.Snapshot().SlotCount)

	assert.Error(t, w.SetSlotCount(3))
	assert.Error(t, w.SetSlotCount(5))
	assert.Equal(t, 4, w.Snapshot().SlotCount)
}

func TestWizard_SetSlotCountBelowStripMinimum(t *testing.T) {
	w := NewWizard()
	require.NoError(t, w.Start())
	require.NoError(t, w.SelectTemplate(domain.Template{ID: "t", SlotCount: 2, SlotOptions: []int{1, 2}}))

	assert.Error(t, w.SetSlotCount(1))
	assert.Equal(t, 2, w.Snapshot().SlotCount)
	require.NoError(t, w.SetSlotCount(2))
}

func TestWizard_ContinueRequiresTemplate(t *testing.T) {
	w := NewWizard()
	require.NoError(t, w.Start())
	assert.Error(t, w.Continue())
	assert.Equal(t, StepTemplates, w.Snapshot().Step)
}

func TestWizard_WrongStep(t *testing.T) {
	w := NewWizard()
	assert.ErrorIs(t, w.Continue(), ErrWrongStep)
	assert.ErrorIs(t, w.Back(), ErrWrongStep)
	assert.ErrorIs(t, w.SelectTemplate(classic()), ErrWrongStep)
	assert.ErrorIs(t, w.SelectBackground(nil), ErrWrongStep)
	assert.ErrorIs(t, w.BackToCapture(), ErrWrongStep)
	_, err := w.DoneCapture([]string{"a"})
	assert.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, w.Start())
	assert.ErrorIs(t, w.Start(), ErrWrongStep)
}

func TestWizard_Back(t *testing.T) {
	w := atCapture(t)

	require.NoError(t, w.Back())
	assert.Equal(t, StepBackground, w.Snapshot().Step)
	require.NoError(t, w.Back())
	assert.Equal(t, StepTemplates, w.Snapshot().Step)
	require.NoError(t, w.Back())
	assert.Equal(t, StepWelcome, w.Snapshot().Step)
}

func TestWizard_BackFromResultClearsOutput(t *testing.T) {
	w := atCapture(t)
	ticket, err := w.DoneCapture([]string{"a"})
	require.NoError(t, err)
	require.True(t, w.CompleteGeneration(ticket, &generate.Outcome{ImageBase64: "AAAA"}))

	require.NoError(t, w.Back())
	s := w.Snapshot()
	assert.Equal(t, StepCapture, s.Step)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Error)
	assert.Equal(t, "classic", s.Template.ID)
}

func TestWizard_FailureStaysOnGenerating(t *testing.T) {
	w := atCapture(t)
	ticket, err := w.DoneCapture([]string{"a"})
	require.NoError(t, err)

	assert.True(t, w.FailGeneration(ticket, "Failed to generate strip"))
	s := w.Snapshot()
	assert.Equal(t, StepGenerating, s.Step)
	assert.Equal(t, "Failed to generate strip", s.Error)

	require.NoError(t, w.BackToCapture())
	s = w.Snapshot()
	assert.Equal(t, StepCapture, s.Step)
	assert.Empty(t, s.Error)
}

func TestWizard_StaleResultsIgnored(t *testing.T) {
	w := atCapture(t)
	first, err := w.DoneCapture([]string{"a"})
	require.NoError(t, err)

	// The user leaves before the server answers.
	require.NoError(t, w.BackToCapture())
	assert.False(t, w.CompleteGeneration(first, &generate.Outcome{StripURL: "late"}))
	assert.False(t, w.FailGeneration(first, "late"))
	assert.Equal(t, StepCapture, w.Snapshot().Step)

	second, err := w.DoneCapture([]string{"b"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.False(t, w.CompleteGeneration(first, &generate.Outcome{StripURL: "late"}))
	assert.True(t, w.CompleteGeneration(second, &generate.Outcome{StripURL: "fresh"}))
	assert.Equal(t, "fresh", w.Snapshot().Result.StripURL)
}

func TestWizard_NewStripResets(t *testing.T) {
	w := atCapture(t)
	ticket, err := w.DoneCapture([]string{"a"})
	require.NoError(t, err)

	w.NewStrip()
	assert.False(t, w.CompleteGeneration(ticket, &generate.Outcome{StripURL: "late"}))

	s := w.Snapshot()
	assert.Equal(t, State{Step: StepWelcome, SlotCount: 3}, s)
}

func TestWizard_DoneCaptureNeedsPhotos(t *testing.T) {
	w := atCapture(t)
	_, err := w.DoneCapture(nil)
	assert.Error(t, err)
	assert.Equal(t, StepCapture, w.Snapshot().Step)
}

func TestWizard_SnapshotIsCopy(t *testing.T) {
	w := atCapture(t)
	photos := []string{"a", "b"}
	_, err := w.DoneCapture(photos)
	require.NoError(t, err)
	photos[0] = "changed"

	s := w.Snapshot()
	s.Photos[1] = "changed"
	s.Template.Name = "changed"

	again := w.Snapshot()
	assert.Equal(t, []string{"a", "b"}, again.Photos)
	assert.Equal(t, "Classic", again.Template.Name)
}

func TestWizard_Subscribe(t *testing.T) {
	w := NewWizard()
	var steps []Step
	w.Subscribe(func(s State) { steps = append(steps, s.Step) })

	require.NoError(t, w.Start())
	assert.Error(t, w.Continue())
	require.NoError(t, w.SelectTemplate(classic()))
	require.NoError(t, w.Continue())

	assert.Equal(t, []Step{StepTemplates, StepTemplates, StepBackground}, steps)
}

func TestWizard_ConcurrentUse(t *testing.T) {
	w := atCapture(t)
	ticket, err := w.DoneCapture([]string{"a"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	applied := make([]bool, 8)
	for i := range applied {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied[i] = w.CompleteGeneration(ticket, &generate.Outcome{StripURL: "x"})
			_ = w.Snapshot()
		}()
	}
	wg.Wait()

	count := 0
	for _, ok := range applied {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "generating", StepGenerating.String())
	assert.Equal(t, "unknown", Step(99).String())
}
