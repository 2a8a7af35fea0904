package controller

import (
	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

// Op identifies one outstanding store call. Zero means none.
type Op uint64

// State is one of Idle, Drawing, AwaitingSaveForm, Selecting,
// FeatureChosen or AwaitingEditForm.
type State interface {
	Name() string
	isState()
}

// Idle: no capture and no selection.
type Idle struct{}

// Drawing: the capture tool is active.
type Drawing struct{}

// AwaitingSaveForm: a draft has been captured and the attribute form is open.
type AwaitingSaveForm struct {
	Draft models.DraftGeometry
	Attrs schema.MaskAttributes
	// Pending is the create, or after a confirmed create the count, in flight.
	Pending Op
	// Saved is set once the store has confirmed the create.
	Saved models.ObjectID
	// Err is the last failure shown in the form.
	Err string
}

// Selecting: clicks on the map hit-test the mask layer.
type Selecting struct{}

// FeatureChosen: the summary dialog for a selected feature is open.
type FeatureChosen struct {
	Handle models.SelectionHandle
	// Pending is the delete, or after a confirmed delete the count, in flight.
	Pending Op
	Deleted bool
	Err     string
}

// AwaitingEditForm: the attribute form is open for a selected feature.
type AwaitingEditForm struct {
	Handle  models.SelectionHandle
	Attrs   schema.MaskAttributes
	Pending Op
	Err     string
}

func (Idle) Name() string             { return "idle" }
func (Drawing) Name() string          { return "drawing" }
func (AwaitingSaveForm) Name() string { return "awaiting-save-form" }
func (Selecting) Name() string        { return "selecting" }
func (FeatureChosen) Name() string    { return "feature-chosen" }
func (AwaitingEditForm) Name() string { return "awaiting-edit-form" }

func (Idle) isState()             {}
func (Drawing) isState()          {}
func (AwaitingSaveForm) isState() {}
func (Selecting) isState()        {}
func (FeatureChosen) isState()    {}
func (AwaitingEditForm) isState() {}

// Mode is the coarse interaction mode shown in the toolbar.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModeSelecting
)

func (m Mode) String() string {
	switch m {
	case ModeDrawing:
		return "drawing"
	case ModeSelecting:
		return "selecting"
	}
	return "idle"
}

func modeOf(s State) Mode {
	switch s.(type) {
	case Drawing, AwaitingSaveForm:
		return ModeDrawing
	case Selecting, FeatureChosen, AwaitingEditForm:
		return ModeSelecting
	}
	return ModeIdle
}

// pendingOf returns the op the state is waiting on.
func pendingOf(s State) Op {
	switch st := s.(type) {
	case AwaitingSaveForm:
		return st.Pending
	case FeatureChosen:
		return st.Pending
	case AwaitingEditForm:
		return st.Pending
	}
	return 0
}
