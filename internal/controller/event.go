package controller

import (
	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

// Event is an input to Step.
type Event interface {
	isEvent()
}

type (
	// StartDraw asks for a new polygon capture.
	StartDraw struct{}
	// CancelDraw abandons the capture or the unsaved draft.
	CancelDraw struct{}
	// DrawComplete carries the polygon finished by the capture tool.
	DrawComplete struct {
		Geometry models.DraftGeometry
	}
	// StartSelect enables click selection.
	StartSelect struct{}
	// CancelSelect ends selection entirely.
	CancelSelect struct{}
	// MapClicked carries the hit-test result for a click, topmost first.
	MapClicked struct {
		Point models.ScreenPoint
		Hits  []models.Hit
	}
	// ChooseEdit opens the attribute form for the chosen feature.
	ChooseEdit struct{}
	// ChooseDelete deletes the chosen feature.
	ChooseDelete struct{}
	// CloseDialog closes the feature dialog.
	CloseDialog struct{}
	// FormSubmit carries the attributes chosen in the form.
	FormSubmit struct {
		Attrs schema.MaskAttributes
	}
	// FormCancel closes the attribute form without saving.
	FormCancel struct{}
	// RequestCount asks for the feature count to be refreshed.
	RequestCount struct{}

	// CreateResolved reports the outcome of CreateFeature.
	CreateResolved struct {
		Op       Op
		ObjectID models.ObjectID
		Err      error
	}
	// UpdateResolved reports the outcome of UpdateFeature.
	UpdateResolved struct {
		Op  Op
		Err error
	}
	// DeleteResolved reports the outcome of DeleteFeature.
	DeleteResolved struct {
		Op  Op
		Err error
	}
	// CountResolved reports the outcome of QueryCount.
	CountResolved struct {
		Op    Op
		Count int64
		Err   error
	}
)

func (StartDraw) isEvent()      {}
func (CancelDraw) isEvent()     {}
func (DrawComplete) isEvent()   {}
func (StartSelect) isEvent()    {}
func (CancelSelect) isEvent()   {}
func (MapClicked) isEvent()     {}
func (ChooseEdit) isEvent()     {}
func (ChooseDelete) isEvent()   {}
func (CloseDialog) isEvent()    {}
func (FormSubmit) isEvent()     {}
func (FormCancel) isEvent()     {}
func (RequestCount) isEvent()   {}
func (CreateResolved) isEvent() {}
func (UpdateResolved) isEvent() {}
func (DeleteResolved) isEvent() {}
func (CountResolved) isEvent()  {}
