package controller

import (
	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

// Effect is an instruction produced by Step for the caller to carry out,
// in order.
type Effect interface {
	isEffect()
}

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

type (
	// ActivateCapture starts polygon capture on the map surface.
	ActivateCapture struct{}
	// CancelCapture stops capture and drops partial vertices.
	CancelCapture struct{}
	// HoldScratch puts the draft on the scratch layer.
	HoldScratch struct {
		Draft models.DraftGeometry
	}
	// ClearScratch empties the scratch layer.
	ClearScratch struct{}
	// EnableHitTest routes map clicks to hit-testing.
	EnableHitTest struct{}
	// DisableHitTest stops routing map clicks to hit-testing.
	DisableHitTest struct{}
	// PresentSaveForm opens the attribute form for a new area.
	PresentSaveForm struct {
		Attrs schema.MaskAttributes
	}
	// PresentEditForm opens the attribute form for a stored area.
	PresentEditForm struct {
		Handle models.SelectionHandle
		Attrs  schema.MaskAttributes
	}
	// PresentFeatureDialog opens the summary dialog for a stored area.
	PresentFeatureDialog struct {
		Handle models.SelectionHandle
	}
	// DismissUI closes any open form or dialog.
	DismissUI struct{}

	// CreateFeature stores a draft; answer with CreateResolved.
	CreateFeature struct {
		Op    Op
		Draft models.DraftGeometry
		Attrs schema.MaskAttributes
	}
	// UpdateFeature stores new attributes; answer with UpdateResolved.
	UpdateFeature struct {
		Op       Op
		ObjectID models.ObjectID
		Attrs    schema.MaskAttributes
	}
	// DeleteFeature removes a stored area; answer with DeleteResolved.
	DeleteFeature struct {
		Op       Op
		ObjectID models.ObjectID
	}
	// QueryCount refreshes the feature count; answer with CountResolved.
	QueryCount struct {
		Op Op
	}
	// RefreshLayer asks the map surface to re-pull stored areas.
	RefreshLayer struct{}
	// Notify shows a message to the operator.
	Notify struct {
		Level Level
		Text  string
	}
)

func (ActivateCapture) isEffect()      {}
func (CancelCapture) isEffect()        {}
func (HoldScratch) isEffect()          {}
func (ClearScratch) isEffect()         {}
func (EnableHitTest) isEffect()        {}
func (DisableHitTest) isEffect()       {}
func (PresentSaveForm) isEffect()      {}
func (PresentEditForm) isEffect()      {}
func (PresentFeatureDialog) isEffect() {}
func (DismissUI) isEffect()            {}
func (CreateFeature) isEffect()        {}
func (UpdateFeature) isEffect()        {}
func (DeleteFeature) isEffect()        {}
func (QueryCount) isEffect()           {}
func (RefreshLayer) isEffect()         {}
func (Notify) isEffect()               {}
