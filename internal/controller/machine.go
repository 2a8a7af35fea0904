// Package controller is the capture and selection state machine. Step is
// pure: it returns the next machine and the effects the caller must run.
package controller

import (
	"fmt"

	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
	masksync "github.com/marcus/mask/internal/sync"
)

// Machine is the controller state. It is a value; Step never mutates
// its argument.
type Machine struct {
	State State
	// FeatureCount mirrors the store's feature count for display only.
	FeatureCount int64
	CountKnown   bool
	// MaskLayer is the layer id whose hits are selectable.
	MaskLayer string

	nextOp Op
	// countApplied is the op of the newest count written to the cache.
	countApplied Op
}

// New returns an idle machine selecting from maskLayer.
func New(maskLayer string) Machine {
	return Machine{State: Idle{}, MaskLayer: maskLayer}
}

// Mode returns the coarse interaction mode.
func (m Machine) Mode() Mode {
	return modeOf(m.State)
}

// Busy reports whether the current slot has a store call outstanding.
func (m Machine) Busy() bool {
	return pendingOf(m.State) != 0
}

func (m *Machine) newOp() Op {
	m.nextOp++
	return m.nextOp
}

func (m *Machine) countOp() Op {
	return m.newOp()
}

// Step applies ev to m.
func Step(m Machine, ev Event) (Machine, []Effect) {
	if m.State == nil {
		m.State = Idle{}
	}

	switch e := ev.(type) {
	case RequestCount:
		return m, []Effect{QueryCount{Op: m.countOp()}}
	case CountResolved:
		return m.countResolved(e)
	}

	switch st := m.State.(type) {
	case Idle:
		return m.idle(ev)
	case Drawing:
		return m.drawing(ev)
	case AwaitingSaveForm:
		return m.awaitingSave(st, ev)
	case Selecting:
		return m.selecting(ev)
	case FeatureChosen:
		return m.featureChosen(st, ev)
	case AwaitingEditForm:
		return m.awaitingEdit(st, ev)
	}
	return m, nil
}

func (m Machine) idle(ev Event) (Machine, []Effect) {
	switch ev.(type) {
	case StartDraw:
		m.State = Drawing{}
		return m, []Effect{ActivateCapture{}}
	case StartSelect:
		m.State = Selecting{}
		return m, []Effect{EnableHitTest{}}
	}
	return m, nil
}

func (m Machine) drawing(ev Event) (Machine, []Effect) {
	switch e := ev.(type) {
	case DrawComplete:
		if err := e.Geometry.Validate(); err != nil {
			return m, []Effect{
				ActivateCapture{},
				Notify{Level: LevelWarn, Text: "A masking area needs at least three points."},
			}
		}
		draft := e.Geometry.Clone()
		attrs := schema.Default()
		m.State = AwaitingSaveForm{Draft: draft, Attrs: attrs}
		return m, []Effect{HoldScratch{Draft: draft}, PresentSaveForm{Attrs: attrs}}
	case CancelDraw:
		m.State = Idle{}
		return m, []Effect{CancelCapture{}, ClearScratch{}}
	case StartSelect:
		m.State = Selecting{}
		return m, []Effect{CancelCapture{}, ClearScratch{}, EnableHitTest{}}
	}
	return m, nil
}

func (m Machine) awaitingSave(st AwaitingSaveForm, ev Event) (Machine, []Effect) {
	if st.Pending != 0 {
		e, ok := ev.(CreateResolved)
		if !ok || e.Op != st.Pending || st.Saved.Valid() {
			return m, nil
		}
		if e.Err == nil && !e.ObjectID.Valid() {
			e.Err = &masksync.Failure{Kind: masksync.RemoteRejected, Op: masksync.OpCreate}
		}
		if e.Err != nil {
			st.Pending = 0
			st.Err = failureText(e.Err, masksync.OpCreate)
			m.State = st
			return m, []Effect{Notify{Level: LevelError, Text: st.Err}}
		}
		st.Saved = e.ObjectID
		st.Err = ""
		st.Pending = m.countOp()
		m.State = st
		return m, []Effect{QueryCount{Op: st.Pending}}
	}

	switch e := ev.(type) {
	case FormSubmit:
		st.Attrs = e.Attrs
		st.Err = ""
		st.Pending = m.newOp()
		m.State = st
		return m, []Effect{CreateFeature{Op: st.Pending, Draft: st.Draft.Clone(), Attrs: e.Attrs}}
	case FormCancel, CancelDraw:
		m.State = Idle{}
		return m, []Effect{DismissUI{}, ClearScratch{}}
	case StartSelect:
		m.State = Selecting{}
		return m, []Effect{DismissUI{}, ClearScratch{}, EnableHitTest{}}
	}
	return m, nil
}

func (m Machine) selecting(ev Event) (Machine, []Effect) {
	switch e := ev.(type) {
	case CancelSelect:
		m.State = Idle{}
		return m, []Effect{DisableHitTest{}}
	case StartDraw:
		m.State = Drawing{}
		return m, []Effect{DisableHitTest{}, ActivateCapture{}}
	case MapClicked:
		hit, ok := m.pick(e.Hits)
		if !ok {
			return m, nil
		}
		handle, ok := masksync.HandleFromHit(hit)
		if !ok {
			return m, []Effect{Notify{Level: LevelWarn, Text: "The selected area has no object id and cannot be edited."}}
		}
		m.State = FeatureChosen{Handle: handle}
		return m, []Effect{PresentFeatureDialog{Handle: handle}}
	}
	return m, nil
}

// pick returns the first hit on the mask layer, keeping the order the
// hit-test reported.
func (m Machine) pick(hits []models.Hit) (models.Hit, bool) {
	for _, h := range hits {
		if h.LayerID == m.MaskLayer {
			return h, true
		}
	}
	return models.Hit{}, false
}

func (m Machine) featureChosen(st FeatureChosen, ev Event) (Machine, []Effect) {
	if st.Pending != 0 {
		e, ok := ev.(DeleteResolved)
		if !ok || e.Op != st.Pending || st.Deleted {
			return m, nil
		}
		if e.Err != nil {
			st.Pending = 0
			st.Err = failureText(e.Err, masksync.OpDelete)
			m.State = st
			return m, []Effect{Notify{Level: LevelError, Text: st.Err}}
		}
		st.Deleted = true
		st.Err = ""
		st.Pending = m.countOp()
		m.State = st
		return m, []Effect{QueryCount{Op: st.Pending}}
	}

	switch ev.(type) {
	case ChooseEdit:
		m.State = AwaitingEditForm{Handle: st.Handle, Attrs: st.Handle.Attributes}
		return m, []Effect{PresentEditForm{Handle: st.Handle, Attrs: st.Handle.Attributes}}
	case ChooseDelete:
		st.Err = ""
		st.Pending = m.newOp()
		m.State = st
		return m, []Effect{DeleteFeature{Op: st.Pending, ObjectID: st.Handle.ObjectID}}
	case CloseDialog:
		m.State = Selecting{}
		return m, []Effect{DismissUI{}}
	case CancelSelect:
		m.State = Idle{}
		return m, []Effect{DismissUI{}, DisableHitTest{}}
	case StartDraw:
		m.State = Drawing{}
		return m, []Effect{DismissUI{}, DisableHitTest{}, ActivateCapture{}}
	}
	return m, nil
}

func (m Machine) awaitingEdit(st AwaitingEditForm, ev Event) (Machine, []Effect) {
	if st.Pending != 0 {
		e, ok := ev.(UpdateResolved)
		if !ok || e.Op != st.Pending {
			return m, nil
		}
		if e.Err != nil {
			st.Pending = 0
			st.Err = failureText(e.Err, masksync.OpUpdate)
			m.State = st
			return m, []Effect{Notify{Level: LevelError, Text: st.Err}}
		}
		m.State = Selecting{}
		return m, []Effect{
			RefreshLayer{},
			DismissUI{},
			Notify{Level: LevelSuccess, Text: "Masking area updated."},
		}
	}

	switch e := ev.(type) {
	case FormSubmit:
		st.Attrs = e.Attrs
		st.Err = ""
		st.Pending = m.newOp()
		m.State = st
		return m, []Effect{UpdateFeature{Op: st.Pending, ObjectID: st.Handle.ObjectID, Attrs: e.Attrs}}
	case FormCancel, CloseDialog:
		m.State = Selecting{}
		return m, []Effect{DismissUI{}}
	case CancelSelect:
		m.State = Idle{}
		return m, []Effect{DismissUI{}, DisableHitTest{}}
	case StartDraw:
		m.State = Drawing{}
		return m, []Effect{DismissUI{}, DisableHitTest{}, ActivateCapture{}}
	}
	return m, nil
}

// countResolved updates the cached count and finishes a create or delete
// that was waiting on it. Any count newer than the last one applied may
// update the cache, so a later failed query never hides an earlier
// success. A failed count never undoes the mutation.
func (m Machine) countResolved(e CountResolved) (Machine, []Effect) {
	var effects []Effect
	if e.Op > m.countApplied {
		if e.Err != nil {
			effects = append(effects, Notify{Level: LevelWarn, Text: failureText(e.Err, masksync.OpCount)})
		} else {
			m.FeatureCount = e.Count
			m.CountKnown = true
			m.countApplied = e.Op
		}
	}

	switch st := m.State.(type) {
	case AwaitingSaveForm:
		if st.Pending == e.Op && st.Saved.Valid() {
			m.State = Idle{}
			effects = append(effects,
				RefreshLayer{},
				ClearScratch{},
				DismissUI{},
				Notify{Level: LevelSuccess, Text: fmt.Sprintf("Masking area %d saved.", st.Saved)},
			)
		}
	case FeatureChosen:
		if st.Pending == e.Op && st.Deleted {
			m.State = Selecting{}
			effects = append(effects,
				RefreshLayer{},
				DismissUI{},
				Notify{Level: LevelSuccess, Text: fmt.Sprintf("Masking area %d deleted.", st.Handle.ObjectID)},
			)
		}
	}
	return m, effects
}

func failureText(err error, op masksync.Operation) string {
	if f, ok := masksync.AsFailure(err); ok {
		return f.UserMessage()
	}
	return (&masksync.Failure{Kind: masksync.TransportFailure, Op: op, Err: err}).UserMessage()
}
