package sync

import "github.com/marcus/mask/internal/models"

// ScratchLayer holds the draft being captured or awaiting save. It never
// holds more than one geometry.
type ScratchLayer struct {
	draft *models.DraftGeometry
}

// Hold replaces whatever the layer holds with a copy of d.
func (s *ScratchLayer) Hold(d models.DraftGeometry) {
	c := d.Clone()
	s.draft = &c
}

// Clear empties the layer.
func (s *ScratchLayer) Clear() {
	s.draft = nil
}

// Current returns the held draft.
func (s *ScratchLayer) Current() (models.DraftGeometry, bool) {
	if s.draft == nil {
		return models.DraftGeometry{}, false
	}
	return s.draft.Clone(), true
}

// Len is 0 or 1.
func (s *ScratchLayer) Len() int {
	if s.draft == nil {
		return 0
	}
	return 1
}
