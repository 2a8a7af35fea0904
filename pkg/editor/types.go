package editor

import (
	"time"

	"github.com/marcus/mask/internal/models"
)

const (
	// statusTTL is how long a status message stays on screen.
	statusTTL = 3 * time.Second

	toolbarHeight = 1
	hintHeight    = 1
	statusHeight  = 1

	formWidth = 64
)

// featuresLoadedMsg carries the mask layer contents. Gen is the service
// generation the load was started at; older loads are dropped.
type featuresLoadedMsg struct {
	Gen      uint64
	Features []models.Feature
	Err      error
}

// ClearStatusMsg clears the status line if it still shows message Seq.
type ClearStatusMsg struct {
	Seq int
}
