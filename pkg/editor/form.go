package editor

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

// FormMode represents the mode of the form
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// FormState holds the attribute form for a new or selected masking area.
type FormState struct {
	Mode   FormMode
	Form   *huh.Form
	Handle models.SelectionHandle // edit mode only

	// Selected is bound to the multi-select: the keys of the active flags.
	Selected []string
}

// NewSaveForm creates the form shown after a polygon is drawn.
func NewSaveForm(attrs schema.MaskAttributes) *FormState {
	f := &FormState{Mode: FormModeCreate, Selected: attrs.ActiveKeys()}
	f.buildForm()
	return f
}

// NewEditForm creates the form for a stored area, pre-filled with its
// current attributes.
func NewEditForm(handle models.SelectionHandle, attrs schema.MaskAttributes) *FormState {
	f := &FormState{Mode: FormModeEdit, Handle: handle, Selected: attrs.ActiveKeys()}
	f.buildForm()
	return f
}

// Title is the heading shown above the form.
func (f *FormState) Title() string {
	if f.Mode == FormModeEdit {
		return fmt.Sprintf("Edit Masks · area %d", f.Handle.ObjectID)
	}
	return "Configure Masking Area"
}

// Attributes returns the flags chosen so far.
func (f *FormState) Attributes() schema.MaskAttributes {
	return schema.FromKeys(f.Selected)
}

// Rebuild recreates the huh form from the given attributes, leaving it
// ready for input again after a failed submit.
func (f *FormState) Rebuild(attrs schema.MaskAttributes) {
	f.Selected = attrs.ActiveKeys()
	f.buildForm()
}

func (f *FormState) buildForm() {
	active := make(map[string]bool, len(f.Selected))
	for _, k := range f.Selected {
		active[k] = true
	}

	flags := schema.Flags()
	options := make([]huh.Option[string], len(flags))
	for i, flag := range flags {
		options[i] = huh.NewOption(flag.Label+" · "+flag.Description, flag.Key).Selected(active[flag.Key])
	}

	f.Form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Masks").
				Description("Select which elements should be hidden within this area").
				Options(options...).
				Height(len(options)+2).
				Value(&f.Selected),
		),
	).WithShowHelp(true).WithWidth(formWidth - 4).WithTheme(huh.ThemeDracula())
}
