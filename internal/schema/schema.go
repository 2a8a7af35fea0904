// Package schema defines the fixed set of mask category flags carried by
// every masking area.
package schema

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Flag describes one boolean mask category.
type Flag struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var (
	// Landscape hides terrain and landscape elements.
	Landscape = Flag{
		Key:         "maskLandscape",
		Label:       "Landscape",
		Description: "Hide terrain and landscape elements",
	}

	// Vegetation hides trees and other vegetation.
	Vegetation = Flag{
		Key:         "maskVegetation",
		Label:       "Vegetation",
		Description: "Hide trees and other vegetation",
	}

	// Buildings hides buildings and structures.
	Buildings = Flag{
		Key:         "maskBuildings",
		Label:       "Buildings",
		Description: "Hide buildings and structures",
	}

	// Infrastructure hides roads and bridges. The key keeps the store's
	// field spelling.
	Infrastructure = Flag{
		Key:         "maskInfrastrukture",
		Label:       "Infrastructure",
		Description: "Hide roads, bridges and other infrastructure",
	}

	// IntegratedMesh hides 3D mesh data.
	IntegratedMesh = Flag{
		Key:         "maskIntegratedMesh",
		Label:       "Integrated Mesh",
		Description: "Hide 3D mesh data",
	}
)

var allFlags = [...]Flag{
	Landscape,
	Vegetation,
	Buildings,
	Infrastructure,
	IntegratedMesh,
}

// NumFlags is the number of recognized flags.
const NumFlags = len(allFlags)

var indexByKey = buildIndex()

func buildIndex() map[string]int {
	idx := make(map[string]int, len(allFlags))
	for i, f := range allFlags {
		idx[f.Key] = i
	}
	return idx
}

// Flags returns the ordered flag table.
func Flags() []Flag {
	out := make([]Flag, len(allFlags))
	copy(out, allFlags[:])
	return out
}

// Keys returns the flag keys in schema order.
func Keys() []string {
	keys := make([]string, len(allFlags))
	for i, f := range allFlags {
		keys[i] = f.Key
	}
	return keys
}

// Lookup returns the flag with the given key.
func Lookup(key string) (Flag, bool) {
	i, ok := indexByKey[key]
	if !ok {
		return Flag{}, false
	}
	return allFlags[i], true
}

// MaskAttributes holds one 0/1 value per flag, in schema order.
type MaskAttributes [NumFlags]int

// Default returns attributes with every flag off.
func Default() MaskAttributes {
	return MaskAttributes{}
}

// IsActive reports whether the flag named key is set to 1.
func IsActive(attrs MaskAttributes, key string) bool {
	return attrs.Get(key) == 1
}

// Get returns the value of the flag named key, or 0 for unknown keys.
func (a MaskAttributes) Get(key string) int {
	i, ok := indexByKey[key]
	if !ok {
		return 0
	}
	return a[i]
}

// Set returns a copy with the flag named key switched on or off.
// Unknown keys leave the value unchanged.
func (a MaskAttributes) Set(key string, on bool) MaskAttributes {
	i, ok := indexByKey[key]
	if !ok {
		return a
	}
	if on {
		a[i] = 1
	} else {
		a[i] = 0
	}
	return a
}

// Toggle returns a copy with the flag named key flipped.
func (a MaskAttributes) Toggle(key string) MaskAttributes {
	return a.Set(key, !IsActive(a, key))
}

// Active returns the flags that are switched on, in schema order.
func (a MaskAttributes) Active() []Flag {
	var out []Flag
	for i, f := range allFlags {
		if a[i] == 1 {
			out = append(out, f)
		}
	}
	return out
}

// ActiveKeys returns the keys of the flags that are switched on.
func (a MaskAttributes) ActiveKeys() []string {
	var keys []string
	for _, f := range a.Active() {
		keys = append(keys, f.Key)
	}
	return keys
}

// Labels returns a comma separated list of active flag labels.
func (a MaskAttributes) Labels() string {
	var labels []string
	for _, f := range a.Active() {
		labels = append(labels, f.Label)
	}
	return strings.Join(labels, ", ")
}

// FromKeys builds attributes with exactly the given keys switched on.
func FromKeys(keys []string) MaskAttributes {
	attrs := Default()
	for _, k := range keys {
		attrs = attrs.Set(k, true)
	}
	return attrs
}

// Record returns the attribute dictionary sent to a feature store.
// Every recognized key is present.
func (a MaskAttributes) Record() map[string]any {
	rec := make(map[string]any, len(allFlags))
	for i, f := range allFlags {
		rec[f.Key] = a[i]
	}
	return rec
}

// FromRecord reads a feature store attribute dictionary. Unknown keys
// are ignored and missing keys read as 0.
func FromRecord(rec map[string]any) MaskAttributes {
	var attrs MaskAttributes
	for i, f := range allFlags {
		if truthy(rec[f.Key]) {
			attrs[i] = 1
		}
	}
	return attrs
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x == 1
	case int32:
		return x == 1
	case int64:
		return x == 1
	case float32:
		return x == 1
	case float64:
		return x == 1
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil && f == 1
	}
	return false
}
