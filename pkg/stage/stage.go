// Package stage maps recorded process types onto the coarse phenological
// stage the prediction engine is trained on.
package stage

import "strings"

const (
	Preplant   = "preplant"
	Planting   = "planting"
	Vegetative = "vegetative"
	Harvest    = "harvest"

	// Default is used for any process type missing from the table.
	Default = Vegetative
)

var table = map[string]string{
	"land_prep":       Preplant,
	"planting":        Planting,
	"irrigation":      Vegetative,
	"weed_control":    Vegetative,
	"pest_management": Vegetative,
	"fertilization":   Vegetative,
	"harvest":         Harvest,
	"soil_management": Preplant,
}

// Map returns the stage for a process type. It never fails.
func Map(processType string) string {
	if s, ok := table[normalize(processType)]; ok {
		return s
	}
	return Default
}

// ProcessTypes lists the known process types in menu order.
func ProcessTypes() []string {
	return []string{"land_prep", "planting", "irrigation", "weed_control", "pest_management", "fertilization", "harvest", "soil_management"}
}

// Table returns a copy of the mapping.
func Table() map[string]string {
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// Known reports whether processType is in the table.
func Known(processType string) bool {
	_, ok := table[normalize(processType)]
	return ok
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
