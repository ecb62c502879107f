package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestCropProcess_BareAndComplete(t *testing.T) {
	bare := &CropProcess{FarmerID: "F1", Crop: "maize", ProcessType: "planting"}
	assert.True(t, bare.IsBare())
	assert.False(t, bare.IsComplete())

	stage, ok, advice := "planting", true, "All within the recommended range."
	full := &CropProcess{
		FarmerID: "F1", Crop: "maize", ProcessType: "planting",
		Readings: Readings{N: f(1), P: f(2), K: f(3), Temperature: f(4), Humidity: f(5), PH: f(6), Rainfall: f(7)},
		Stage:    &stage, Suitable: &ok, SuitabilityScore: f(0.9),
		Flags:  map[string]string{"N": "ok"},
		Advice: &advice,
	}
	assert.True(t, full.IsComplete())
	assert.False(t, full.IsBare())

	partial := *full
	partial.Advice = nil
	assert.False(t, partial.IsComplete())
	assert.False(t, partial.IsBare())

	readingsOnly := &CropProcess{Readings: full.Readings}
	assert.False(t, readingsOnly.IsComplete())
	assert.False(t, readingsOnly.IsBare())
}
