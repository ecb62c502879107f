package service

import (
	"context"
	"io"
	"strings"
	"time"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/evaluation"
	"mkulima/pkg/reading"
)

// Event identifies one agronomic event of a farmer.
type Event struct {
	FarmerID    string
	Crop        string
	ProcessType string
	Date        time.Time
}

// Validate reports the missing identity fields of the event.
func (e Event) Validate() error {
	var missing []string
	if strings.TrimSpace(e.FarmerID) == "" {
		missing = append(missing, "farmers_id")
	}
	if strings.TrimSpace(e.Crop) == "" {
		missing = append(missing, "crop")
	}
	if strings.TrimSpace(e.ProcessType) == "" {
		missing = append(missing, "process_type")
	}
	if e.Date.IsZero() {
		missing = append(missing, "process_date")
	}
	if len(missing) > 0 {
		return apperr.MissingFields(missing...)
	}
	return nil
}

// DateLayout is the accepted event date format.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC 3339. The result is in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &apperr.ValidationError{Fields: []string{"process_date"}, Reason: "date must be YYYY-MM-DD"}
}

type ProcessService interface {
	// Record saves a bare event without readings or evaluation.
	Record(ctx context.Context, ev Event) (*entities.CropProcess, error)
	// Evaluate runs the engine for an explicit stage without saving.
	Evaluate(ctx context.Context, crop, stage string, r reading.Set) (*evaluation.Result, error)
	// EvaluateAndSave maps the process type to a stage, evaluates and saves
	// the complete record.
	EvaluateAndSave(ctx context.Context, ev Event, r reading.Set) (*entities.CropProcess, *evaluation.Result, error)
	List(ctx context.Context, farmerID string) ([]entities.CropProcess, error)
	// Export writes the farmer's records as an XLSX workbook.
	Export(ctx context.Context, farmerID string, w io.Writer) error
}
