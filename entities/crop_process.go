package entities

import "time"

// CropProcess is one agronomic event. It is either bare (no readings, no
// evaluation) or complete (all seven readings and every evaluation output).
type CropProcess struct {
	ProcessID   uint      `gorm:"primaryKey" json:"process_id"`
	FarmerID    string    `gorm:"index;not null" json:"farmers_id"`
	Crop        string    `gorm:"not null" json:"crop"` // lower-cased
	ProcessType string    `gorm:"not null" json:"process_type"`
	ProcessDate time.Time `gorm:"index;not null" json:"process_date"`

	Readings

	// evaluation outputs
	Stage            *string           `json:"stage"`
	Suitable         *bool             `json:"suitable"`
	SuitabilityScore *float64          `json:"suitability_score"`
	Flags            map[string]string `gorm:"serializer:json" json:"flags"` // reading -> ok|low|high
	Advice           *string           `json:"advice"`

	CreatedAt time.Time
}

// Readings are optional on the row; see HasReadings.
type Readings struct {
	N           *float64 `gorm:"column:n" json:"N"`
	P           *float64 `gorm:"column:p" json:"P"`
	K           *float64 `gorm:"column:k" json:"K"`
	Temperature *float64 `gorm:"column:temperature" json:"temperature"`
	Humidity    *float64 `gorm:"column:humidity" json:"humidity"`
	PH          *float64 `gorm:"column:ph" json:"ph"`
	Rainfall    *float64 `gorm:"column:rainfall" json:"rainfall"`
}

func (r Readings) count() int {
	n := 0
	for _, p := range []*float64{r.N, r.P, r.K, r.Temperature, r.Humidity, r.PH, r.Rainfall} {
		if p != nil {
			n++
		}
	}
	return n
}

const (
	readingFields = 7
	evalFields    = 5
)

func (c *CropProcess) evalCount() int {
	n := 0
	if c.Stage != nil {
		n++
	}
	if c.Suitable != nil {
		n++
	}
	if c.SuitabilityScore != nil {
		n++
	}
	if c.Flags != nil {
		n++
	}
	if c.Advice != nil {
		n++
	}
	return n
}

// IsBare reports a record with no readings and no evaluation outputs.
func (c *CropProcess) IsBare() bool {
	return c.Readings.count() == 0 && c.evalCount() == 0
}

// IsComplete reports a record with every reading and evaluation output.
func (c *CropProcess) IsComplete() bool {
	return c.Readings.count() == readingFields && c.evalCount() == evalFields
}
