package model

// VelocitySignal is the demand-pace ratio of a unit. Valid is false when no
// ratio could be derived (empty event window, unknown departure). Absence of
// a signal is deliberately distinct from a ratio of zero.
type VelocitySignal struct {
	Ratio float64
	Valid bool
}

// Measure classifies one step of a price waterfall.
type Measure string

const (
	MeasureAbsolute Measure = "absolute"
	MeasureRelative Measure = "relative"
	MeasureTotal    Measure = "total"
)

// WaterfallStep is one labeled entry of the ordered price breakdown.
type WaterfallStep struct {
	Label   string
	Value   int64
	Measure Measure
}

// PricingResult is the full, explainable outcome of one price computation.
type PricingResult struct {
	UnitID    int64
	UnitName  string
	Strategy  string
	BasePrice int64

	// Rule-based adjustments (yen). Zero when the elasticity strategy ran.
	ScarcityAdjustment int64
	LeadTimeAdjustment int64
	VelocityAdjustment int64

	// Elasticity-strategy factors. 1.0 when the rule-based strategy ran.
	ElasticityMultiplier float64
	DecayFactor          float64

	FinalPrice     int64
	RemainingRatio float64
	LeadDays       int // -1 when HasDeparture is false
	HasDeparture   bool
	VelocityRatio  VelocitySignal
	BrakeActive    bool
	Waterfall      []WaterfallStep
	Reason         string
}
