package model

// DayTrace records one simulated day. Day counts down to departure (Day 0).
// Stock values are fractional because daily paces are fractional.
type DayTrace struct {
	Day          int
	ProfitA      int64
	ProfitB      int64
	HotelStockA  float64
	FlightStockA float64
	HotelStockB  float64
	FlightStockB float64
	DecayFactor  float64
}

// SimulationResult compares selling standalone (scenario A) against bundling
// now and reverting once a leg depletes (scenario B).
type SimulationResult struct {
	Scenario     Scenario
	ProfitA      int64
	ProfitB      int64
	Gain         int64 // ProfitB - ProfitA
	PackagesSold int
	Trace        []DayTrace
}

// ROIMetrics aggregates realized revenue lift of dynamic over fixed pricing.
type ROIMetrics struct {
	TotalDynamic int64
	TotalFixed   int64
	Lift         int64
	LiftPct      float64
	TotalUnits   int
	Daily        []DailyRevenue
}

// DailyRevenue is one day of the ROI series.
type DailyRevenue struct {
	Day     string // YYYY-MM-DD
	Dynamic int64
	Fixed   int64
}

// RescueMetrics measures how much depletion was driven by bundle sales.
type RescueMetrics struct {
	OverallRescueRate float64 // percent
	HotelRescueRate   float64 // percent
	RescuedUnits      int
	TotalUnits        int
}
