package model

import "time"

// RecommendationKind is the action the optimizer proposes for a unit.
type RecommendationKind string

const (
	RecommendBundle        RecommendationKind = "bundle"
	RecommendBundlePartner RecommendationKind = "bundle_partner"
	RecommendStandalone    RecommendationKind = "standalone"
)

// Recommendation is one unit's entry in the optimizer output. Bundle entries
// carry the paired partner; partner entries point back at the bundle owner.
type Recommendation struct {
	UnitID        int64
	UnitName      string
	Kind          UnitKind
	Strategy      RecommendationKind
	PartnerID     int64
	PartnerName   string
	DepartureDate *time.Time
	BundlePrice   int64 // combined pair price after discount; 0 for standalone
	Discount      int64 // yen off the combined price, >= 0
	MaxSets       int   // min(remaining hotel, remaining flight)
	Gain          int64 // simulated profit_B - profit_A for the pair
	Urgency       float64
	StrategyScore float64
	Reason        string
}

// StrategyReport aggregates the optimizer pass.
type StrategyReport struct {
	Scenario              Scenario
	Recommendations       []Recommendation
	TotalStandaloneProfit int64
	TotalOptimizedProfit  int64
	Uplift                int64
}

// PackageQuote is one ranked cross-sell offer with its white-box breakdown.
type PackageQuote struct {
	Rank              int
	FlightID          int64
	FlightName        string
	FlightBase        int64
	FlightPrice       int64
	FlightVelocity    VelocitySignal
	FlightVelocityAdj int64
	HotelID           int64
	HotelName         string
	HotelBase         int64
	HotelPrice        int64
	HotelVelocity     VelocitySignal
	HotelVelocityAdj  int64
	SumDynamicPrice   int64
	HotelUrgency      float64
	BundleDiscount    int64 // negative delta on the summed price
	FinalPackagePrice int64
	StrategyScore     float64
	Reason            string
}
