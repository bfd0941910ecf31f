package model

// Scenario names a demand assumption for forecasting and simulation.
type Scenario string

const (
	ScenarioPessimistic Scenario = "pessimistic"
	ScenarioBase        Scenario = "base"
	ScenarioOptimistic  Scenario = "optimistic"
)

// Scenarios lists all scenarios in ascending demand order.
var Scenarios = []Scenario{ScenarioPessimistic, ScenarioBase, ScenarioOptimistic}

// ParseScenario validates a raw scenario string.
func ParseScenario(s string) (Scenario, bool) {
	switch Scenario(s) {
	case ScenarioPessimistic, ScenarioBase, ScenarioOptimistic:
		return Scenario(s), true
	default:
		return "", false
	}
}

// ForecastResult projects one unit to end of horizon under one scenario.
type ForecastResult struct {
	DailyPace      float64
	PredictedSold  float64
	UnsoldStock    float64
	ExpectedProfit int64
}
