// Package report renders engine outputs as plain-text reports for logs
// and operator notifications.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
)

func yen(v int64) string {
	if v < 0 {
		return "-¥" + humanize.Comma(-v)
	}
	return "¥" + humanize.Comma(v)
}

// FormatPricingReport renders one priced unit with its waterfall breakdown.
func FormatPricingReport(res *model.PricingResult, remaining, total int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s [%s] %s\n", res.UnitName, res.Strategy,
		pricing.AvailabilityLabel(remaining, total)))
	for _, step := range res.Waterfall {
		switch step.Measure {
		case model.MeasureRelative:
			if step.Value != 0 {
				sign := ""
				if step.Value > 0 {
					sign = "+"
				}
				b.WriteString(fmt.Sprintf("  %-22s %s%s\n", step.Label, sign, yen(step.Value)))
			}
		default:
			b.WriteString(fmt.Sprintf("  %-22s %s\n", step.Label, yen(step.Value)))
		}
	}
	if res.VelocityRatio.Valid {
		b.WriteString(fmt.Sprintf("  velocity ratio: %.3f", res.VelocityRatio.Ratio))
		if res.BrakeActive {
			b.WriteString(" (brake engaged)")
		}
		b.WriteString("\n")
	}
	b.WriteString("  " + res.Reason + "\n")
	return b.String()
}

// FormatStrategyReport renders the optimizer pass for the daily decision log.
func FormatStrategyReport(rep *model.StrategyReport, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("strategy report (%s) | %s\n",
		rep.Scenario, now.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("  standalone baseline: %s\n", yen(rep.TotalStandaloneProfit)))
	b.WriteString(fmt.Sprintf("  optimized mix:       %s\n", yen(rep.TotalOptimizedProfit)))
	b.WriteString(fmt.Sprintf("  projected uplift:    %s\n\n", yen(rep.Uplift)))

	for _, rec := range rep.Recommendations {
		switch rec.Strategy {
		case model.RecommendBundle:
			b.WriteString(fmt.Sprintf("  [bundle] %s + %s @ %s (save %s, up to %d sets, gain %s)\n",
				rec.UnitName, rec.PartnerName, yen(rec.BundlePrice), yen(rec.Discount),
				rec.MaxSets, yen(rec.Gain)))
			b.WriteString(fmt.Sprintf("           %s\n", rec.Reason))
		case model.RecommendBundlePartner:
			// Covered by the owning bundle line.
		default:
			b.WriteString(fmt.Sprintf("  [standalone] %s: %s\n", rec.UnitName, rec.Reason))
		}
	}
	return b.String()
}

// FormatROI renders realized dynamic-vs-fixed revenue lift.
func FormatROI(m *model.ROIMetrics) string {
	var b strings.Builder

	b.WriteString("dynamic pricing ROI\n")
	b.WriteString(fmt.Sprintf("  dynamic revenue: %s\n", yen(m.TotalDynamic)))
	b.WriteString(fmt.Sprintf("  fixed baseline:  %s\n", yen(m.TotalFixed)))
	b.WriteString(fmt.Sprintf("  lift:            %s (%+.1f%%) over %d units sold\n",
		yen(m.Lift), m.LiftPct, m.TotalUnits))
	for _, d := range m.Daily {
		b.WriteString(fmt.Sprintf("    %s  dynamic %s / fixed %s\n",
			d.Day, yen(d.Dynamic), yen(d.Fixed)))
	}
	return b.String()
}

// FormatRescue renders the bundle-attributed share of sales.
func FormatRescue(m *model.RescueMetrics) string {
	return fmt.Sprintf(
		"bundle rescue: %.1f%% of %d sold units moved via bundles (hotels: %.1f%%, %d rescued)",
		m.OverallRescueRate, m.TotalUnits, m.HotelRescueRate, m.RescuedUnits)
}
