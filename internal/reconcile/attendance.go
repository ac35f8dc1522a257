package reconcile

import (
	"math"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

// ReconcileAttendance derives the {present, total, percentage} summary
// from an attendance payload of any shape. Present reads from its aliased
// fields; total comes from an explicit field, then present + absent when
// both are supplied, then the fallback, then present itself. Percentage
// uses an explicit non-negative value when given and is recomputed
// otherwise. Outputs are integers, non-negative, percentage clamped to
// [0,100].
func ReconcileAttendance(raw any, fallback models.AttendanceSummary) models.AttendanceSummary {
	obj, ok := record.AsObject(raw)
	if !ok {
		return clampSummary(fallback)
	}

	present, hasPresent := record.AttendancePresent.Number(obj)
	if !hasPresent {
		present = float64(fallback.Present)
	}

	total, hasTotal := record.AttendanceTotal.Number(obj)
	if !hasTotal && hasPresent {
		if absent, hasAbsent := record.AttendanceAbsent.Number(obj); hasAbsent {
			total = present + absent
			hasTotal = true
		}
	}
	if !hasTotal {
		if fallback.Total > 0 {
			total = float64(fallback.Total)
		} else {
			total = present
		}
	}

	summary := models.AttendanceSummary{
		Present: roundNonNeg(present),
		Total:   roundNonNeg(total),
	}

	if pct, ok := record.AttendancePercentage.Number(obj); ok && pct >= 0 {
		summary.Percentage = int(math.Round(pct))
	} else if summary.Total > 0 {
		summary.Percentage = int(math.Round(float64(summary.Present) / float64(summary.Total) * 100))
	}
	summary.Percentage = clampPercentage(summary.Percentage)

	return summary
}

func clampSummary(s models.AttendanceSummary) models.AttendanceSummary {
	if s.Present < 0 {
		s.Present = 0
	}
	if s.Total < 0 {
		s.Total = 0
	}
	s.Percentage = clampPercentage(s.Percentage)
	return s
}

func roundNonNeg(f float64) int {
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	return n
}

func clampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
