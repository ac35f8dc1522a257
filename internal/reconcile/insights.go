package reconcile

import (
	"math"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
)

// ComputeInsight aggregates performance counters over the filtered
// assignment set. CompletionRate counts submitted and graded work against
// the total; Pending is everything not yet graded; AverageScore is the
// mean of the numerically scored assignments, nil when none carry a
// score.
func ComputeInsight(assignments []models.Assignment) models.AssignmentInsight {
	insight := models.AssignmentInsight{Total: len(assignments)}

	var scoreSum float64
	var scored int
	for _, a := range assignments {
		switch a.Status {
		case models.AssignmentStatusSubmitted:
			insight.Submitted++
		case models.AssignmentStatusGraded:
			insight.Graded++
		}
		if a.Score != nil {
			scoreSum += *a.Score
			scored++
		}
	}

	if insight.Total > 0 {
		insight.CompletionRate = int(math.Round(100 * float64(insight.Submitted+insight.Graded) / float64(insight.Total)))
	}
	if scored > 0 {
		avg := round2(scoreSum / float64(scored))
		insight.AverageScore = &avg
	}
	insight.Pending = insight.Total - insight.Graded
	if insight.Pending < 0 {
		insight.Pending = 0
	}

	return insight
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
