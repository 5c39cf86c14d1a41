package audit

import (
	"seo_auditor/config"
	"seo_auditor/models"
)

// SiteHealth scores a crawl from its issues. The score starts at 100 and
// each open issue subtracts its severity weight; resolved issues (done or
// implemented) stop counting. The result is clamped to [0, 100], so a crawl
// with zero open issues scores exactly 100.
func SiteHealth(issues []models.Issue, typeByID map[int64]models.IssueType, weights config.SeverityWeights) float64 {
	score := 100.0
	for _, issue := range issues {
		if issue.Status == models.IssueStatusDone || issue.Implemented {
			continue
		}
		it, ok := typeByID[issue.IssueTypeID]
		if !ok {
			continue
		}
		score -= weights.WeightFor(it.Severity)
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
