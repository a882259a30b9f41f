package applications

import (
	"sort"
	"time"

	"github.com/garnizeh/jobboard/pkg/models"
)

// Stats counts applications per status for dashboard display.
type Stats struct {
	Total       int `json:"total"`
	Applied     int `json:"applied"`
	UnderReview int `json:"underReview"`
	Interviews  int `json:"interviews"`
	Hired       int `json:"hired"`
	Rejected    int `json:"rejected"`
}

// Stats summarises the current local list.
func (e *Engine) Stats() Stats {
	return CountByStatus(e.Snapshot().Applications)
}

func CountByStatus(apps []models.Application) Stats {
	s := Stats{Total: len(apps)}
	for _, a := range apps {
		switch a.Status {
		case models.StatusApplied:
			s.Applied++
		case models.StatusUnderReview:
			s.UnderReview++
		case models.StatusInterview:
			s.Interviews++
		case models.StatusHired:
			s.Hired++
		case models.StatusRejected:
			s.Rejected++
		}
	}
	return s
}

// SortByAppliedAt returns a copy of apps, newest first. Entries whose
// timestamp does not parse sort last, in their original order.
func SortByAppliedAt(apps []models.Application) []models.Application {
	out := append([]models.Application(nil), apps...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, erri := time.Parse(time.RFC3339Nano, out[i].AppliedAt)
		tj, errj := time.Parse(time.RFC3339Nano, out[j].AppliedAt)
		switch {
		case erri != nil:
			return false
		case errj != nil:
			return true
		default:
			return ti.After(tj)
		}
	})
	return out
}
