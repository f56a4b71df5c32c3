package rates

import (
	"fmt"
	"sort"
)

// CoverageIssue reports a defect in a scoped rate table: two bands that
// overlap, or a hole between consecutive bands that leaves some volumes
// unpriceable.
type CoverageIssue struct {
	DestinationCity string  `json:"destination_city"`
	MoveTypeID      int64   `json:"move_type_id"`
	Kind            string  `json:"kind"`
	FromVolume      float64 `json:"from_volume"`
	ToVolume        float64 `json:"to_volume"`
}

const (
	// IssueOverlap marks two bands covering the same volume; resolution is
	// first-match, so the later band is partially or fully dead.
	IssueOverlap = "overlap"
	// IssueGap marks volumes between consecutive bands that no band covers.
	IssueGap = "gap"
)

// Bands are quoted to two decimals; adjacent bands conventionally step the
// lower bound by 0.01 above the previous upper bound.
const contiguousStep = 0.011

func (i CoverageIssue) String() string {
	return fmt.Sprintf("%s %s/%d: %.2f-%.2f", i.Kind, i.DestinationCity, i.MoveTypeID, i.FromVolume, i.ToVolume)
}

// AuditCoverage inspects active bands grouped per (destination, move type)
// and reports overlaps and gaps. The write path never enforces these
// invariants; a band table with issues simply fails to price some volumes.
func AuditCoverage(bands []RateBand) []CoverageIssue {
	groups := make(map[Pair][]RateBand)
	for _, b := range bands {
		if !b.IsActive {
			continue
		}
		key := Pair{DestinationCity: b.DestinationCity, MoveTypeID: b.MoveTypeID}
		groups[key] = append(groups[key], b)
	}

	var issues []CoverageIssue
	for key, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			if group[i].MinVolume != group[j].MinVolume {
				return group[i].MinVolume < group[j].MinVolume
			}
			return group[i].ID < group[j].ID
		})
		for i := 1; i < len(group); i++ {
			prev, cur := group[i-1], group[i]
			switch {
			case cur.MinVolume <= prev.MaxVolume:
				issues = append(issues, CoverageIssue{
					DestinationCity: key.DestinationCity,
					MoveTypeID:      key.MoveTypeID,
					Kind:            IssueOverlap,
					FromVolume:      cur.MinVolume,
					ToVolume:        prev.MaxVolume,
				})
			case cur.MinVolume-prev.MaxVolume > contiguousStep:
				issues = append(issues, CoverageIssue{
					DestinationCity: key.DestinationCity,
					MoveTypeID:      key.MoveTypeID,
					Kind:            IssueGap,
					FromVolume:      prev.MaxVolume,
					ToVolume:        cur.MinVolume,
				})
			}
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].DestinationCity != issues[j].DestinationCity {
			return issues[i].DestinationCity < issues[j].DestinationCity
		}
		if issues[i].MoveTypeID != issues[j].MoveTypeID {
			return issues[i].MoveTypeID < issues[j].MoveTypeID
		}
		return issues[i].FromVolume < issues[j].FromVolume
	})
	return issues
}
