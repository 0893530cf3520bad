package assignment

import (
	"time"

	"peerpulse/internal/domain/org"
	"peerpulse/internal/domain/ranking"
)

// planInput is everything needed to decide one employee's obligations
// without touching storage.
type planInput struct {
	Employee         org.EmployeeRef
	DirectReports    []string
	RankedPeers      []ranking.PeerRanking
	RecentProviders  map[string]struct{}
	PeersPerEmployee int
	Include360       bool
	CycleID          string
	DueDate          time.Time
}

// planRequests selects an employee's feedback obligations: the top ranked
// peers surviving the recency exclusion, then hierarchy requests when 360 is
// on. The recency filter applies only to peer selection; manager and upward
// requests always go to the fixed hierarchy. Candidates may run out before
// PeersPerEmployee is reached, in which case the plan is simply shorter.
func planRequests(in planInput) []FeedbackRequest {
	var planned []FeedbackRequest

	taken := 0
	for _, candidate := range in.RankedPeers {
		if taken >= in.PeersPerEmployee {
			break
		}
		if candidate.PeerID == in.Employee.ID {
			continue
		}
		if _, excluded := in.RecentProviders[candidate.PeerID]; excluded {
			continue
		}
		planned = append(planned, newRequest(in, candidate.PeerID, RequestTypePeer))
		taken++
	}

	if in.Include360 {
		if in.Employee.ManagerID != "" {
			planned = append(planned, newRequest(in, in.Employee.ManagerID, RequestTypeManager))
		}
		if in.Employee.IsManager {
			for _, reportID := range in.DirectReports {
				if reportID == in.Employee.ID {
					continue
				}
				planned = append(planned, newRequest(in, reportID, RequestTypeUpward))
			}
		}
	}

	return planned
}

func newRequest(in planInput, providerID, requestType string) FeedbackRequest {
	return FeedbackRequest{
		RequesterID: in.Employee.ID,
		ProviderID:  providerID,
		CycleID:     in.CycleID,
		RequestType: requestType,
		Status:      StatusPending,
		DueDate:     in.DueDate,
	}
}

// buildReportsIndex derives the manager -> direct reports map from the
// employee forest in one pass.
func buildReportsIndex(refs []org.EmployeeRef) map[string][]string {
	index := make(map[string][]string)
	for _, ref := range refs {
		if ref.ManagerID == "" {
			continue
		}
		index[ref.ManagerID] = append(index[ref.ManagerID], ref.ID)
	}
	return index
}
