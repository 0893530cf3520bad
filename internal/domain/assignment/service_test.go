package assignment

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"peerpulse/internal/domain/cycles"
	"peerpulse/internal/domain/org"
	"peerpulse/internal/domain/ranking"
	"peerpulse/internal/platform/metrics"
)

type fakeStore struct {
	mu        sync.Mutex
	requests  map[string]FeedbackRequest
	responses map[string]FeedbackResponse
	recent    map[string]map[string]struct{}
	nextID    int
	failFor   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:  map[string]FeedbackRequest{},
		responses: map[string]FeedbackResponse{},
		recent:    map[string]map[string]struct{}{},
		failFor:   map[string]bool{},
	}
}

func (f *fakeStore) CreateRequest(ctx context.Context, req FeedbackRequest) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[req.RequesterID] {
		return "", false, errors.New("insert failed")
	}
	for _, existing := range f.requests {
		if existing.RequesterID == req.RequesterID && existing.ProviderID == req.ProviderID && existing.CycleID == req.CycleID {
			return "", false, nil
		}
	}
	f.nextID++
	req.ID = strconv.Itoa(f.nextID)
	f.requests[req.ID] = req
	return req.ID, true, nil
}

func (f *fakeStore) GetRequest(ctx context.Context, requestID string) (FeedbackRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok {
		return FeedbackRequest{}, ErrRequestNotFound
	}
	return req, nil
}

func (f *fakeStore) RecentProviders(ctx context.Context, requesterID string, since time.Time) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]struct{}{}
	for id := range f.recent[requesterID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) PendingFor(ctx context.Context, providerID string) ([]FeedbackRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FeedbackRequest
	for _, req := range f.requests {
		if req.ProviderID == providerID && req.Status != StatusCompleted {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeStore) RequestsFrom(ctx context.Context, requesterID, cycleID string) ([]FeedbackRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FeedbackRequest
	for _, req := range f.requests {
		if req.RequesterID != requesterID {
			continue
		}
		if cycleID != "" && req.CycleID != cycleID {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatusIf(ctx context.Context, requestID, fromStatus, toStatus string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok || req.Status != fromStatus {
		return false, nil
	}
	req.Status = toStatus
	f.requests[requestID] = req
	return true, nil
}

func (f *fakeStore) MarkOverdue(ctx context.Context, asOf time.Time) ([]FeedbackRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FeedbackRequest
	for id, req := range f.requests {
		if req.Status == StatusPending && req.DueDate.Before(asOf) {
			req.Status = StatusOverdue
			req.ReminderCount++
			f.requests[id] = req
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateResponse(ctx context.Context, resp FeedbackResponse) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	resp.ID = strconv.Itoa(f.nextID)
	f.responses[resp.ID] = resp
	req := f.requests[resp.RequestID]
	req.Status = StatusCompleted
	f.requests[resp.RequestID] = req
	return resp.ID, nil
}

type fakeRankings struct {
	byEmployee map[string][]ranking.PeerRanking
}

func (f *fakeRankings) RankedPeers(ctx context.Context, employeeID string, limit int) ([]ranking.PeerRanking, error) {
	rows := f.byEmployee[employeeID]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type fakeEmployees struct {
	refs []org.EmployeeRef
}

func (f *fakeEmployees) ListEmployees(ctx context.Context) ([]org.EmployeeRef, error) {
	return f.refs, nil
}

type fakeCycles struct {
	cycle cycles.FeedbackCycle
	err   error
}

func (f *fakeCycles) GetCycle(ctx context.Context, cycleID string) (cycles.FeedbackCycle, error) {
	if f.err != nil {
		return cycles.FeedbackCycle{}, f.err
	}
	return f.cycle, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	assigned []FeedbackRequest
	overdue  []FeedbackRequest
}

func (n *recordingNotifier) RequestAssigned(ctx context.Context, req FeedbackRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, req)
}

func (n *recordingNotifier) RequestOverdue(ctx context.Context, req FeedbackRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdue = append(n.overdue, req)
}

func testCycle() cycles.FeedbackCycle {
	return cycles.FeedbackCycle{
		ID:      "cycle-1",
		Type:    cycles.TypePeer,
		EndDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:  cycles.StatusActive,
		Config:  cycles.CycleConfig{PeersPerEmployee: 2},
	}
}

func newAssignService(store *fakeStore, rankings *fakeRankings, emps *fakeEmployees, cycleSrc *fakeCycles, notifier Notifier) *Service {
	svc := NewService(store, rankings, emps, cycleSrc, notifier, metrics.New())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestAssignFeedbackRequestsCreatesPerEmployee(t *testing.T) {
	store := newFakeStore()
	rankings := &fakeRankings{byEmployee: map[string][]ranking.PeerRanking{
		"a": rankedSet("b", "c", "d"),
		"b": rankedSet("a", "c"),
		"c": rankedSet("a"),
	}}
	emps := &fakeEmployees{refs: []org.EmployeeRef{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	notifier := &recordingNotifier{}
	svc := newAssignService(store, rankings, emps, &fakeCycles{cycle: testCycle()}, notifier)

	summary, err := svc.AssignFeedbackRequests(context.Background(), "cycle-1", 2, false)
	if err != nil {
		t.Fatalf("AssignFeedbackRequests: %v", err)
	}
	// a gets 2, b gets 2, c gets 1 (only one candidate).
	if summary.Created != 5 {
		t.Fatalf("expected 5 created, got %+v", summary)
	}
	if summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("unexpected failures or skips: %+v", summary)
	}
	if len(notifier.assigned) != 5 {
		t.Fatalf("expected 5 notifications, got %d", len(notifier.assigned))
	}
}

func TestAssignFeedbackRequestsIdempotentRerun(t *testing.T) {
	store := newFakeStore()
	rankings := &fakeRankings{byEmployee: map[string][]ranking.PeerRanking{
		"a": rankedSet("b", "c"),
	}}
	emps := &fakeEmployees{refs: []org.EmployeeRef{{ID: "a"}}}
	svc := newAssignService(store, rankings, emps, &fakeCycles{cycle: testCycle()}, nil)

	first, err := svc.AssignFeedbackRequests(context.Background(), "cycle-1", 2, false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Created != 2 {
		t.Fatalf("first run expected 2 created, got %+v", first)
	}

	second, err := svc.AssignFeedbackRequests(context.Background(), "cycle-1", 2, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Created != 0 || second.Skipped != 2 {
		t.Fatalf("rerun must create nothing: %+v", second)
	}
}

func TestAssignFeedbackRequestsMissingCycleIsFatal(t *testing.T) {
	svc := newAssignService(newFakeStore(), &fakeRankings{}, &fakeEmployees{}, &fakeCycles{err: cycles.ErrCycleNotFound}, nil)

	_, err := svc.AssignFeedbackRequests(context.Background(), "missing", 2, false)
	if !errors.Is(err, cycles.ErrCycleNotFound) {
		t.Fatalf("expected ErrCycleNotFound, got %v", err)
	}
}

func TestAssignFeedbackRequestsPartialFailureContinues(t *testing.T) {
	store := newFakeStore()
	store.failFor["bad"] = true
	rankings := &fakeRankings{byEmployee: map[string][]ranking.PeerRanking{
		"bad":  rankedSet("x"),
		"good": rankedSet("x"),
	}}
	emps := &fakeEmployees{refs: []org.EmployeeRef{{ID: "bad"}, {ID: "good"}, {ID: "x"}}}
	svc := newAssignService(store, rankings, emps, &fakeCycles{cycle: testCycle()}, nil)

	summary, err := svc.AssignFeedbackRequests(context.Background(), "cycle-1", 1, false)
	if err != nil {
		t.Fatalf("AssignFeedbackRequests: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected 1 failed employee, got %+v", summary)
	}
	if summary.Created != 1 {
		t.Fatalf("healthy employee should still get a request: %+v", summary)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", summary.Errors)
	}
}

func TestAssignFeedbackRequests360FromCycleType(t *testing.T) {
	store := newFakeStore()
	rankings := &fakeRankings{byEmployee: map[string][]ranking.PeerRanking{
		"a": rankedSet("b"),
	}}
	emps := &fakeEmployees{refs: []org.EmployeeRef{
		{ID: "a", ManagerID: "m"},
		{ID: "m", IsManager: true},
		{ID: "b", ManagerID: "m"},
	}}
	cycle := testCycle()
	cycle.Type = cycles.Type360
	svc := newAssignService(store, rankings, emps, &fakeCycles{cycle: cycle}, nil)

	summary, err := svc.AssignFeedbackRequests(context.Background(), "cycle-1", 1, false)
	if err != nil {
		t.Fatalf("AssignFeedbackRequests: %v", err)
	}
	if !summary.Include360 {
		t.Fatalf("360 cycle type must force include360: %+v", summary)
	}

	var managerReqs, upwardReqs int
	for _, req := range summary.Requests {
		switch req.RequestType {
		case RequestTypeManager:
			managerReqs++
		case RequestTypeUpward:
			upwardReqs++
		}
	}
	if managerReqs != 2 {
		t.Fatalf("expected manager requests from a and b, got %d", managerReqs)
	}
	if upwardReqs != 2 {
		t.Fatalf("expected upward requests from m to both reports, got %d", upwardReqs)
	}
}

func TestAssignFeedbackRequestsRecencyExclusion(t *testing.T) {
	store := newFakeStore()
	store.recent["a"] = map[string]struct{}{"b": {}}
	rankings := &fakeRankings{byEmployee: map[string][]ranking.PeerRanking{
		"a": rankedSet("b", "c"),
	}}
	emps := &fakeEmployees{refs: []org.EmployeeRef{{ID: "a"}}}
	svc := newAssignService(store, rankings, emps, &fakeCycles{cycle: testCycle()}, nil)

	summary, err := svc.AssignFeedbackRequests(context.Background(), "cycle-1", 1, false)
	if err != nil {
		t.Fatalf("AssignFeedbackRequests: %v", err)
	}
	if summary.Created != 1 {
		t.Fatalf("expected 1 created, got %+v", summary)
	}
	if summary.Requests[0].ProviderID != "c" {
		t.Fatalf("recent provider not excluded, got %s", summary.Requests[0].ProviderID)
	}
}

func TestUpdateRequestStatus(t *testing.T) {
	store := newFakeStore()
	id, _, err := store.CreateRequest(context.Background(), FeedbackRequest{
		RequesterID: "a", ProviderID: "b", CycleID: "cycle-1", Status: StatusPending,
	})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	svc := newAssignService(store, &fakeRankings{}, &fakeEmployees{}, &fakeCycles{cycle: testCycle()}, nil)

	if err := svc.UpdateRequestStatus(context.Background(), id, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.UpdateRequestStatus(context.Background(), "nope", StatusInProgress); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if err := svc.UpdateRequestStatus(context.Background(), id, StatusInProgress); err != nil {
		t.Fatalf("pending -> in_progress: %v", err)
	}
	if err := svc.UpdateRequestStatus(context.Background(), id, StatusCompleted); err != nil {
		t.Fatalf("in_progress -> completed: %v", err)
	}
	if err := svc.UpdateRequestStatus(context.Background(), id, StatusInProgress); !errors.Is(err, ErrStatusTransition) {
		t.Fatalf("completed must be terminal, got %v", err)
	}
}

func TestRecordResponse(t *testing.T) {
	store := newFakeStore()
	id, _, err := store.CreateRequest(context.Background(), FeedbackRequest{
		RequesterID: "a", ProviderID: "b", CycleID: "cycle-1", Status: StatusPending,
	})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	svc := newAssignService(store, &fakeRankings{}, &fakeEmployees{}, &fakeCycles{cycle: testCycle()}, nil)

	if _, err := svc.RecordResponse(context.Background(), id, "intruder", "text", nil); !errors.Is(err, ErrNotRequestOwner) {
		t.Fatalf("expected ErrNotRequestOwner, got %v", err)
	}

	rating := 4
	respID, err := svc.RecordResponse(context.Background(), id, "b", "solid collaborator", &rating)
	if err != nil {
		t.Fatalf("RecordResponse: %v", err)
	}
	if respID == "" {
		t.Fatal("expected response id")
	}
	if store.requests[id].Status != StatusCompleted {
		t.Fatalf("request not completed: %s", store.requests[id].Status)
	}

	if _, err := svc.RecordResponse(context.Background(), id, "b", "again", nil); !errors.Is(err, ErrAlreadyResponded) {
		t.Fatalf("expected ErrAlreadyResponded, got %v", err)
	}
}

func TestEscalateOverdueNotifiesProviders(t *testing.T) {
	store := newFakeStore()
	_, _, err := store.CreateRequest(context.Background(), FeedbackRequest{
		RequesterID: "a", ProviderID: "b", CycleID: "cycle-1", Status: StatusPending,
		DueDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	notifier := &recordingNotifier{}
	svc := newAssignService(store, &fakeRankings{}, &fakeEmployees{}, &fakeCycles{cycle: testCycle()}, notifier)

	count, err := svc.EscalateOverdue(context.Background())
	if err != nil {
		t.Fatalf("EscalateOverdue: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 escalation, got %d", count)
	}
	if len(notifier.overdue) != 1 || notifier.overdue[0].ReminderCount != 1 {
		t.Fatalf("overdue notification missing or reminder not bumped: %+v", notifier.overdue)
	}
}
