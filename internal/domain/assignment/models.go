package assignment

import "time"

type FeedbackRequest struct {
	ID            string     `json:"id"`
	RequesterID   string     `json:"requesterId"`
	ProviderID    string     `json:"providerId"`
	CycleID       string     `json:"cycleId"`
	RequestType   string     `json:"requestType"`
	Status        string     `json:"status"`
	AssignedAt    time.Time  `json:"assignedAt"`
	DueDate       time.Time  `json:"dueDate"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	ReminderCount int        `json:"reminderCount"`
}

type FeedbackResponse struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"requestId"`
	ProviderID  string    `json:"providerId"`
	RequesterID string    `json:"requesterId"`
	Content     string    `json:"content"`
	Rating      *int      `json:"rating,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Summary is what a batch assignment run returns: every request it created
// plus per-outcome counts. A partial failure shows up here instead of
// aborting the run.
type Summary struct {
	CycleID    string            `json:"cycleId"`
	Employees  int               `json:"employees"`
	Created    int               `json:"created"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	Requests   []FeedbackRequest `json:"requests"`
	Errors     []string          `json:"errors,omitempty"`
	Include360 bool              `json:"include360"`
}
