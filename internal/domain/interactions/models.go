package interactions

import "time"

const (
	TypeChat    = "chat"
	TypeMeeting = "meeting"
	TypeTask    = "task"
	TypeFile    = "file"
)

var KnownTypes = []string{TypeChat, TypeMeeting, TypeTask, TypeFile}

// Interaction is one accumulated row of the ledger: all activity of one type
// between an employee and a peer, as seen from the employee's side.
type Interaction struct {
	EmployeeID        string    `json:"employeeId"`
	PeerID            string    `json:"peerId"`
	Type              string    `json:"type"`
	Count             int       `json:"count"`
	TotalMinutes      int       `json:"totalMinutes"`
	LastInteractionAt time.Time `json:"lastInteractionAt"`
}
