package org

import "time"

type Employee struct {
	ID          string    `json:"id"`
	DirectoryID string    `json:"directoryId,omitempty"`
	Name        string    `json:"name"`
	Department  string    `json:"department"`
	Role        string    `json:"role"`
	ManagerID   string    `json:"managerId,omitempty"`
	IsManager   bool      `json:"isManager"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EmployeeRef is the projection the assignment engine works with: identity
// plus the two hierarchy facts it needs.
type EmployeeRef struct {
	ID        string
	ManagerID string
	IsManager bool
}

// DirectoryEntry is one record from an external directory sync.
type DirectoryEntry struct {
	DirectoryID        string `json:"directoryId"`
	Name               string `json:"name"`
	Department         string `json:"department"`
	Role               string `json:"role"`
	ManagerDirectoryID string `json:"managerDirectoryId,omitempty"`
	IsManager          bool   `json:"isManager"`
}
