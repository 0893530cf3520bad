package org

import "context"

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListEmployees(ctx context.Context) ([]EmployeeRef, error) {
	return s.store.ListEmployees(ctx)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]Employee, error) {
	return s.store.ListAll(ctx, limit, offset)
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) DirectReports(ctx context.Context, managerID string) ([]string, error) {
	return s.store.DirectReports(ctx, managerID)
}

func (s *Service) SyncDirectory(ctx context.Context, entries []DirectoryEntry) (int, error) {
	return s.store.UpsertFromDirectory(ctx, entries)
}
