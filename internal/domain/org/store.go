package org

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListEmployees(ctx context.Context) ([]EmployeeRef, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(manager_id::text, ''), is_manager
    FROM employees
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []EmployeeRef
	for rows.Next() {
		var ref EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.ManagerID, &ref.IsManager); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(directory_id, ''), name, department, role,
           COALESCE(manager_id::text, ''), is_manager, created_at, updated_at
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&e.ID, &e.DirectoryID, &e.Name, &e.Department, &e.Role, &e.ManagerID, &e.IsManager, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) ListAll(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(directory_id, ''), name, department, role,
           COALESCE(manager_id::text, ''), is_manager, created_at, updated_at
    FROM employees
    ORDER BY name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.DirectoryID, &e.Name, &e.Department, &e.Role, &e.ManagerID, &e.IsManager, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) DirectReports(ctx context.Context, managerID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM employees WHERE manager_id = $1 ORDER BY id
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertFromDirectory applies a directory-sync batch in a single
// transaction. Employees are matched on directory_id; manager links are
// resolved in a second pass so ordering inside the batch does not matter.
func (s *Store) UpsertFromDirectory(ctx context.Context, entries []DirectoryEntry) (int, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	upserted := 0
	for _, entry := range entries {
		if entry.DirectoryID == "" || entry.Name == "" {
			continue
		}
		tag, err := tx.Exec(ctx, `
      INSERT INTO employees (directory_id, name, department, role, is_manager)
      VALUES ($1, $2, $3, $4, $5)
      ON CONFLICT (directory_id) DO UPDATE
      SET name = EXCLUDED.name,
          department = EXCLUDED.department,
          role = EXCLUDED.role,
          is_manager = EXCLUDED.is_manager,
          updated_at = now()
    `, entry.DirectoryID, entry.Name, entry.Department, entry.Role, entry.IsManager)
		if err != nil {
			return 0, err
		}
		upserted += int(tag.RowsAffected())
	}

	for _, entry := range entries {
		if entry.DirectoryID == "" {
			continue
		}
		if entry.ManagerDirectoryID == "" {
			if _, err := tx.Exec(ctx, `
        UPDATE employees SET manager_id = NULL, updated_at = now()
        WHERE directory_id = $1 AND manager_id IS NOT NULL
      `, entry.DirectoryID); err != nil {
				return 0, err
			}
			continue
		}
		if _, err := tx.Exec(ctx, `
      UPDATE employees
      SET manager_id = m.id, updated_at = now()
      FROM employees m
      WHERE employees.directory_id = $1 AND m.directory_id = $2
    `, entry.DirectoryID, entry.ManagerDirectoryID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return upserted, nil
}
