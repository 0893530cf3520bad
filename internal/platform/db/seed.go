package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"peerpulse/internal/domain/auth"
	"peerpulse/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	adminEmployeeID, err := ensureEmployee(ctx, pool, "seed-admin", cfg.SeedOrgName+" Admin", "Operations", "Administrator", "", true)
	if err != nil {
		return err
	}

	if err := ensureUser(ctx, pool, adminEmployeeID, cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin); err != nil {
		return err
	}

	if cfg.SeedDemoData {
		if err := seedDemoData(ctx, pool); err != nil {
			return err
		}
	}
	return nil
}

func ensureEmployee(ctx context.Context, pool *pgxpool.Pool, directoryID, name, department, role, managerID string, isManager bool) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE directory_id = $1", directoryID).Scan(&id)
	if err == nil {
		return id, nil
	}

	var mgr any
	if managerID != "" {
		mgr = managerID
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO employees (directory_id, name, department, role, manager_id, is_manager)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, directoryID, name, department, role, mgr, isManager).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, employeeID, email, password, role string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (employee_id, email, password_hash, role, status)
    VALUES ($1, $2, $3, $4, 'active')
  `, employeeID, email, hash, role)
	return err
}

// seedDemoData builds a small reporting tree with enough interaction
// history to produce non-trivial rankings. Idempotent: rerunning leaves
// existing rows in place.
func seedDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	managerID, err := ensureEmployee(ctx, pool, "demo-mgr-1", "Dana Reyes", "Engineering", "Engineering Manager", "", true)
	if err != nil {
		return err
	}

	team := []struct {
		directoryID string
		name        string
		role        string
	}{
		{"demo-eng-1", "Alex Chen", "Software Engineer"},
		{"demo-eng-2", "Priya Nair", "Software Engineer"},
		{"demo-eng-3", "Sam Okafor", "Senior Engineer"},
		{"demo-eng-4", "Mira Kovacs", "QA Engineer"},
	}

	ids := make([]string, 0, len(team))
	for _, member := range team {
		id, err := ensureEmployee(ctx, pool, member.directoryID, member.name, "Engineering", member.role, managerID, false)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	interactions := []struct {
		a, b    int
		itype   string
		count   int
		minutes int
		daysAgo int
	}{
		{0, 1, "chat", 24, 0, 2},
		{0, 1, "meeting", 6, 180, 5},
		{0, 2, "task", 4, 0, 10},
		{1, 2, "file", 9, 0, 3},
		{1, 3, "chat", 12, 0, 20},
		{2, 3, "meeting", 3, 90, 45},
	}

	for _, it := range interactions {
		occurred := time.Now().AddDate(0, 0, -it.daysAgo)
		for _, pair := range [][2]string{{ids[it.a], ids[it.b]}, {ids[it.b], ids[it.a]}} {
			if _, err := pool.Exec(ctx, `
        INSERT INTO interactions (employee_id, peer_id, interaction_type, interaction_count, total_minutes, last_interaction_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (employee_id, peer_id, interaction_type) DO NOTHING
      `, pair[0], pair[1], it.itype, it.count, it.minutes, occurred); err != nil {
				return err
			}
		}
	}
	return nil
}
