package services

import (
	"context"
	"database/sql"
	"fmt"
)

// HealthService probes the credential store.
type HealthService struct {
	db *sql.DB
}

func NewHealthService(db *sql.DB) *HealthService {
	return &HealthService{db: db}
}

// Ping runs a trivial query and returns its result, which is always 1 when
// the store is reachable.
func (s *HealthService) Ping(ctx context.Context) (int, error) {
	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1 AS result").Scan(&result); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
