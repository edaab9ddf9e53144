// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package profile (Postgres) implements the storage layer for member identity
records.

# Schema Table Mapping
  - users.profile: Role-shaped identity data, one row per principal.
*/
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/database/schema"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/pkg/pagination"
	"github.com/nexusportal/nexus/pkg/pointer"
)

// # Profile Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindByUserID retrieves a profile record by its owning principal.

Description: Point-read on users.profile. The student section is materialized
only for student rows.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Hydrated entity
  - error: apperr.ProfileNotFound or database errors
*/
func (repository *PostgresRepository) FindByUserID(context context.Context, userID string) (*Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.UserProfile.UserID, schema.UserProfile.Name, schema.UserProfile.Email,
		schema.UserProfile.Role, schema.UserProfile.RollNumber, schema.UserProfile.Batch,
		schema.UserProfile.Phone, schema.UserProfile.CreatedAt, schema.UserProfile.UpdatedAt,
		schema.UserProfile.Table,
		schema.UserProfile.UserID,
	)

	record, err := scanProfile(repository.pool.QueryRow(context, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ProfileNotFound()
		}
		return nil, fmt.Errorf("postgres_profile_store_find_failed: %w", err)
	}

	return record, nil
}

/*
ListStudents lists student profiles ordered by name.

Description: The role filter lives in SQL so staff rows can never leak into
the directory. An optional batch filter narrows to one cohort.

Parameters:
  - context: context.Context
  - batch: string (Empty means every batch)
  - params: pagination.Params

Returns:
  - []Profile: Page of student profiles
  - int: Total matching students
  - error: Retrieval errors
*/
func (repository *PostgresRepository) ListStudents(context context.Context, batch string, params pagination.Params) ([]Profile, int, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE %s = $1 AND ($2 = '' OR %s = $2)`,
		schema.UserProfile.Table,
		schema.UserProfile.Role, schema.UserProfile.Batch,
	)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, string(sec.RoleStudent), batch).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_store_count_failed: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND ($2 = '' OR %s = $2)
		ORDER BY %s ASC, %s ASC
		LIMIT $3 OFFSET $4`,
		schema.UserProfile.UserID, schema.UserProfile.Name, schema.UserProfile.Email,
		schema.UserProfile.Role, schema.UserProfile.RollNumber, schema.UserProfile.Batch,
		schema.UserProfile.Phone, schema.UserProfile.CreatedAt, schema.UserProfile.UpdatedAt,
		schema.UserProfile.Table,
		schema.UserProfile.Role, schema.UserProfile.Batch,
		schema.UserProfile.Name, schema.UserProfile.UserID,
	)

	rows, err := repository.pool.Query(context, listQuery, string(sec.RoleStudent), batch, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_store_list_failed: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, params.Limit)
	for rows.Next() {
		record, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_profile_store_scan_failed: %w", err)
		}
		profiles = append(profiles, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_store_rows_failed: %w", err)
	}

	return profiles, total, nil
}

/*
Batches returns the batch labels present across student profiles.

Description: DISTINCT at the database; the service still deduplicates and
sorts, so callers get stable output regardless of backing store.

Parameters:
  - context: context.Context

Returns:
  - []string: Batch labels
  - error: Retrieval errors
*/
func (repository *PostgresRepository) Batches(context context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s
		FROM %s
		WHERE %s = $1 AND %s IS NOT NULL`,
		schema.UserProfile.Batch,
		schema.UserProfile.Table,
		schema.UserProfile.Role, schema.UserProfile.Batch,
	)

	rows, err := repository.pool.Query(context, query, string(sec.RoleStudent))
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_store_batches_failed: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("postgres_profile_store_batches_scan_failed: %w", err)
		}
		labels = append(labels, label)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_profile_store_batches_rows_failed: %w", err)
	}

	return labels, nil
}

/*
UpdateContact persists changes to a profile's mutable contact fields.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) UpdateContact(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4
		WHERE %s = $1`,
		schema.UserProfile.Table,
		schema.UserProfile.Name, schema.UserProfile.Phone, schema.UserProfile.UpdatedAt,
		schema.UserProfile.UserID,
	)

	var phone any
	if profile.Student != nil && profile.Student.Phone != "" {
		phone = profile.Student.Phone
	}

	_, err := repository.pool.Exec(context, query,
		profile.UID,
		profile.Name,
		phone,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_store_update_failed: %w", err)
	}

	return nil
}

// scanProfile hydrates one users.profile row, materializing the student
// section only for student roles.
func scanProfile(row pgx.Row) (*Profile, error) {
	record := &Profile{}
	var rollNumber, batch, phone *string

	err := row.Scan(
		&record.UID,
		&record.Name,
		&record.Email,
		&record.Role,
		&rollNumber,
		&batch,
		&phone,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if record.Role == sec.RoleStudent {
		record.Student = &StudentDetails{
			RollNumber: pointer.Val(rollNumber),
			Batch:      pointer.Val(batch),
			Phone:      pointer.Val(phone),
		}
	}

	return record, nil
}
