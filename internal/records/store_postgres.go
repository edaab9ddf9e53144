// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package records

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexusportal/nexus/internal/platform/database/schema"
)

// # Certificate Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a certificate record into the core.certificate table.

Description: uploadedat is assigned by the database clock via RETURNING, so
every record carries a server-authoritative timestamp regardless of client
clock skew.

Parameters:
  - context: context.Context
  - certificate: *Certificate

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, certificate *Certificate) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s`,
		schema.CoreCertificate.Table,
		schema.CoreCertificate.ID, schema.CoreCertificate.StudentID, schema.CoreCertificate.Name,
		schema.CoreCertificate.ObjectKey, schema.CoreCertificate.ContentType, schema.CoreCertificate.SizeBytes,
		schema.CoreCertificate.StudentName, schema.CoreCertificate.StudentEmail,
		schema.CoreCertificate.RollNumber, schema.CoreCertificate.Batch,
		schema.CoreCertificate.UploadedAt,
	)

	err := repository.pool.QueryRow(context, query,
		certificate.ID,
		certificate.StudentID,
		certificate.Name,
		certificate.ObjectKey,
		certificate.ContentType,
		certificate.SizeBytes,
		certificate.Owner.Name,
		certificate.Owner.Email,
		certificate.Owner.RollNumber,
		certificate.Owner.Batch,
	).Scan(&certificate.UploadedAt)

	if err != nil {
		return fmt.Errorf("postgres_certificate_repo_create_failed: %w", err)
	}

	return nil
}

/*
ListByStudent lists a student's certificates in storage order.

Description: Ordering is by the time-sortable primary key, which matches
insertion order. Presentation ordering is a service concern.

Parameters:
  - context: context.Context
  - studentID: string

Returns:
  - []Certificate: Records in insertion order
  - error: Retrieval errors
*/
func (repository *PostgresRepository) ListByStudent(context context.Context, studentID string) ([]Certificate, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s,
		       %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC`,
		schema.CoreCertificate.ID, schema.CoreCertificate.StudentID, schema.CoreCertificate.Name,
		schema.CoreCertificate.ObjectKey, schema.CoreCertificate.ContentType, schema.CoreCertificate.SizeBytes,
		schema.CoreCertificate.StudentName, schema.CoreCertificate.StudentEmail,
		schema.CoreCertificate.RollNumber, schema.CoreCertificate.Batch, schema.CoreCertificate.UploadedAt,
		schema.CoreCertificate.Table,
		schema.CoreCertificate.StudentID,
		schema.CoreCertificate.ID,
	)

	rows, err := repository.pool.Query(context, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("postgres_certificate_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var certificates []Certificate
	for rows.Next() {
		var certificate Certificate
		err := rows.Scan(
			&certificate.ID,
			&certificate.StudentID,
			&certificate.Name,
			&certificate.ObjectKey,
			&certificate.ContentType,
			&certificate.SizeBytes,
			&certificate.Owner.Name,
			&certificate.Owner.Email,
			&certificate.Owner.RollNumber,
			&certificate.Owner.Batch,
			&certificate.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_certificate_repo_scan_failed: %w", err)
		}
		certificates = append(certificates, certificate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_certificate_repo_rows_failed: %w", err)
	}

	return certificates, nil
}
