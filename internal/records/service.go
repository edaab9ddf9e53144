// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package records

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/constants"
	"github.com/nexusportal/nexus/internal/platform/objectstore"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/internal/users/profile"
	"github.com/nexusportal/nexus/pkg/slug"
	"github.com/nexusportal/nexus/pkg/uuidv7"
)

// # Contracts

// ProfileSource resolves the owner profile whose snapshot is denormalized
// onto every certificate at upload time.
type ProfileSource interface {
	Resolve(context context.Context, userID string) (*profile.Profile, error)
}

// # Service Layer

// Service orchestrates the certificate document lifecycle.
type Service struct {
	repository Repository
	blobs      objectstore.BlobStore
	profiles   ProfileSource
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	repository Repository,
	blobs objectstore.BlobStore,
	profiles ProfileSource,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository: repository,
		blobs:      blobs,
		profiles:   profiles,
		logger:     logger,
	}
}

// # Upload Flow

// UploadInput carries one multipart certificate upload.
type UploadInput struct {
	StudentID   string
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader

	// Progress, when non-nil, receives cumulative transfer events as the
	// file streams into object storage.
	Progress objectstore.ProgressFunc
}

/*
Upload stores a certificate file and its metadata record.

Description: Blob-first sequence. The owner profile is snapshotted, the file
streams into object storage under a collision-proof key, and only then is the
metadata row written. A failure between the two steps leaves an orphan blob,
never a dangling record; orphans are not cleaned up automatically.

Parameters:
  - context: context.Context
  - input: UploadInput

Returns:
  - *Certificate: Stored record with a fresh presigned URL
  - err: ValidationError, ProfileNotFound, UploadFailed, or storage errors
*/
func (service *Service) Upload(context context.Context, input UploadInput) (*Certificate, error) {

	// ── 1. Input Constraints ──────────────────────────────────────────────
	if input.SizeBytes <= 0 {
		return nil, apperr.ValidationError("Uploaded file is empty")
	}
	if input.SizeBytes > constants.MaxCertificateSize {
		return nil, apperr.ValidationError(
			fmt.Sprintf("File exceeds the %d MB limit", constants.MaxCertificateSize>>20))
	}

	// ── 2. Owner Snapshot ─────────────────────────────────────────────────
	owner, err := service.profiles.Resolve(context, input.StudentID)
	if err != nil {
		return nil, err
	}
	if owner.Role != sec.RoleStudent || owner.Student == nil {
		return nil, apperr.Forbidden("Only students can file certificates")
	}

	// ── 3. Blob Write ─────────────────────────────────────────────────────
	// Millisecond prefix keeps keys collision-proof and naturally ordered
	// within a student's namespace.
	key := fmt.Sprintf("%s/%s/certificates/%d_%s",
		constants.CertificateKeyPrefix,
		input.StudentID,
		time.Now().UnixMilli(),
		slug.FileName(input.FileName),
	)

	if err := service.blobs.Put(context, key, input.Body, input.SizeBytes, input.ContentType, input.Progress); err != nil {
		return nil, apperr.UploadFailed(err)
	}

	// ── 4. Metadata Write ─────────────────────────────────────────────────
	certificate := &Certificate{
		ID:          uuidv7.New(),
		StudentID:   input.StudentID,
		Name:        input.FileName,
		ObjectKey:   key,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		Owner: OwnerSnapshot{
			Name:       owner.Name,
			Email:      owner.Email,
			RollNumber: owner.Student.RollNumber,
			Batch:      owner.Student.Batch,
		},
	}

	if err := service.repository.Create(context, certificate); err != nil {
		// The blob is already durable; the record is not. Surface the orphan
		// for operators instead of attempting a compensating delete.
		service.logger.Warn("certificate_orphan_blob",
			slog.String("object_key", key),
			slog.String("student_id", input.StudentID),
		)
		return nil, apperr.UploadFailed(err)
	}

	if err := service.presign(context, certificate); err != nil {
		return nil, err
	}

	service.logger.Info("certificate_uploaded",
		slog.String("certificate_id", certificate.ID),
		slog.String("student_id", input.StudentID),
		slog.Int64("size_bytes", input.SizeBytes),
	)

	return certificate, nil
}

// # Retrieval

/*
ListOwn lists a student's certificates for their dashboard.

Description: Newest-first by upload time. Records whose timestamp never
resolved (the zero value) sort last instead of masquerading as newest.
Download URLs are presigned fresh on every call.

Parameters:
  - context: context.Context
  - studentID: string

Returns:
  - []Certificate: Sorted records with fresh URLs
  - err: QueryFailed on storage errors
*/
func (service *Service) ListOwn(context context.Context, studentID string) ([]Certificate, error) {
	certificates, err := service.repository.ListByStudent(context, studentID)
	if err != nil {
		return nil, apperr.QueryFailed(err)
	}

	sort.SliceStable(certificates, func(i, j int) bool {
		left, right := certificates[i], certificates[j]
		if left.UploadedAt.IsZero() {
			return false
		}
		if right.UploadedAt.IsZero() {
			return true
		}
		return left.UploadedAt.After(right.UploadedAt)
	})

	if err := service.presignAll(context, certificates); err != nil {
		return nil, err
	}

	return certificates, nil
}

/*
ListForStudent lists one student's certificates for the staff view.

Description: Storage order is preserved; the staff table renders records as
they were filed.

Parameters:
  - context: context.Context
  - studentID: string

Returns:
  - []Certificate: Records in storage order with fresh URLs
  - err: QueryFailed on storage errors
*/
func (service *Service) ListForStudent(context context.Context, studentID string) ([]Certificate, error) {
	certificates, err := service.repository.ListByStudent(context, studentID)
	if err != nil {
		return nil, apperr.QueryFailed(err)
	}

	if err := service.presignAll(context, certificates); err != nil {
		return nil, err
	}

	return certificates, nil
}

// presign mints a fresh short-lived download URL onto the certificate.
func (service *Service) presign(context context.Context, certificate *Certificate) error {
	url, err := service.blobs.PresignGet(context, certificate.ObjectKey, constants.CertificateURLTTL)
	if err != nil {
		return apperr.QueryFailed(err)
	}
	certificate.URL = url
	return nil
}

func (service *Service) presignAll(context context.Context, certificates []Certificate) error {
	for index := range certificates {
		if err := service.presign(context, &certificates[index]); err != nil {
			return err
		}
	}
	return nil
}
