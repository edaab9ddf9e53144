// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/pkg/pagination"
	"github.com/nexusportal/nexus/pkg/slice"
)

// # Service Layer

// Service orchestrates business logic for profile resolution and the
// staff-facing student directory.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// # Profile Resolution

/*
Resolve retrieves the profile owned by a principal.

Description: Point-read by owner ID. A verified principal without a profile
row (interrupted registration) surfaces as PROFILE_NOT_FOUND rather than an
empty profile.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: The hydrated profile
  - error: apperr.ProfileNotFound or execution failures
*/
func (service *Service) Resolve(context context.Context, userID string) (*Profile, error) {
	record, err := service.repository.FindByUserID(context, userID)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateContactInput defines the mutable subset of profile fields.
//
// Phone applies only to student profiles; a staff update carrying it is
// silently ignored.
type UpdateContactInput struct {
	Name  *string
	Phone *string
}

/*
UpdateContact applies a partial set of changes to a member's profile.

Description: Fetches the existing profile state, overlays provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateContactInput

Returns:
  - *Profile: The updated profile
  - error: Update or storage failures
*/
func (service *Service) UpdateContact(context context.Context, userID string, input UpdateContactInput) (*Profile, error) {
	record, err := service.repository.FindByUserID(context, userID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Name != nil {
		record.Name = *input.Name
	}

	// Apply delta updates
	if input.Phone != nil && record.Role == sec.RoleStudent && record.Student != nil {
		record.Student.Phone = *input.Phone
	}

	record.UpdatedAt = time.Now()

	if err := service.repository.UpdateContact(context, record); err != nil {
		return nil, fmt.Errorf("profile_service_update_failed: %w", err)
	}

	service.logger.Info("profile_contact_updated", slog.String("user_id", userID))

	return record, nil
}

// # Student Directory

/*
ListStudents lists student profiles for the staff dashboard.

Description: Role-filtered at the storage layer; staff rows never appear.
Supports cohort filtering by batch label and standard page-based navigation.

Parameters:
  - context: context.Context
  - batch: string (Empty means every batch)
  - params: pagination.Params

Returns:
  - []Profile: Page of student profiles
  - pagination.Meta: Navigation metadata
  - error: QueryFailed on storage errors
*/
func (service *Service) ListStudents(context context.Context, batch string, params pagination.Params) ([]Profile, pagination.Meta, error) {
	students, total, err := service.repository.ListStudents(context, batch, params)
	if err != nil {
		return nil, pagination.Meta{}, apperr.QueryFailed(err)
	}

	return students, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Batches returns the distinct batch labels across all student profiles.

Description: Deduplicates and sorts ascending so dashboard filters render a
stable cohort list.

Parameters:
  - context: context.Context

Returns:
  - []string: Sorted distinct batch labels
  - error: QueryFailed on storage errors
*/
func (service *Service) Batches(context context.Context) ([]string, error) {
	labels, err := service.repository.Batches(context)
	if err != nil {
		return nil, apperr.QueryFailed(err)
	}

	distinct := slice.Unique(labels)
	sort.Strings(distinct)

	if distinct == nil {
		distinct = []string{}
	}

	return distinct, nil
}
