// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package profile handles the role-shaped identity records of portal members.

It provides resolution of the caller's own profile, the staff-facing student
directory, and the distinct batch labels used for cohort filtering.

# Architecture

  - Entities: Profile with an optional StudentDetails section. The section is
    present exactly when the role is student; staff profiles never carry it.
  - Domain: Profiles are created by the auth registration sequence; this
    package owns every read and the narrow contact update.
  - Directory: Student listing is role-filtered at the storage layer, so staff
    rows can never leak into dashboard queries.
*/
package profile

import (
	"context"
	"time"

	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/pkg/pagination"
)

// # Domain Entities

// StudentDetails is the student-only section of a profile.
type StudentDetails struct {
	RollNumber string `json:"roll_number"`
	Batch      string `json:"batch"`
	Phone      string `json:"phone"`
}

// Profile represents the portal identity of a member.
//
// Student is nil for staff profiles; its presence or absence is decided by
// Role alone, never independently.
type Profile struct {
	UID       string          `json:"uid"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      sec.Role        `json:"role"`
	Student   *StudentDetails `json:"student,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// # Repository Contracts

// Repository defines the persistence contract for profile records.
type Repository interface {
	/*
		FindByUserID retrieves the profile owned by a specific principal.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.ProfileNotFound or storage failures
	*/
	FindByUserID(context context.Context, userID string) (*Profile, error)

	/*
		ListStudents lists student profiles ordered by name, optionally
		filtered to one batch.

		Parameters:
		  - context: context.Context
		  - batch: string (Empty means every batch)
		  - params: pagination.Params

		Returns:
		  - []Profile: Page of student profiles
		  - int: Total matching students
		  - error: Retrieval errors
	*/
	ListStudents(context context.Context, batch string, params pagination.Params) ([]Profile, int, error)

	/*
		Batches returns the batch labels present across student profiles.

		Parameters:
		  - context: context.Context

		Returns:
		  - []string: Batch labels (may contain duplicates)
		  - error: Retrieval errors
	*/
	Batches(context context.Context) ([]string, error)

	/*
		UpdateContact modifies the mutable contact fields of a profile.

		Parameters:
		  - context: context.Context
		  - profile: *Profile (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	UpdateContact(context context.Context, profile *Profile) error
}

// # Field Identifiers

const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldBatch = "batch"
)
