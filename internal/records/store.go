// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package records

import (
	"context"
)

// # Certificate Data Access

// Repository defines the persistence contract for certificate metadata.
type Repository interface {

	/*
		Create persists a certificate record and stamps its upload time.

		Description: The uploadedat value is assigned by the database, never
		by the caller, and is written back onto the entity.

		Parameters:
		  - context: context.Context
		  - certificate: *Certificate

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, certificate *Certificate) error

	/*
		ListByStudent lists every certificate owned by a student in storage
		order.

		Parameters:
		  - context: context.Context
		  - studentID: string

		Returns:
		  - []Certificate: Records in insertion order
		  - error: Retrieval errors
	*/
	ListByStudent(context context.Context, studentID string) ([]Certificate, error)
}
