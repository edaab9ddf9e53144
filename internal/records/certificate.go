// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package records manages student certificate documents.

It covers the full document lifecycle: multipart upload into object storage,
metadata persistence, and retrieval with freshly presigned download links.

# Architecture

  - Entities: Certificate with a denormalized owner snapshot, so staff views
    render without joining the profile table.
  - Storage: File bytes live in an S3-compatible bucket; only metadata and the
    object key are kept in PostgreSQL.
  - Ordering: A student's own listing is newest-first with records missing a
    timestamp sorted last; the staff view preserves storage order.

Upload is blob-first: the object is written before its metadata row, so an
interrupted upload can leave an orphan blob but never a dangling record.
Records are insert-only: once filed, a certificate is never updated or
deleted.
*/
package records

import (
	"time"
)

// # Domain Entities

// OwnerSnapshot is the denormalized profile state captured at upload time.
//
// It is intentionally not refreshed when the profile changes later; the
// snapshot documents who the student was when the certificate was filed.
type OwnerSnapshot struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"roll_number"`
	Batch      string `json:"batch"`
}

// Certificate represents one uploaded certificate document.
type Certificate struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"student_id"`
	Name        string        `json:"name"`
	ObjectKey   string        `json:"-"` // Storage-internal; clients get presigned URLs.
	ContentType string        `json:"content_type"`
	SizeBytes   int64         `json:"size_bytes"`
	Owner       OwnerSnapshot `json:"owner"`
	UploadedAt  time.Time     `json:"uploaded_at"`

	// URL is a short-lived presigned download link, minted fresh on every
	// read and never persisted.
	URL string `json:"url,omitempty"`
}

// # Field Identifiers

const (
	FieldFile      = "file"
	FieldStudentID = "student_id"
)
