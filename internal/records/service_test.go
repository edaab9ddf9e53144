// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Tests for the certificate service covering the blob-first upload sequence,
its partial-failure modes, dashboard ordering, and presigned URL minting.
*/
package records

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/objectstore"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/internal/users/profile"
)

// # Fakes

type fakeRepository struct {
	records    map[string][]Certificate
	failCreate error
	failList   error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: map[string][]Certificate{}}
}

func (repo *fakeRepository) Create(_ context.Context, certificate *Certificate) error {
	if repo.failCreate != nil {
		return repo.failCreate
	}
	certificate.UploadedAt = time.Now().UTC()
	repo.records[certificate.StudentID] = append(repo.records[certificate.StudentID], *certificate)
	return nil
}

func (repo *fakeRepository) ListByStudent(_ context.Context, studentID string) ([]Certificate, error) {
	if repo.failList != nil {
		return nil, repo.failList
	}
	stored := repo.records[studentID]
	copied := make([]Certificate, len(stored))
	copy(copied, stored)
	return copied, nil
}

type fakeBlobStore struct {
	blobs   map[string][]byte
	failPut error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (store *fakeBlobStore) Put(_ context.Context, key string, reader io.Reader, size int64, _ string, progress objectstore.ProgressFunc) error {
	if store.failPut != nil {
		return store.failPut
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	store.blobs[key] = content
	if progress != nil {
		progress(size, size)
	}
	return nil
}

func (store *fakeBlobStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.test/" + key + "?signature=stub", nil
}

type fakeProfiles struct {
	profiles map[string]*profile.Profile
}

func (source *fakeProfiles) Resolve(_ context.Context, userID string) (*profile.Profile, error) {
	record, ok := source.profiles[userID]
	if !ok {
		return nil, apperr.ProfileNotFound()
	}
	return record, nil
}

// # Fixture

type fixture struct {
	service  *Service
	repo     *fakeRepository
	blobs    *fakeBlobStore
	profiles *fakeProfiles
}

func newFixture() *fixture {
	repo := newFakeRepository()
	blobs := newFakeBlobStore()
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"stu-1": {
			UID:   "stu-1",
			Name:  "Priya Nair",
			Email: "priya@example.edu",
			Role:  sec.RoleStudent,
			Student: &profile.StudentDetails{
				RollNumber: "CS-1042",
				Batch:      "2024",
				Phone:      "555-0101",
			},
		},
		"staff-1": {
			UID:   "staff-1",
			Name:  "Dean Okafor",
			Email: "dean@example.edu",
			Role:  sec.RoleStaff,
		},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		service:  NewService(repo, blobs, profiles, logger),
		repo:     repo,
		blobs:    blobs,
		profiles: profiles,
	}
}

func (f *fixture) uploadInput(fileName string, content string) UploadInput {
	return UploadInput{
		StudentID:   "stu-1",
		FileName:    fileName,
		ContentType: "application/pdf",
		SizeBytes:   int64(len(content)),
		Body:        bytes.NewReader([]byte(content)),
	}
}

// # Upload

func TestService_Upload_StoresBlobThenMetadata(t *testing.T) {
	f := newFixture()

	record, err := f.service.Upload(context.Background(), f.uploadInput("Semester 1 Marksheet.PDF", "%PDF-1.7 stub"))
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "stu-1", record.StudentID)
	assert.Equal(t, "Semester 1 Marksheet.PDF", record.Name)
	assert.True(t, strings.HasPrefix(record.ObjectKey, "students/stu-1/certificates/"))
	assert.True(t, strings.HasSuffix(record.ObjectKey, "semester-1-marksheet.pdf"))
	assert.Contains(t, record.URL, record.ObjectKey)

	// Snapshot of the owner at upload time.
	assert.Equal(t, "Priya Nair", record.Owner.Name)
	assert.Equal(t, "priya@example.edu", record.Owner.Email)
	assert.Equal(t, "CS-1042", record.Owner.RollNumber)
	assert.Equal(t, "2024", record.Owner.Batch)

	assert.Equal(t, []byte("%PDF-1.7 stub"), f.blobs.blobs[record.ObjectKey])
	require.Len(t, f.repo.records["stu-1"], 1)
}

func TestService_Upload_ReportsProgress(t *testing.T) {
	f := newFixture()
	input := f.uploadInput("transcript.pdf", "content")

	var transferred, total int64
	input.Progress = func(bytesTransferred, totalBytes int64) {
		transferred, total = bytesTransferred, totalBytes
	}

	_, err := f.service.Upload(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, input.SizeBytes, transferred)
	assert.Equal(t, input.SizeBytes, total)
}

func TestService_Upload_RejectsOversizedFile(t *testing.T) {
	f := newFixture()
	input := f.uploadInput("huge.pdf", "x")
	input.SizeBytes = 5<<20 + 1

	_, err := f.service.Upload(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))

	// Nothing was written anywhere.
	assert.Empty(t, f.blobs.blobs)
	assert.Empty(t, f.repo.records["stu-1"])
}

func TestService_Upload_RejectsEmptyFile(t *testing.T) {
	f := newFixture()
	input := f.uploadInput("empty.pdf", "")

	_, err := f.service.Upload(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestService_Upload_StaffCannotFile(t *testing.T) {
	f := newFixture()
	input := f.uploadInput("cert.pdf", "content")
	input.StudentID = "staff-1"

	_, err := f.service.Upload(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))
	assert.Empty(t, f.blobs.blobs)
}

func TestService_Upload_BlobFailureWritesNoMetadata(t *testing.T) {
	f := newFixture()
	f.blobs.failPut = errors.New("bucket unreachable")

	_, err := f.service.Upload(context.Background(), f.uploadInput("cert.pdf", "content"))
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UPLOAD_FAILED"))
	assert.Empty(t, f.repo.records["stu-1"])
}

func TestService_Upload_MetadataFailureLeavesOrphanBlob(t *testing.T) {
	f := newFixture()
	f.repo.failCreate = errors.New("connection reset")

	_, err := f.service.Upload(context.Background(), f.uploadInput("cert.pdf", "content"))
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UPLOAD_FAILED"))

	// The blob stays behind; no record points at it.
	assert.Len(t, f.blobs.blobs, 1)
	assert.Empty(t, f.repo.records["stu-1"])
}

// # Retrieval

func TestService_ListOwn_NewestFirstWithZeroTimestampsLast(t *testing.T) {
	f := newFixture()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	f.repo.records["stu-1"] = []Certificate{
		{ID: "c-old", StudentID: "stu-1", ObjectKey: "students/stu-1/certificates/1_old.pdf", UploadedAt: base},
		{ID: "c-new", StudentID: "stu-1", ObjectKey: "students/stu-1/certificates/3_new.pdf", UploadedAt: base.Add(2 * time.Hour)},
		{ID: "c-mid", StudentID: "stu-1", ObjectKey: "students/stu-1/certificates/2_mid.pdf", UploadedAt: base.Add(time.Hour)},
		{ID: "c-unknown", StudentID: "stu-1", ObjectKey: "students/stu-1/certificates/0_unknown.pdf"},
	}

	certificates, err := f.service.ListOwn(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, certificates, 4)

	assert.Equal(t, "c-new", certificates[0].ID)
	assert.Equal(t, "c-mid", certificates[1].ID)
	assert.Equal(t, "c-old", certificates[2].ID)
	assert.Equal(t, "c-unknown", certificates[3].ID)

	for _, certificate := range certificates {
		assert.Contains(t, certificate.URL, certificate.ObjectKey)
	}
}

func TestService_ListOwn_QueryFailure(t *testing.T) {
	f := newFixture()
	f.repo.failList = errors.New("connection reset")

	_, err := f.service.ListOwn(context.Background(), "stu-1")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "QUERY_FAILED"))
}

func TestService_ListForStudent_PreservesStorageOrder(t *testing.T) {
	f := newFixture()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	// Deliberately not timestamp-ordered.
	f.repo.records["stu-1"] = []Certificate{
		{ID: "c-2", StudentID: "stu-1", ObjectKey: "students/stu-1/certificates/2.pdf", UploadedAt: base.Add(time.Hour)},
		{ID: "c-1", StudentID: "stu-1", ObjectKey: "students/stu-1/certificates/1.pdf", UploadedAt: base},
	}

	certificates, err := f.service.ListForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, certificates, 2)
	assert.Equal(t, "c-2", certificates[0].ID)
	assert.Equal(t, "c-1", certificates[1].ID)
}

func TestService_ListForStudent_EmptyIsNotAnError(t *testing.T) {
	f := newFixture()

	certificates, err := f.service.ListForStudent(context.Background(), "stu-ghost")
	require.NoError(t, err)
	assert.Empty(t, certificates)
}

func TestService_ListOwn_RoundTripAfterUpload(t *testing.T) {
	f := newFixture()

	record, err := f.service.Upload(context.Background(), f.uploadInput("cert.pdf", "content"))
	require.NoError(t, err)

	certificates, err := f.service.ListOwn(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, certificates, 1)
	assert.Equal(t, record.ID, certificates[0].ID)
	assert.False(t, certificates[0].UploadedAt.IsZero())
}
