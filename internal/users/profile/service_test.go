// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/pkg/pagination"
	"github.com/nexusportal/nexus/pkg/pointer"
)

// # Test Double

type fakeRepository struct {
	profiles map[string]*Profile
	failWith error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{profiles: make(map[string]*Profile)}
}

func (repo *fakeRepository) FindByUserID(_ context.Context, userID string) (*Profile, error) {
	if repo.failWith != nil {
		return nil, repo.failWith
	}
	record, ok := repo.profiles[userID]
	if !ok {
		return nil, apperr.ProfileNotFound()
	}
	copied := *record
	if record.Student != nil {
		student := *record.Student
		copied.Student = &student
	}
	return &copied, nil
}

func (repo *fakeRepository) ListStudents(_ context.Context, batch string, params pagination.Params) ([]Profile, int, error) {
	if repo.failWith != nil {
		return nil, 0, repo.failWith
	}

	var students []Profile
	for _, record := range repo.profiles {
		if record.Role != sec.RoleStudent {
			continue
		}
		if batch != "" && (record.Student == nil || record.Student.Batch != batch) {
			continue
		}
		students = append(students, *record)
	}

	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })

	total := len(students)
	offset := params.Offset()
	if offset > total {
		offset = total
	}
	end := offset + params.Limit
	if end > total {
		end = total
	}

	return students[offset:end], total, nil
}

func (repo *fakeRepository) Batches(_ context.Context) ([]string, error) {
	if repo.failWith != nil {
		return nil, repo.failWith
	}

	var labels []string
	for _, record := range repo.profiles {
		if record.Role == sec.RoleStudent && record.Student != nil && record.Student.Batch != "" {
			labels = append(labels, record.Student.Batch)
		}
	}
	return labels, nil
}

func (repo *fakeRepository) UpdateContact(_ context.Context, record *Profile) error {
	if repo.failWith != nil {
		return repo.failWith
	}
	copied := *record
	if record.Student != nil {
		student := *record.Student
		copied.Student = &student
	}
	repo.profiles[record.UID] = &copied
	return nil
}

func (repo *fakeRepository) seedStudent(uid, name, batch string) {
	repo.profiles[uid] = &Profile{
		UID:     uid,
		Name:    name,
		Email:   name + "@example.com",
		Role:    sec.RoleStudent,
		Student: &StudentDetails{RollNumber: "R-" + uid, Batch: batch, Phone: "9000000000"},
	}
}

func (repo *fakeRepository) seedStaff(uid, name string) {
	repo.profiles[uid] = &Profile{
		UID:   uid,
		Name:  name,
		Email: name + "@example.com",
		Role:  sec.RoleStaff,
	}
}

func newTestService(repo *fakeRepository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Resolution

func TestService_Resolve(t *testing.T) {
	repo := newFakeRepository()
	repo.seedStudent("u-1", "asha", "2024")
	service := newTestService(repo)

	record, err := service.Resolve(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleStudent, record.Role)
	require.NotNil(t, record.Student)
	assert.Equal(t, "2024", record.Student.Batch)
}

func TestService_Resolve_Missing(t *testing.T) {
	service := newTestService(newFakeRepository())

	_, err := service.Resolve(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "PROFILE_NOT_FOUND"))
}

func TestService_Resolve_StaffHasNoStudentSection(t *testing.T) {
	repo := newFakeRepository()
	repo.seedStaff("u-2", "rao")
	service := newTestService(repo)

	record, err := service.Resolve(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleStaff, record.Role)
	assert.Nil(t, record.Student)
}

// # Contact Updates

func TestService_UpdateContact(t *testing.T) {
	repo := newFakeRepository()
	repo.seedStudent("u-1", "asha", "2024")
	service := newTestService(repo)

	record, err := service.UpdateContact(context.Background(), "u-1", UpdateContactInput{
		Name:  pointer.To("Asha V."),
		Phone: pointer.To("9111111111"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha V.", record.Name)
	assert.Equal(t, "9111111111", record.Student.Phone)

	// Untouched fields survive the partial update.
	assert.Equal(t, "2024", record.Student.Batch)
}

func TestService_UpdateContact_StaffIgnoresPhone(t *testing.T) {
	repo := newFakeRepository()
	repo.seedStaff("u-2", "rao")
	service := newTestService(repo)

	record, err := service.UpdateContact(context.Background(), "u-2", UpdateContactInput{
		Phone: pointer.To("9111111111"),
	})
	require.NoError(t, err)
	assert.Nil(t, record.Student)
}

// # Student Directory

func TestService_ListStudents_FiltersRoleAndBatch(t *testing.T) {
	repo := newFakeRepository()
	repo.seedStudent("u-1", "asha", "2024")
	repo.seedStudent("u-2", "bina", "2023")
	repo.seedStudent("u-3", "chand", "2024")
	repo.seedStaff("u-4", "rao")
	service := newTestService(repo)

	all, meta, err := service.ListStudents(context.Background(), "", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, all, 3, "staff rows never appear in the directory")
	assert.Equal(t, 3, meta.Total)

	cohort, meta, err := service.ListStudents(context.Background(), "2024", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, cohort, 2)
	assert.Equal(t, 2, meta.Total)
	for _, student := range cohort {
		assert.Equal(t, "2024", student.Student.Batch)
	}
}

func TestService_ListStudents_QueryFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.failWith = errors.New("connection reset")
	service := newTestService(repo)

	_, _, err := service.ListStudents(context.Background(), "", pagination.Params{Page: 1, Limit: 20})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "QUERY_FAILED"))
}

// # Batch Labels

func TestService_Batches_DistinctSortedAscending(t *testing.T) {
	repo := newFakeRepository()
	repo.seedStudent("u-1", "asha", "2024")
	repo.seedStudent("u-2", "bina", "2023")
	repo.seedStudent("u-3", "chand", "2024")
	service := newTestService(repo)

	labels, err := service.Batches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2024"}, labels)
}

func TestService_Batches_EmptyDirectory(t *testing.T) {
	service := newTestService(newFakeRepository())

	labels, err := service.Batches(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)
}
