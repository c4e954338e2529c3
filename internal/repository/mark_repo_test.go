package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/grading"
	"github.com/campushub/examcore-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Semester{},
		&models.ExamCommittee{},
		&models.Enrollment{},
		&models.CourseAssignment{},
		&models.Exam{},
		&models.InternalMarkRecord{},
		&models.ExternalMarkRecord{},
		&models.ApprovalStatus{},
		&models.ActivityLog{},
	))
	return db
}

func seedExam(t *testing.T, db *gorm.DB) models.Exam {
	t.Helper()

	course := models.Course{Code: "CSE-301", Title: "Operating Systems", Credits: 3}
	require.NoError(t, db.Create(&course).Error)
	semester := models.Semester{Name: "Spring", Year: 2025}
	require.NoError(t, db.Create(&semester).Error)
	committee := models.ExamCommittee{
		Name:      "Committee 2025",
		President: models.ExaminerRef{ExaminerID: 9, Kind: models.ExaminerKindInternal},
	}
	require.NoError(t, db.Create(&committee).Error)
	student := models.Student{Roll: "301-01", Name: "Amina Rahman", Email: "amina@example.com"}
	require.NoError(t, db.Create(&student).Error)

	assignment := models.CourseAssignment{
		CourseID:       course.ID,
		SemesterID:     semester.ID,
		CommitteeID:    committee.ID,
		FirstExaminer:  models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SecondExaminer: models.ExaminerRef{ExaminerID: 2, Kind: models.ExaminerKindExternal},
	}
	require.NoError(t, db.Create(&assignment).Error)

	exam := models.Exam{
		CourseAssignmentID: assignment.ID,
		StudentID:          student.ID,
		Kind:               models.ExamKindRegular,
		Status:             models.ExamStatusPending,
	}
	require.NoError(t, db.Create(&exam).Error)
	require.NoError(t, db.Create(&models.InternalMarkRecord{ExamID: exam.ID}).Error)
	require.NoError(t, db.Create(&models.ExternalMarkRecord{ExamID: exam.ID}).Error)

	exam.CourseAssignment = assignment
	return exam
}

func escalateOver(threshold float64) func(first, second float64) bool {
	return func(first, second float64) bool {
		return grading.NeedsThirdExaminer(first, second, threshold)
	}
}

func TestSubmitInternalOverwritesAndReprojects(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkLedgerRepository(db)
	exam := seedExam(t, db)

	write := InternalMarkWrite{
		Test1:       floatPointer(8),
		Test2:       floatPointer(7),
		Attendance:  floatPointer(9),
		Submitter:   models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SubmittedAt: time.Now().UTC(),
	}
	record, err := repo.SubmitInternal(context.Background(), exam, write, grading.ProjectStatus)
	require.NoError(t, err)
	require.True(t, record.Submitted())
	require.Equal(t, 24.0, record.Total())

	var stored models.Exam
	require.NoError(t, db.First(&stored, exam.ID).Error)
	require.Equal(t, models.ExamStatusInProgress, stored.Status)

	// Resubmission is last-write-wins: absent components become null again.
	write.Test2 = nil
	write.Test3 = floatPointer(6)
	record, err = repo.SubmitInternal(context.Background(), exam, write, grading.ProjectStatus)
	require.NoError(t, err)
	require.Nil(t, record.Test2)
	require.Equal(t, 23.0, record.Total())
}

func TestSubmitExternalSlotLeavesOtherSlotsAlone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkLedgerRepository(db)
	exam := seedExam(t, db)

	first := ExternalSlotWrite{
		Role:        models.RoleFirst,
		Mark:        70,
		Submitter:   models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SubmittedAt: time.Now().UTC(),
		Escalate:    escalateOver(grading.DefaultEscalationThreshold),
	}
	_, err := repo.SubmitExternalSlot(context.Background(), exam, first, grading.ProjectStatus)
	require.NoError(t, err)

	second := first
	second.Role = models.RoleSecond
	second.Mark = 74
	second.Submitter = models.ExaminerRef{ExaminerID: 2, Kind: models.ExaminerKindExternal}
	record, err := repo.SubmitExternalSlot(context.Background(), exam, second, grading.ProjectStatus)
	require.NoError(t, err)

	require.NotNil(t, record.FirstExaminerMark)
	require.Equal(t, 70.0, *record.FirstExaminerMark)
	require.NotNil(t, record.SecondExaminerMark)
	require.Equal(t, 74.0, *record.SecondExaminerMark)
	require.False(t, record.ThirdExaminerRequired)

	var stored models.Exam
	require.NoError(t, db.First(&stored, exam.ID).Error)
	require.Equal(t, models.ExamStatusInProgress, stored.Status)
}

func TestSubmitExternalSlotEscalatesOnDisagreement(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkLedgerRepository(db)
	exam := seedExam(t, db)

	first := ExternalSlotWrite{
		Role:        models.RoleFirst,
		Mark:        90,
		Submitter:   models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SubmittedAt: time.Now().UTC(),
		Escalate:    escalateOver(grading.DefaultEscalationThreshold),
	}
	_, err := repo.SubmitExternalSlot(context.Background(), exam, first, grading.ProjectStatus)
	require.NoError(t, err)

	second := first
	second.Role = models.RoleSecond
	second.Mark = 60
	record, err := repo.SubmitExternalSlot(context.Background(), exam, second, grading.ProjectStatus)
	require.NoError(t, err)
	require.True(t, record.ThirdExaminerRequired)

	// The latch stays set even if the second examiner resubmits a close mark.
	second.Mark = 89
	record, err = repo.SubmitExternalSlot(context.Background(), exam, second, grading.ProjectStatus)
	require.NoError(t, err)
	require.True(t, record.ThirdExaminerRequired)
}

func TestSubmitExternalSlotRejectedWhenFrozen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkLedgerRepository(db)
	exam := seedExam(t, db)

	now := time.Now().UTC()
	approval := models.ApprovalStatus{
		CommitteeID:        exam.CourseAssignment.CommitteeID,
		SemesterID:         exam.CourseAssignment.SemesterID,
		InternalMarkStatus: models.MarkStatePending,
		ExternalMarkStatus: models.MarkStateApproved,
		ExternalApprover:   models.ExaminerRef{ExaminerID: 9, Kind: models.ExaminerKindInternal},
		ExternalDecidedAt:  &now,
	}
	require.NoError(t, db.Create(&approval).Error)

	write := ExternalSlotWrite{
		Role:        models.RoleFirst,
		Mark:        55,
		Submitter:   models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SubmittedAt: now,
		Escalate:    escalateOver(grading.DefaultEscalationThreshold),
	}
	_, err := repo.SubmitExternalSlot(context.Background(), exam, write, grading.ProjectStatus)
	require.ErrorIs(t, err, ErrMarksFrozen)

	// The internal ledger remains open: only external marks are approved.
	internal := InternalMarkWrite{
		Test1:       floatPointer(5),
		Submitter:   models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SubmittedAt: now,
	}
	_, err = repo.SubmitInternal(context.Background(), exam, internal, grading.ProjectStatus)
	require.NoError(t, err)
}

func TestSubmitExternalCompletionProjection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMarkLedgerRepository(db)
	exam := seedExam(t, db)

	now := time.Now().UTC()
	_, err := repo.SubmitInternal(context.Background(), exam, InternalMarkWrite{
		Test1:       floatPointer(8),
		Submitter:   models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SubmittedAt: now,
	}, grading.ProjectStatus)
	require.NoError(t, err)

	write := ExternalSlotWrite{
		Role:        models.RoleFirst,
		Mark:        62,
		Submitter:   models.ExaminerRef{ExaminerID: 1, Kind: models.ExaminerKindInternal},
		SubmittedAt: now,
		Escalate:    escalateOver(grading.DefaultEscalationThreshold),
	}
	_, err = repo.SubmitExternalSlot(context.Background(), exam, write, grading.ProjectStatus)
	require.NoError(t, err)

	write.Role = models.RoleSecond
	write.Mark = 66
	write.Submitter = models.ExaminerRef{ExaminerID: 2, Kind: models.ExaminerKindExternal}
	_, err = repo.SubmitExternalSlot(context.Background(), exam, write, grading.ProjectStatus)
	require.NoError(t, err)

	var stored models.Exam
	require.NoError(t, db.First(&stored, exam.ID).Error)
	require.Equal(t, models.ExamStatusCompleted, stored.Status)
}

func floatPointer(v float64) *float64 {
	return &v
}
