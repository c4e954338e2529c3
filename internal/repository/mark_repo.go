package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/models"
)

// StatusProjector derives the exam status from both ledgers. The projection
// rule itself lives in the grading package; the repository only needs to call
// it on the records it has just written.
type StatusProjector func(internal *models.InternalMarkRecord, external *models.ExternalMarkRecord) models.ExamStatus

// InternalMarkWrite describes a full internal-record submission. Resubmission
// overwrites prior values; there is no merge.
type InternalMarkWrite struct {
	Test1       *float64
	Test2       *float64
	Test3       *float64
	Attendance  *float64
	Submitter   models.ExaminerRef
	SubmittedAt time.Time
}

// ExternalSlotWrite describes one examiner's external mark for one slot.
// Escalate carries the disagreement policy so it is applied on the exact
// record state visible inside the transaction.
type ExternalSlotWrite struct {
	Role        models.ExaminerRole
	Mark        float64
	Submitter   models.ExaminerRef
	SubmittedAt time.Time
	Escalate    func(first, second float64) bool
}

// MarkLedgerRepository owns the two contended mark records of an exam. Every
// write runs as one serializable operation per exam: the record row is
// locked, the approval freeze for the exam's (committee, semester) is checked
// under that lock, the slot fields are applied as independent column updates
// and the exam status is reprojected before the transaction commits.
type MarkLedgerRepository interface {
	GetInternalByExamID(ctx context.Context, examID uint) (models.InternalMarkRecord, error)
	GetExternalByExamID(ctx context.Context, examID uint) (models.ExternalMarkRecord, error)
	SubmitInternal(ctx context.Context, exam models.Exam, write InternalMarkWrite, project StatusProjector) (models.InternalMarkRecord, error)
	SubmitExternalSlot(ctx context.Context, exam models.Exam, write ExternalSlotWrite, project StatusProjector) (models.ExternalMarkRecord, error)
}

type markLedgerRepository struct {
	db *gorm.DB
}

// NewMarkLedgerRepository instantiates the repository.
func NewMarkLedgerRepository(db *gorm.DB) MarkLedgerRepository {
	return &markLedgerRepository{db: db}
}

func (r *markLedgerRepository) GetInternalByExamID(ctx context.Context, examID uint) (models.InternalMarkRecord, error) {
	var record models.InternalMarkRecord
	if err := r.db.WithContext(ctx).Where("exam_id = ?", examID).First(&record).Error; err != nil {
		return models.InternalMarkRecord{}, err
	}
	return record, nil
}

func (r *markLedgerRepository) GetExternalByExamID(ctx context.Context, examID uint) (models.ExternalMarkRecord, error) {
	var record models.ExternalMarkRecord
	if err := r.db.WithContext(ctx).Where("exam_id = ?", examID).First(&record).Error; err != nil {
		return models.ExternalMarkRecord{}, err
	}
	return record, nil
}

// frozen reads the approval record for the exam's (committee, semester)
// inside the caller's transaction. A missing approval record means the
// committee semester has not been formed for review yet, which cannot freeze
// anything.
func frozen(tx *gorm.DB, assignment models.CourseAssignment, markType models.MarkType) (bool, error) {
	var approval models.ApprovalStatus
	err := tx.
		Where("committee_id = ?", assignment.CommitteeID).
		Where("semester_id = ?", assignment.SemesterID).
		First(&approval).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return approval.Frozen(markType), nil
}

func (r *markLedgerRepository) SubmitInternal(ctx context.Context, exam models.Exam, write InternalMarkWrite, project StatusProjector) (models.InternalMarkRecord, error) {
	var record models.InternalMarkRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withUpdateLock(tx).
			Where("exam_id = ?", exam.ID).
			First(&record).Error; err != nil {
			return err
		}

		isFrozen, err := frozen(tx, exam.CourseAssignment, models.MarkTypeInternal)
		if err != nil {
			return err
		}
		if isFrozen {
			return ErrMarksFrozen
		}

		updates := map[string]interface{}{
			"test1":             write.Test1,
			"test2":             write.Test2,
			"test3":             write.Test3,
			"attendance":        write.Attendance,
			"submitted_by_id":   write.Submitter.ExaminerID,
			"submitted_by_kind": write.Submitter.Kind,
			"submitted_at":      write.SubmittedAt,
			// A real submission supersedes any improvement-creation seed.
			"seeded_at": nil,
		}
		if err := tx.Model(&models.InternalMarkRecord{}).
			Where("id = ?", record.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ?", record.ID).First(&record).Error; err != nil {
			return err
		}

		return reprojectStatus(tx, exam.ID, &record, nil, project)
	})
	if err != nil {
		return models.InternalMarkRecord{}, err
	}

	return record, nil
}

func (r *markLedgerRepository) SubmitExternalSlot(ctx context.Context, exam models.Exam, write ExternalSlotWrite, project StatusProjector) (models.ExternalMarkRecord, error) {
	var record models.ExternalMarkRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withUpdateLock(tx).
			Where("exam_id = ?", exam.ID).
			First(&record).Error; err != nil {
			return err
		}

		isFrozen, err := frozen(tx, exam.CourseAssignment, models.MarkTypeExternal)
		if err != nil {
			return err
		}
		if isFrozen {
			return ErrMarksFrozen
		}

		updates, err := slotColumns(write)
		if err != nil {
			return err
		}

		// The escalation rule fires only on a second-examiner write once a
		// first mark exists; the latch is one-way.
		if write.Role == models.RoleSecond && record.FirstExaminerMark != nil && write.Escalate != nil {
			if write.Escalate(*record.FirstExaminerMark, write.Mark) {
				updates["third_examiner_required"] = true
			}
		}

		if err := tx.Model(&models.ExternalMarkRecord{}).
			Where("id = ?", record.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ?", record.ID).First(&record).Error; err != nil {
			return err
		}

		return reprojectStatus(tx, exam.ID, nil, &record, project)
	})
	if err != nil {
		return models.ExternalMarkRecord{}, err
	}

	return record, nil
}

// slotColumns maps a slot write onto the columns of that slot only, so
// concurrent writes to other slots of the same record are never clobbered.
func slotColumns(write ExternalSlotWrite) (map[string]interface{}, error) {
	var prefix string
	switch write.Role {
	case models.RoleFirst:
		prefix = "first"
	case models.RoleSecond:
		prefix = "second"
	case models.RoleThird:
		prefix = "third"
	default:
		return nil, errors.New("external slot write requires a resolved role")
	}

	return map[string]interface{}{
		prefix + "_examiner_mark":     write.Mark,
		prefix + "_submitted_by_id":   write.Submitter.ExaminerID,
		prefix + "_submitted_by_kind": write.Submitter.Kind,
		prefix + "_submitted_at":      write.SubmittedAt,
	}, nil
}

// reprojectStatus recomputes the exam status from both ledgers inside the
// transaction. The record just written is passed in; the sibling record is
// read fresh.
func reprojectStatus(tx *gorm.DB, examID uint, internal *models.InternalMarkRecord, external *models.ExternalMarkRecord, project StatusProjector) error {
	if project == nil {
		return nil
	}

	if internal == nil {
		var sibling models.InternalMarkRecord
		if err := tx.Where("exam_id = ?", examID).First(&sibling).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		} else {
			internal = &sibling
		}
	}

	if external == nil {
		var sibling models.ExternalMarkRecord
		if err := tx.Where("exam_id = ?", examID).First(&sibling).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		} else {
			external = &sibling
		}
	}

	status := project(internal, external)
	return tx.Model(&models.Exam{}).Where("id = ?", examID).Update("status", status).Error
}
