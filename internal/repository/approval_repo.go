package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/models"
)

// ApprovalTransition captures one president decision on one mark type.
type ApprovalTransition struct {
	MarkType  models.MarkType
	NewState  models.MarkState
	Approver  models.ExaminerRef
	DecidedAt time.Time
}

// ApprovalRepository persists per-(committee, semester) approval records and
// maintains the committee-level published aggregates.
type ApprovalRepository interface {
	Create(ctx context.Context, status *models.ApprovalStatus) error
	GetByCommitteeSemester(ctx context.Context, committeeID, semesterID uint) (models.ApprovalStatus, error)
	ListByCommittee(ctx context.Context, committeeID uint) ([]models.ApprovalStatus, error)
	// Transition applies the decision under a row lock and, when the last
	// pending semester of the committee becomes approved for the mark type,
	// flips the committee's published flag. The returned boolean reports
	// whether the flag flipped in this call.
	Transition(ctx context.Context, committeeID, semesterID uint, transition ApprovalTransition) (models.ApprovalStatus, bool, error)
}

type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository instantiates the repository.
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, status *models.ApprovalStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *approvalRepository) GetByCommitteeSemester(ctx context.Context, committeeID, semesterID uint) (models.ApprovalStatus, error) {
	var status models.ApprovalStatus
	if err := r.db.WithContext(ctx).
		Preload("Committee").
		Preload("Semester").
		Where("committee_id = ?", committeeID).
		Where("semester_id = ?", semesterID).
		First(&status).Error; err != nil {
		return models.ApprovalStatus{}, err
	}
	return status, nil
}

func (r *approvalRepository) ListByCommittee(ctx context.Context, committeeID uint) ([]models.ApprovalStatus, error) {
	var statuses []models.ApprovalStatus
	if err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("committee_id = ?", committeeID).
		Order("semester_id ASC").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *approvalRepository) Transition(ctx context.Context, committeeID, semesterID uint, transition ApprovalTransition) (models.ApprovalStatus, bool, error) {
	var status models.ApprovalStatus
	flipped := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withUpdateLock(tx).
			Where("committee_id = ?", committeeID).
			Where("semester_id = ?", semesterID).
			First(&status).Error; err != nil {
			return err
		}

		if status.StateOf(transition.MarkType) == models.MarkStateApproved {
			return ErrApprovalStateFinal
		}

		statusColumn := "internal_mark_status"
		approverPrefix := "internal_approver"
		decidedColumn := "internal_decided_at"
		publishedColumn := "internal_marks_published"
		if transition.MarkType == models.MarkTypeExternal {
			statusColumn = "external_mark_status"
			approverPrefix = "external_approver"
			decidedColumn = "external_decided_at"
			publishedColumn = "external_marks_published"
		}

		updates := map[string]interface{}{
			statusColumn:             transition.NewState,
			approverPrefix + "_id":   transition.Approver.ExaminerID,
			approverPrefix + "_kind": transition.Approver.Kind,
			decidedColumn:            transition.DecidedAt,
		}
		if err := tx.Model(&models.ApprovalStatus{}).
			Where("id = ?", status.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		if transition.NewState == models.MarkStateApproved {
			var remaining int64
			if err := tx.Model(&models.ApprovalStatus{}).
				Where("committee_id = ?", committeeID).
				Where(statusColumn+" <> ?", models.MarkStateApproved).
				Count(&remaining).Error; err != nil {
				return err
			}

			if remaining == 0 {
				var committee models.ExamCommittee
				if err := withUpdateLock(tx).
					First(&committee, committeeID).Error; err != nil {
					return err
				}

				alreadyPublished := committee.InternalMarksPublished
				if transition.MarkType == models.MarkTypeExternal {
					alreadyPublished = committee.ExternalMarksPublished
				}

				if !alreadyPublished {
					if err := tx.Model(&models.ExamCommittee{}).
						Where("id = ?", committeeID).
						Update(publishedColumn, true).Error; err != nil {
						return err
					}
					flipped = true
				}
			}
		}

		return tx.Where("id = ?", status.ID).First(&status).Error
	})
	if err != nil {
		return models.ApprovalStatus{}, false, err
	}

	return status, flipped, nil
}
