package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/models"
)

// CourseAssignmentRepository persists course assignments and the regular
// exams fanned out from them.
type CourseAssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.CourseAssignment, error)
	CreateWithExams(ctx context.Context, assignment *models.CourseAssignment, studentIDs []uint) error
	UpdateThirdExaminer(ctx context.Context, id uint, ref models.ExaminerRef) (models.CourseAssignment, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.CourseAssignment, error)
}

type courseAssignmentRepository struct {
	db *gorm.DB
}

// NewCourseAssignmentRepository instantiates the repository.
func NewCourseAssignmentRepository(db *gorm.DB) CourseAssignmentRepository {
	return &courseAssignmentRepository{db: db}
}

func (r *courseAssignmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CourseAssignment{}).
		Preload("Course").
		Preload("Semester").
		Preload("Committee")
}

func (r *courseAssignmentRepository) GetByID(ctx context.Context, id uint) (models.CourseAssignment, error) {
	var assignment models.CourseAssignment
	if err := r.baseQuery(ctx).First(&assignment, id).Error; err != nil {
		return models.CourseAssignment{}, err
	}
	return assignment, nil
}

// CreateWithExams creates the assignment plus one pending regular exam and
// empty mark records per enrolled student, all in one transaction.
func (r *courseAssignmentRepository) CreateWithExams(ctx context.Context, assignment *models.CourseAssignment, studentIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}

		for _, studentID := range studentIDs {
			exam := models.Exam{
				CourseAssignmentID: assignment.ID,
				StudentID:          studentID,
				Kind:               models.ExamKindRegular,
				Status:             models.ExamStatusPending,
			}
			if err := tx.Create(&exam).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.InternalMarkRecord{ExamID: exam.ID}).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.ExternalMarkRecord{ExamID: exam.ID}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *courseAssignmentRepository) UpdateThirdExaminer(ctx context.Context, id uint, ref models.ExaminerRef) (models.CourseAssignment, error) {
	updates := map[string]interface{}{
		"third_examiner_id":   ref.ExaminerID,
		"third_examiner_kind": ref.Kind,
	}
	if err := r.db.WithContext(ctx).Model(&models.CourseAssignment{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return models.CourseAssignment{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *courseAssignmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.CourseAssignment, error) {
	var assignments []models.CourseAssignment
	if err := r.baseQuery(ctx).Where("course_id = ?", courseID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
