package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/models"
)

// ExamRepository persists exams and the improvement-exam lifecycle.
type ExamRepository interface {
	GetByID(ctx context.Context, id uint) (models.Exam, error)
	FindImprovement(ctx context.Context, assignmentID, studentID uint) (models.Exam, error)
	FindRegularByCourseAndStudent(ctx context.Context, courseID, studentID uint) (models.Exam, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Exam, error)
	ListRegularStudentIDsByCourse(ctx context.Context, courseID uint) ([]uint, error)
	CreateImprovement(ctx context.Context, exam *models.Exam, seed models.InternalMarkRecord) error
	DeleteImprovement(ctx context.Context, examID uint) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository instantiates the repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Exam{}).
		Preload("CourseAssignment").
		Preload("CourseAssignment.Course").
		Preload("CourseAssignment.Semester").
		Preload("CourseAssignment.Committee").
		Preload("Student").
		Preload("InternalMarks").
		Preload("ExternalMarks")
}

func (r *examRepository) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.baseQuery(ctx).First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) FindImprovement(ctx context.Context, assignmentID, studentID uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).
		Where("course_assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Where("kind = ?", models.ExamKindImprovement).
		First(&exam).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

// FindRegularByCourseAndStudent searches every assignment of the course,
// across committees, for the student's regular exam.
func (r *examRepository) FindRegularByCourseAndStudent(ctx context.Context, courseID, studentID uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.baseQuery(ctx).
		Joins("JOIN course_assignments ON course_assignments.id = exams.course_assignment_id").
		Where("course_assignments.course_id = ?", courseID).
		Where("exams.student_id = ?", studentID).
		Where("exams.kind = ?", models.ExamKindRegular).
		First(&exam).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Exam, error) {
	var exams []models.Exam
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) ListRegularStudentIDsByCourse(ctx context.Context, courseID uint) ([]uint, error) {
	var studentIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Exam{}).
		Joins("JOIN course_assignments ON course_assignments.id = exams.course_assignment_id").
		Where("course_assignments.course_id = ?", courseID).
		Where("exams.kind = ?", models.ExamKindRegular).
		Pluck("exams.student_id", &studentIDs).Error; err != nil {
		return nil, err
	}
	return studentIDs, nil
}

// CreateImprovement creates the improvement exam, a fresh copy of the seed
// internal marks and an empty external record in one transaction.
func (r *examRepository) CreateImprovement(ctx context.Context, exam *models.Exam, seed models.InternalMarkRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exam).Error; err != nil {
			return err
		}

		seed.ID = 0
		seed.ExamID = exam.ID
		if err := tx.Create(&seed).Error; err != nil {
			return err
		}

		return tx.Create(&models.ExternalMarkRecord{ExamID: exam.ID}).Error
	})
}

// DeleteImprovement removes an improvement exam and cascades to its mark
// records. Deletion is refused once any mark has been submitted to the
// improvement exam itself; the internal record seeded from the regular exam
// at creation does not count as a submission.
func (r *examRepository) DeleteImprovement(ctx context.Context, examID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exam models.Exam
		if err := withUpdateLock(tx).First(&exam, examID).Error; err != nil {
			return err
		}

		var internal models.InternalMarkRecord
		if err := tx.Where("exam_id = ?", examID).First(&internal).Error; err != nil {
			return err
		}

		var external models.ExternalMarkRecord
		if err := tx.Where("exam_id = ?", examID).First(&external).Error; err != nil {
			return err
		}

		if (internal.Submitted() && internal.SeededAt == nil) || external.PresentMarks() > 0 {
			return ErrImprovementHasMarks
		}

		if err := tx.Delete(&internal).Error; err != nil {
			return err
		}
		if err := tx.Delete(&external).Error; err != nil {
			return err
		}
		return tx.Delete(&exam).Error
	})
}
