package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/models"
)

// DirectoryRepository reads the student/course/committee directory records
// the evaluation engine consumes. The engine never writes them.
type DirectoryRepository interface {
	GetStudent(ctx context.Context, id uint) (models.Student, error)
	GetCourse(ctx context.Context, id uint) (models.Course, error)
	GetCommittee(ctx context.Context, id uint) (models.ExamCommittee, error)
	GetSemester(ctx context.Context, id uint) (models.Semester, error)
	ListEnrollments(ctx context.Context, courseID, semesterID uint) ([]models.Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository constructs the read-only directory repository.
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) GetStudent(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *directoryRepository) GetCourse(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *directoryRepository) GetCommittee(ctx context.Context, id uint) (models.ExamCommittee, error) {
	var committee models.ExamCommittee
	if err := r.db.WithContext(ctx).First(&committee, id).Error; err != nil {
		return models.ExamCommittee{}, err
	}
	return committee, nil
}

func (r *directoryRepository) GetSemester(ctx context.Context, id uint) (models.Semester, error) {
	var semester models.Semester
	if err := r.db.WithContext(ctx).First(&semester, id).Error; err != nil {
		return models.Semester{}, err
	}
	return semester, nil
}

func (r *directoryRepository) ListEnrollments(ctx context.Context, courseID, semesterID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("semester_id = ?", semesterID).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *directoryRepository) ListEnrollmentsByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}
