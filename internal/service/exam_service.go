package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/grading"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/repository"
)

// ExamService exposes exam reads and the improvement-exam lifecycle.
type ExamService interface {
	Get(ctx context.Context, examID uint) (dto.ExamResponse, error)
	Status(ctx context.Context, examID uint) (dto.ExamStatusResponse, error)
	Score(ctx context.Context, examID uint) (dto.ExternalScoreResponse, error)
	CreateImprovement(ctx context.Context, payload dto.ImprovementCreateRequest, actor ActivityActor) (dto.ExamResponse, error)
	DeleteImprovement(ctx context.Context, examID uint, actor ActivityActor) error
}

type examService struct {
	exams       repository.ExamRepository
	assignments repository.CourseAssignmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExamService constructs the exam service.
func NewExamService(exams repository.ExamRepository, assignments repository.CourseAssignmentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ExamService {
	return &examService{
		exams:       exams,
		assignments: assignments,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "exam_service").Logger(),
		now:         time.Now,
	}
}

func (s *examService) load(ctx context.Context, examID uint) (models.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Exam{}, ErrExamNotFound
		}
		return models.Exam{}, err
	}
	return exam, nil
}

func (s *examService) Get(ctx context.Context, examID uint) (dto.ExamResponse, error) {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	status := grading.ProjectStatus(exam.InternalMarks, exam.ExternalMarks)

	score := dto.ExternalScoreResponse{ExamID: exam.ID}
	if exam.ExternalMarks != nil {
		score.Score, score.Resolved = grading.ResolveExternal(*exam.ExternalMarks)
	}

	return dto.NewExamResponse(exam, status, score), nil
}

func (s *examService) Status(ctx context.Context, examID uint) (dto.ExamStatusResponse, error) {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return dto.ExamStatusResponse{}, err
	}

	return dto.ExamStatusResponse{
		ExamID: exam.ID,
		Status: grading.ProjectStatus(exam.InternalMarks, exam.ExternalMarks),
	}, nil
}

func (s *examService) Score(ctx context.Context, examID uint) (dto.ExternalScoreResponse, error) {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return dto.ExternalScoreResponse{}, err
	}

	response := dto.ExternalScoreResponse{ExamID: exam.ID}
	if exam.ExternalMarks != nil {
		response.Score, response.Resolved = grading.ResolveExternal(*exam.ExternalMarks)
	}
	return response, nil
}

// CreateImprovement opens a retake exam. The new exam's internal record is a
// copy of the regular exam's marks taken at creation time; afterwards the two
// records evolve independently.
func (s *examService) CreateImprovement(ctx context.Context, payload dto.ImprovementCreateRequest, actor ActivityActor) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.CourseAssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrAssignmentNotFound
		}
		return dto.ExamResponse{}, err
	}

	if _, err := s.exams.FindImprovement(ctx, assignment.ID, payload.StudentID); err == nil {
		return dto.ExamResponse{}, ErrDuplicateImprovement
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ExamResponse{}, err
	}

	// The seed is the regular exam for the same course, wherever it was
	// administered: the search spans every assignment of the course across
	// committees.
	regular, err := s.exams.FindRegularByCourseAndStudent(ctx, assignment.CourseID, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrNoRegularExam
		}
		return dto.ExamResponse{}, err
	}

	// The copy keeps the regular exam's submission stamp so carried-over
	// marks stay visible, and is tagged as seeded so a mark-free
	// improvement exam remains deletable.
	seed := models.InternalMarkRecord{}
	if regular.InternalMarks != nil {
		seed = *regular.InternalMarks
	}
	seededAt := s.now().UTC()
	seed.SeededAt = &seededAt

	improvement := models.Exam{
		CourseAssignmentID: assignment.ID,
		StudentID:          payload.StudentID,
		Kind:               models.ExamKindImprovement,
		Status:             models.ExamStatusPending,
	}
	if err := s.exams.CreateImprovement(ctx, &improvement, seed); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().
		Uint("exam_id", improvement.ID).
		Uint("student_id", payload.StudentID).
		Uint("seed_exam_id", regular.ID).
		Msg("improvement exam created")

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorKind:  actor.Kind,
			Action:     "improvement_exam.created",
			EntityType: "exam",
			EntityID:   &improvement.ID,
			Metadata: map[string]interface{}{
				"course_assignment_id": assignment.ID,
				"student_id":           payload.StudentID,
				"seed_exam_id":         regular.ID,
			},
		})
	}

	return s.Get(ctx, improvement.ID)
}

// DeleteImprovement removes an improvement exam and its records. Only
// improvement exams with no submitted marks may be deleted.
func (s *examService) DeleteImprovement(ctx context.Context, examID uint, actor ActivityActor) error {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return err
	}

	if exam.Kind != models.ExamKindImprovement {
		return ErrNotImprovementExam
	}

	if err := s.exams.DeleteImprovement(ctx, examID); err != nil {
		if errors.Is(err, repository.ErrImprovementHasMarks) {
			return ErrImprovementHasMarks
		}
		return err
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorKind:  actor.Kind,
			Action:     "improvement_exam.deleted",
			EntityType: "exam",
			EntityID:   &examID,
		})
	}

	return nil
}
