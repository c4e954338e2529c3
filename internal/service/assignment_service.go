package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/repository"
)

// AssignmentService manages course assignments and the exam fan-out that
// comes with them.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	SetThirdExaminer(ctx context.Context, id uint, payload dto.ThirdExaminerRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.CourseAssignmentRepository
	exams       repository.ExamRepository
	directory   repository.DirectoryRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(assignments repository.CourseAssignmentRepository, exams repository.ExamRepository, directory repository.DirectoryRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		exams:       exams,
		directory:   directory,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

// Create persists the assignment and opens a regular exam for every student
// enrolled in the (course, semester) who does not already have one for the
// course.
func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.CourseAssignment{
		CourseID:       payload.CourseID,
		SemesterID:     payload.SemesterID,
		CommitteeID:    payload.CommitteeID,
		FirstExaminer:  payload.FirstExaminer.ToRef(),
		SecondExaminer: payload.SecondExaminer.ToRef(),
	}
	if payload.ThirdExaminer != nil {
		assignment.ThirdExaminer = payload.ThirdExaminer.ToRef()
	}

	if !assignment.SlotsDistinct() {
		return dto.AssignmentResponse{}, ErrExaminerSlotsNotDistinct
	}

	if _, err := s.directory.GetCourse(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if _, err := s.directory.GetCommittee(ctx, payload.CommitteeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCommitteeNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	enrollments, err := s.directory.ListEnrollments(ctx, payload.CourseID, payload.SemesterID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	existing, err := s.exams.ListRegularStudentIDsByCourse(ctx, payload.CourseID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	seen := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}

	studentIDs := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if _, ok := seen[enrollment.StudentID]; ok {
			continue
		}
		studentIDs = append(studentIDs, enrollment.StudentID)
	}

	if err := s.assignments.CreateWithExams(ctx, &assignment, studentIDs); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("course_id", payload.CourseID).
		Int("exams_created", len(studentIDs)).
		Msg("course assignment created")

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorKind:  actor.Kind,
			Action:     "assignment.created",
			EntityType: "course_assignment",
			EntityID:   &assignment.ID,
			Metadata: map[string]interface{}{
				"course_id":     payload.CourseID,
				"semester_id":   payload.SemesterID,
				"committee_id":  payload.CommitteeID,
				"exams_created": len(studentIDs),
			},
		})
	}

	full, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.NewAssignmentResponse(assignment, len(studentIDs)), nil
	}
	return dto.NewAssignmentResponse(full, len(studentIDs)), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment, 0), nil
}

// SetThirdExaminer fills the on-demand third slot. The slot may be assigned
// before any escalation happens; distinctness against the first two slots is
// still enforced.
func (s *assignmentService) SetThirdExaminer(ctx context.Context, id uint, payload dto.ThirdExaminerRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	ref := payload.Examiner.ToRef()
	assignment.ThirdExaminer = ref
	if !assignment.SlotsDistinct() {
		return dto.AssignmentResponse{}, ErrExaminerSlotsNotDistinct
	}

	updated, err := s.assignments.UpdateThirdExaminer(ctx, id, ref)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorKind:  actor.Kind,
			Action:     "assignment.third_examiner_set",
			EntityType: "course_assignment",
			EntityID:   &id,
			Metadata: map[string]interface{}{
				"examiner_id": ref.ExaminerID,
				"kind":        string(ref.Kind),
			},
		})
	}

	return dto.NewAssignmentResponse(updated, 0), nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, courseID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(assignment, 0))
	}
	return responses, nil
}
