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
	"github.com/campushub/examcore-api/internal/observability"
	"github.com/campushub/examcore-api/internal/repository"
)

// InternalMarkService accepts internal-assessment submissions from the first
// examiner of an exam's course assignment.
type InternalMarkService interface {
	Submit(ctx context.Context, examID uint, payload dto.InternalMarksRequest, submitter models.ExaminerRef) (dto.InternalMarkResponse, error)
	Get(ctx context.Context, examID uint) (dto.InternalMarkResponse, error)
}

type internalMarkService struct {
	exams     repository.ExamRepository
	marks     repository.MarkLedgerRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewInternalMarkService constructs the internal mark service.
func NewInternalMarkService(exams repository.ExamRepository, marks repository.MarkLedgerRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) InternalMarkService {
	return &internalMarkService{
		exams:     exams,
		marks:     marks,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "internal_mark_service").Logger(),
		now:       time.Now,
	}
}

func (s *internalMarkService) Submit(ctx context.Context, examID uint, payload dto.InternalMarksRequest, submitter models.ExaminerRef) (dto.InternalMarkResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InternalMarkResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InternalMarkResponse{}, ErrExamNotFound
		}
		return dto.InternalMarkResponse{}, err
	}

	// Only the resolved first examiner writes the internal ledger.
	if exam.CourseAssignment.ResolveRole(submitter) != models.RoleFirst {
		return dto.InternalMarkResponse{}, ErrUnauthorizedExaminer
	}

	write := repository.InternalMarkWrite{
		Test1:       payload.Test1,
		Test2:       payload.Test2,
		Test3:       payload.Test3,
		Attendance:  payload.Attendance,
		Submitter:   submitter,
		SubmittedAt: s.now().UTC(),
	}

	record, err := s.marks.SubmitInternal(ctx, exam, write, grading.ProjectStatus)
	if err != nil {
		if errors.Is(err, repository.ErrMarksFrozen) {
			observability.MarkSubmissions().WithLabelValues("internal", "frozen").Inc()
			return dto.InternalMarkResponse{}, ErrMarksFrozen
		}
		return dto.InternalMarkResponse{}, err
	}

	observability.MarkSubmissions().WithLabelValues("internal", "accepted").Inc()
	s.logger.Info().
		Uint("exam_id", exam.ID).
		Uint("examiner_id", submitter.ExaminerID).
		Float64("total", record.Total()).
		Msg("internal marks submitted")

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    submitter.ExaminerID,
			ActorKind:  string(submitter.Kind),
			Action:     "internal_marks.submitted",
			EntityType: "exam",
			EntityID:   &exam.ID,
			Metadata: map[string]interface{}{
				"exam_id": exam.ID,
				"total":   record.Total(),
			},
		})
	}

	return dto.NewInternalMarkResponse(record), nil
}

func (s *internalMarkService) Get(ctx context.Context, examID uint) (dto.InternalMarkResponse, error) {
	record, err := s.marks.GetInternalByExamID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InternalMarkResponse{}, ErrExamNotFound
		}
		return dto.InternalMarkResponse{}, err
	}
	return dto.NewInternalMarkResponse(record), nil
}
