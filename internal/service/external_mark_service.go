package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/grading"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/observability"
	"github.com/campushub/examcore-api/internal/repository"
)

// ExternalMarkService accepts per-slot external marks and applies the
// third-examiner escalation rule.
type ExternalMarkService interface {
	Submit(ctx context.Context, examID uint, payload dto.ExternalMarkRequest, submitter models.ExaminerRef) (dto.ExternalMarkResponse, error)
	Get(ctx context.Context, examID uint) (dto.ExternalMarkResponse, error)
}

type externalMarkService struct {
	exams     repository.ExamRepository
	marks     repository.MarkLedgerRepository
	validator *validator.Validate
	activity  ActivityRecorder
	threshold float64
	logger    zerolog.Logger
	now       func() time.Time
}

// NewExternalMarkService constructs the external mark service. The
// escalation threshold arrives from configuration so boundary values can be
// exercised precisely in tests.
func NewExternalMarkService(exams repository.ExamRepository, marks repository.MarkLedgerRepository, validate *validator.Validate, activity ActivityRecorder, threshold float64, logger zerolog.Logger) ExternalMarkService {
	if threshold <= 0 {
		threshold = grading.DefaultEscalationThreshold
	}

	return &externalMarkService{
		exams:     exams,
		marks:     marks,
		validator: validate,
		activity:  activity,
		threshold: threshold,
		logger:    logger.With().Str("component", "external_mark_service").Logger(),
		now:       time.Now,
	}
}

func (s *externalMarkService) Submit(ctx context.Context, examID uint, payload dto.ExternalMarkRequest, submitter models.ExaminerRef) (dto.ExternalMarkResponse, error) {
	tracer := otel.Tracer("github.com/campushub/examcore-api/internal/service/external_mark")
	ctx, span := tracer.Start(ctx, "external_mark.submit")
	span.SetAttributes(
		attribute.Int64("exam.id", int64(examID)),
		attribute.Int64("examiner.id", int64(submitter.ExaminerID)),
		attribute.String("examiner.kind", string(submitter.Kind)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ExternalMarkResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "exam_not_found")
			return dto.ExternalMarkResponse{}, ErrExamNotFound
		}
		span.RecordError(err)
		return dto.ExternalMarkResponse{}, err
	}

	latchedBefore := exam.ExternalMarks != nil && exam.ExternalMarks.ThirdExaminerRequired

	role := exam.CourseAssignment.ResolveRole(submitter)
	if role == models.RoleUnauthorized {
		span.SetStatus(codes.Error, "unauthorized_examiner")
		return dto.ExternalMarkResponse{}, ErrUnauthorizedExaminer
	}
	span.SetAttributes(attribute.String("examiner.role", string(role)))

	write := repository.ExternalSlotWrite{
		Role:        role,
		Mark:        payload.Mark,
		Submitter:   submitter,
		SubmittedAt: s.now().UTC(),
		Escalate: func(first, second float64) bool {
			return grading.NeedsThirdExaminer(first, second, s.threshold)
		},
	}

	record, err := s.marks.SubmitExternalSlot(ctx, exam, write, grading.ProjectStatus)
	if err != nil {
		if errors.Is(err, repository.ErrMarksFrozen) {
			observability.MarkSubmissions().WithLabelValues("external", "frozen").Inc()
			span.SetStatus(codes.Error, "marks_frozen")
			return dto.ExternalMarkResponse{}, ErrMarksFrozen
		}
		span.RecordError(err)
		return dto.ExternalMarkResponse{}, err
	}

	observability.MarkSubmissions().WithLabelValues("external", "accepted").Inc()
	// Count the escalation once, when this write flips the latch.
	if record.ThirdExaminerRequired && !latchedBefore {
		observability.Escalations().Inc()
	}

	s.logger.Info().
		Uint("exam_id", exam.ID).
		Str("role", string(role)).
		Float64("mark", payload.Mark).
		Bool("third_examiner_required", record.ThirdExaminerRequired).
		Msg("external mark submitted")

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    submitter.ExaminerID,
			ActorKind:  string(submitter.Kind),
			Action:     "external_mark.submitted",
			EntityType: "exam",
			EntityID:   &exam.ID,
			Metadata: map[string]interface{}{
				"exam_id":                 exam.ID,
				"role":                    string(role),
				"mark":                    payload.Mark,
				"third_examiner_required": record.ThirdExaminerRequired,
			},
		})
	}

	span.SetAttributes(attribute.Bool("exam.third_examiner_required", record.ThirdExaminerRequired))
	return dto.NewExternalMarkResponse(record), nil
}

func (s *externalMarkService) Get(ctx context.Context, examID uint) (dto.ExternalMarkResponse, error) {
	record, err := s.marks.GetExternalByExamID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExternalMarkResponse{}, ErrExamNotFound
		}
		return dto.ExternalMarkResponse{}, err
	}
	return dto.NewExternalMarkResponse(record), nil
}
