package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/observability"
	"github.com/campushub/examcore-api/internal/repository"
)

// ApprovalService drives the per-(committee, semester) approval state
// machines and the committee-level publication gates.
type ApprovalService interface {
	Transition(ctx context.Context, committeeID, semesterID uint, payload dto.ApprovalTransitionRequest, actor ActivityActor) (dto.ApprovalResponse, error)
	Get(ctx context.Context, committeeID, semesterID uint) (dto.ApprovalResponse, error)
	ListByCommittee(ctx context.Context, committeeID uint) ([]dto.ApprovalResponse, error)
}

type approvalService struct {
	approvals repository.ApprovalRepository
	directory repository.DirectoryRepository
	validator *validator.Validate
	publisher PublicationPublisher
	cache     ReportCache
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewApprovalService constructs the approval service.
func NewApprovalService(approvals repository.ApprovalRepository, directory repository.DirectoryRepository, validate *validator.Validate, publisher PublicationPublisher, cache ReportCache, activity ActivityRecorder, logger zerolog.Logger) ApprovalService {
	return &approvalService{
		approvals: approvals,
		directory: directory,
		validator: validate,
		publisher: publisher,
		cache:     cache,
		activity:  activity,
		logger:    logger.With().Str("component", "approval_service").Logger(),
		now:       time.Now,
	}
}

// Transition applies a president decision. Approved is terminal: once a mark
// type is approved for a pair, no further transition on it is accepted, which
// keeps the submission freeze permanent.
func (s *approvalService) Transition(ctx context.Context, committeeID, semesterID uint, payload dto.ApprovalTransitionRequest, actor ActivityActor) (dto.ApprovalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApprovalResponse{}, err
	}

	committee, err := s.directory.GetCommittee(ctx, committeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApprovalResponse{}, ErrCommitteeNotFound
		}
		return dto.ApprovalResponse{}, err
	}

	if !committee.President.Equal(actor.Ref()) {
		return dto.ApprovalResponse{}, ErrNotPresident
	}

	markType := models.MarkType(payload.MarkType)
	newState := models.MarkState(payload.NewState)

	current, err := s.approvals.GetByCommitteeSemester(ctx, committeeID, semesterID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApprovalResponse{}, err
		}
		// First decision for the pair: the record is created lazily in the
		// pending state, then transitioned below.
		if _, err := s.directory.GetSemester(ctx, semesterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ApprovalResponse{}, ErrApprovalNotFound
			}
			return dto.ApprovalResponse{}, err
		}
		created := models.ApprovalStatus{
			CommitteeID:        committeeID,
			SemesterID:         semesterID,
			InternalMarkStatus: models.MarkStatePending,
			ExternalMarkStatus: models.MarkStatePending,
		}
		if err := s.approvals.Create(ctx, &created); err != nil {
			return dto.ApprovalResponse{}, err
		}
		current = created
	}

	if current.StateOf(markType) == models.MarkStateApproved {
		return dto.ApprovalResponse{}, ErrApprovalFinal
	}

	decidedAt := s.now().UTC()
	updated, published, err := s.approvals.Transition(ctx, committeeID, semesterID, repository.ApprovalTransition{
		MarkType:  markType,
		NewState:  newState,
		Approver:  actor.Ref(),
		DecidedAt: decidedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrApprovalStateFinal) {
			return dto.ApprovalResponse{}, ErrApprovalFinal
		}
		return dto.ApprovalResponse{}, err
	}

	observability.ApprovalTransitions().WithLabelValues(string(markType), string(newState)).Inc()

	// Any state change alters the approved flags carried by reports.
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	s.logger.Info().
		Uint("committee_id", committeeID).
		Uint("semester_id", semesterID).
		Str("mark_type", string(markType)).
		Str("new_state", string(newState)).
		Bool("published", published).
		Msg("approval transition applied")

	if published && s.publisher != nil {
		s.publisher.PublishMarksPublished(PublicationEvent{
			CommitteeID: committeeID,
			SemesterID:  semesterID,
			MarkType:    markType,
			PublishedAt: decidedAt,
		})
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorKind:  actor.Kind,
			Action:     "approval." + string(newState),
			EntityType: "approval_status",
			EntityID:   &updated.ID,
			Metadata: map[string]interface{}{
				"committee_id": committeeID,
				"semester_id":  semesterID,
				"mark_type":    string(markType),
				"published":    published,
			},
		})
	}

	response := dto.NewApprovalResponse(updated)
	if published {
		flags, err := s.publishedFlags(ctx, committeeID)
		if err == nil {
			response.Published = flags
		}
	}
	return response, nil
}

func (s *approvalService) Get(ctx context.Context, committeeID, semesterID uint) (dto.ApprovalResponse, error) {
	status, err := s.approvals.GetByCommitteeSemester(ctx, committeeID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApprovalResponse{}, ErrApprovalNotFound
		}
		return dto.ApprovalResponse{}, err
	}
	return dto.NewApprovalResponse(status), nil
}

func (s *approvalService) ListByCommittee(ctx context.Context, committeeID uint) ([]dto.ApprovalResponse, error) {
	if _, err := s.directory.GetCommittee(ctx, committeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommitteeNotFound
		}
		return nil, err
	}

	statuses, err := s.approvals.ListByCommittee(ctx, committeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ApprovalResponse, 0, len(statuses))
	flags, flagsErr := s.publishedFlags(ctx, committeeID)
	for _, status := range statuses {
		response := dto.NewApprovalResponse(status)
		if flagsErr == nil {
			response.Published = flags
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *approvalService) publishedFlags(ctx context.Context, committeeID uint) (*dto.PublishedFlags, error) {
	committee, err := s.directory.GetCommittee(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	return &dto.PublishedFlags{
		InternalMarks: committee.InternalMarksPublished,
		ExternalMarks: committee.ExternalMarksPublished,
	}, nil
}
