package dto

import (
	"time"

	"github.com/campushub/examcore-api/internal/models"
)

// ApprovalTransitionRequest is a president decision on one mark type of one
// (committee, semester).
type ApprovalTransitionRequest struct {
	MarkType string `json:"mark_type" validate:"required,oneof=internal external"`
	NewState string `json:"new_state" validate:"required,oneof=approved rejected"`
}

// ApprovalDecision serializes one mark type's approval state.
type ApprovalDecision struct {
	State     models.MarkState   `json:"state"`
	Approver  models.ExaminerRef `json:"approver"`
	DecidedAt *time.Time         `json:"decided_at"`
}

// ApprovalResponse serializes an approval record.
type ApprovalResponse struct {
	CommitteeID uint             `json:"committee_id"`
	SemesterID  uint             `json:"semester_id"`
	Internal    ApprovalDecision `json:"internal"`
	External    ApprovalDecision `json:"external"`
	Published   *PublishedFlags  `json:"published,omitempty"`
}

// PublishedFlags mirrors the committee's aggregate publication gates.
type PublishedFlags struct {
	InternalMarks bool `json:"internal_marks"`
	ExternalMarks bool `json:"external_marks"`
}

// NewApprovalResponse converts an ApprovalStatus into a DTO.
func NewApprovalResponse(model models.ApprovalStatus) ApprovalResponse {
	return ApprovalResponse{
		CommitteeID: model.CommitteeID,
		SemesterID:  model.SemesterID,
		Internal: ApprovalDecision{
			State:     model.InternalMarkStatus,
			Approver:  model.InternalApprover,
			DecidedAt: model.InternalDecidedAt,
		},
		External: ApprovalDecision{
			State:     model.ExternalMarkStatus,
			Approver:  model.ExternalApprover,
			DecidedAt: model.ExternalDecidedAt,
		},
	}
}
