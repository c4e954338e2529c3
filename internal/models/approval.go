package models

import "time"

// MarkType selects which ledger an approval transition refers to.
type MarkType string

const (
	MarkTypeInternal MarkType = "internal"
	MarkTypeExternal MarkType = "external"
)

// MarkState is the approval state of one mark type for one
// (committee, semester).
type MarkState string

const (
	MarkStatePending  MarkState = "pending"
	MarkStateApproved MarkState = "approved"
	MarkStateRejected MarkState = "rejected"
)

// ApprovalStatus tracks internal- and external-mark approval independently
// for one (committee, semester) pair. Only the committee president may
// transition either field. Approval freezes further submissions for exams
// under the pair; rejection does not, and leaves re-approval to the
// president.
type ApprovalStatus struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	CommitteeID        uint          `gorm:"not null;index:idx_approval,unique" json:"committee_id"`
	SemesterID         uint          `gorm:"not null;index:idx_approval,unique" json:"semester_id"`
	InternalMarkStatus MarkState     `gorm:"size:16;not null;default:pending" json:"internal_mark_status"`
	InternalApprover   ExaminerRef   `gorm:"embedded;embeddedPrefix:internal_approver_" json:"internal_approver"`
	InternalDecidedAt  *time.Time    `json:"internal_decided_at"`
	ExternalMarkStatus MarkState     `gorm:"size:16;not null;default:pending" json:"external_mark_status"`
	ExternalApprover   ExaminerRef   `gorm:"embedded;embeddedPrefix:external_approver_" json:"external_approver"`
	ExternalDecidedAt  *time.Time    `json:"external_decided_at"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Committee          ExamCommittee `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"committee"`
	Semester           Semester      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"semester"`
}

// StateOf returns the approval state tracked for the given mark type.
func (s ApprovalStatus) StateOf(markType MarkType) MarkState {
	if markType == MarkTypeInternal {
		return s.InternalMarkStatus
	}
	return s.ExternalMarkStatus
}

// Frozen reports whether submissions of the given mark type are blocked.
func (s ApprovalStatus) Frozen(markType MarkType) bool {
	return s.StateOf(markType) == MarkStateApproved
}
