package dto

import (
	"time"

	"github.com/campushub/examcore-api/internal/models"
)

// InternalMarksRequest carries the four bounded internal components. Absent
// components are stored as null and count as zero toward the total.
type InternalMarksRequest struct {
	Test1      *float64 `json:"test1" validate:"omitempty,gte=0,lte=10"`
	Test2      *float64 `json:"test2" validate:"omitempty,gte=0,lte=10"`
	Test3      *float64 `json:"test3" validate:"omitempty,gte=0,lte=10"`
	Attendance *float64 `json:"attendance" validate:"omitempty,gte=0,lte=10"`
}

// ExternalMarkRequest carries one examiner's external mark. The slot is
// resolved server-side from the submitter's identity, never from the body.
type ExternalMarkRequest struct {
	Mark float64 `json:"mark" validate:"gte=0,lte=100"`
}

// InternalMarkResponse serializes an internal mark record.
type InternalMarkResponse struct {
	ExamID      uint               `json:"exam_id"`
	Test1       *float64           `json:"test1"`
	Test2       *float64           `json:"test2"`
	Test3       *float64           `json:"test3"`
	Attendance  *float64           `json:"attendance"`
	Total       float64            `json:"total"`
	SubmittedBy models.ExaminerRef `json:"submitted_by"`
	SubmittedAt *time.Time         `json:"submitted_at"`
}

// NewInternalMarkResponse converts an InternalMarkRecord into a DTO.
func NewInternalMarkResponse(model models.InternalMarkRecord) InternalMarkResponse {
	return InternalMarkResponse{
		ExamID:      model.ExamID,
		Test1:       model.Test1,
		Test2:       model.Test2,
		Test3:       model.Test3,
		Attendance:  model.Attendance,
		Total:       model.Total(),
		SubmittedBy: model.SubmittedBy,
		SubmittedAt: model.SubmittedAt,
	}
}

// ExternalSlotResponse serializes one slot of an external record with its
// provenance.
type ExternalSlotResponse struct {
	Mark        *float64           `json:"mark"`
	SubmittedBy models.ExaminerRef `json:"submitted_by"`
	SubmittedAt *time.Time         `json:"submitted_at"`
}

// ExternalMarkResponse serializes an external mark record.
type ExternalMarkResponse struct {
	ExamID                uint                 `json:"exam_id"`
	First                 ExternalSlotResponse `json:"first"`
	Second                ExternalSlotResponse `json:"second"`
	Third                 ExternalSlotResponse `json:"third"`
	ThirdExaminerRequired bool                 `json:"third_examiner_required"`
}

// NewExternalMarkResponse converts an ExternalMarkRecord into a DTO.
func NewExternalMarkResponse(model models.ExternalMarkRecord) ExternalMarkResponse {
	return ExternalMarkResponse{
		ExamID: model.ExamID,
		First: ExternalSlotResponse{
			Mark:        model.FirstExaminerMark,
			SubmittedBy: model.FirstSubmittedBy,
			SubmittedAt: model.FirstSubmittedAt,
		},
		Second: ExternalSlotResponse{
			Mark:        model.SecondExaminerMark,
			SubmittedBy: model.SecondSubmittedBy,
			SubmittedAt: model.SecondSubmittedAt,
		},
		Third: ExternalSlotResponse{
			Mark:        model.ThirdExaminerMark,
			SubmittedBy: model.ThirdSubmittedBy,
			SubmittedAt: model.ThirdSubmittedAt,
		},
		ThirdExaminerRequired: model.ThirdExaminerRequired,
	}
}
