package dto

import (
	"time"

	"github.com/campushub/examcore-api/internal/models"
)

// ExaminerRefPayload is the wire form of a tagged examiner reference.
type ExaminerRefPayload struct {
	ExaminerID uint   `json:"examiner_id" validate:"required,gt=0"`
	Kind       string `json:"kind" validate:"required,oneof=internal external"`
}

// ToRef converts the payload into the model reference.
func (p ExaminerRefPayload) ToRef() models.ExaminerRef {
	return models.ExaminerRef{
		ExaminerID: p.ExaminerID,
		Kind:       models.ExaminerKind(p.Kind),
	}
}

// AssignmentCreateRequest creates a course assignment and fans out one
// regular exam per enrolled student.
type AssignmentCreateRequest struct {
	CourseID       uint                `json:"course_id" validate:"required,gt=0"`
	SemesterID     uint                `json:"semester_id" validate:"required,gt=0"`
	CommitteeID    uint                `json:"committee_id" validate:"required,gt=0"`
	FirstExaminer  ExaminerRefPayload  `json:"first_examiner" validate:"required"`
	SecondExaminer ExaminerRefPayload  `json:"second_examiner" validate:"required"`
	ThirdExaminer  *ExaminerRefPayload `json:"third_examiner" validate:"omitempty"`
}

// ThirdExaminerRequest fills the optional third slot of an assignment.
type ThirdExaminerRequest struct {
	Examiner ExaminerRefPayload `json:"examiner" validate:"required"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID             uint               `json:"id"`
	CourseID       uint               `json:"course_id"`
	CourseCode     string             `json:"course_code,omitempty"`
	SemesterID     uint               `json:"semester_id"`
	CommitteeID    uint               `json:"committee_id"`
	FirstExaminer  models.ExaminerRef `json:"first_examiner"`
	SecondExaminer models.ExaminerRef `json:"second_examiner"`
	ThirdExaminer  *models.ExaminerRef `json:"third_examiner,omitempty"`
	ExamsCreated   int                `json:"exams_created,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewAssignmentResponse converts a CourseAssignment model into a DTO.
func NewAssignmentResponse(model models.CourseAssignment, examsCreated int) AssignmentResponse {
	response := AssignmentResponse{
		ID:             model.ID,
		CourseID:       model.CourseID,
		CourseCode:     model.Course.Code,
		SemesterID:     model.SemesterID,
		CommitteeID:    model.CommitteeID,
		FirstExaminer:  model.FirstExaminer,
		SecondExaminer: model.SecondExaminer,
		ExamsCreated:   examsCreated,
		CreatedAt:      model.CreatedAt,
	}
	if !model.ThirdExaminer.IsZero() {
		third := model.ThirdExaminer
		response.ThirdExaminer = &third
	}
	return response
}
