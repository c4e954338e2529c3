package dto

import (
	"time"

	"github.com/campushub/examcore-api/internal/models"
)

// ImprovementCreateRequest requests a retake exam for a student.
type ImprovementCreateRequest struct {
	CourseAssignmentID uint `json:"course_assignment_id" validate:"required,gt=0"`
	StudentID          uint `json:"student_id" validate:"required,gt=0"`
}

// ExternalScoreResponse carries a resolved external score. Resolved is false
// when no mark has been submitted yet; the score is then meaningless and
// callers must not treat it as a zero.
type ExternalScoreResponse struct {
	ExamID   uint    `json:"exam_id"`
	Score    float64 `json:"score"`
	Resolved bool    `json:"resolved"`
}

// ExamStatusResponse carries the projected lifecycle state of an exam.
type ExamStatusResponse struct {
	ExamID uint              `json:"exam_id"`
	Status models.ExamStatus `json:"status"`
}

// ExamResponse is the full view of one exam: both ledgers, the projected
// status and the resolved external score.
type ExamResponse struct {
	ID               uint                  `json:"id"`
	Kind             models.ExamKind       `json:"kind"`
	Status           models.ExamStatus     `json:"status"`
	StudentID        uint                  `json:"student_id"`
	StudentName      string                `json:"student_name,omitempty"`
	CourseCode       string                `json:"course_code,omitempty"`
	CourseTitle      string                `json:"course_title,omitempty"`
	Assignment       AssignmentResponse    `json:"assignment"`
	InternalMarks    *InternalMarkResponse `json:"internal_marks,omitempty"`
	ExternalMarks    *ExternalMarkResponse `json:"external_marks,omitempty"`
	ExternalScore    ExternalScoreResponse `json:"external_score"`
	CreatedAt        time.Time             `json:"created_at"`
}

// NewExamResponse converts an Exam with preloaded ledgers into a DTO. The
// status and score are supplied by the caller, which recomputes them rather
// than trusting the stored column.
func NewExamResponse(model models.Exam, status models.ExamStatus, score ExternalScoreResponse) ExamResponse {
	response := ExamResponse{
		ID:            model.ID,
		Kind:          model.Kind,
		Status:        status,
		StudentID:     model.StudentID,
		StudentName:   model.Student.Name,
		CourseCode:    model.CourseAssignment.Course.Code,
		CourseTitle:   model.CourseAssignment.Course.Title,
		Assignment:    NewAssignmentResponse(model.CourseAssignment, 0),
		ExternalScore: score,
		CreatedAt:     model.CreatedAt,
	}
	if model.InternalMarks != nil {
		internal := NewInternalMarkResponse(*model.InternalMarks)
		response.InternalMarks = &internal
	}
	if model.ExternalMarks != nil {
		external := NewExternalMarkResponse(*model.ExternalMarks)
		response.ExternalMarks = &external
	}
	return response
}
