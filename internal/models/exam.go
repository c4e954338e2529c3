package models

import "time"

// ExamKind distinguishes a first sitting from a retake.
type ExamKind string

const (
	ExamKindRegular     ExamKind = "regular"
	ExamKindImprovement ExamKind = "improvement"
)

// ExamStatus is the coarse lifecycle state derived from ledger completeness.
// It is a projection, never a second source of truth: the stored column is a
// query convenience recomputed on every mark mutation.
type ExamStatus string

const (
	ExamStatusPending    ExamStatus = "pending"
	ExamStatusInProgress ExamStatus = "in_progress"
	ExamStatusCompleted  ExamStatus = "completed"
)

// Exam is one sitting of one student for one course assignment. At most one
// regular and one improvement exam may exist per (student, course).
type Exam struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	CourseAssignmentID uint               `gorm:"not null;index:idx_exam,unique" json:"course_assignment_id"`
	StudentID          uint               `gorm:"not null;index:idx_exam,unique" json:"student_id"`
	Kind               ExamKind           `gorm:"size:16;not null;index:idx_exam,unique" json:"kind"`
	Status             ExamStatus         `gorm:"size:16;not null" json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	CourseAssignment   CourseAssignment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course_assignment"`
	Student            Student            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	InternalMarks      *InternalMarkRecord `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"internal_marks,omitempty"`
	ExternalMarks      *ExternalMarkRecord `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"external_marks,omitempty"`
}

// InternalMarkRecord holds the internal-assessment components of an exam.
// Each component is bounded to [0,10]. Only the resolved first examiner of
// the exam's course assignment may write it, and resubmission overwrites the
// whole record (last write wins).
type InternalMarkRecord struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ExamID      uint        `gorm:"not null;uniqueIndex" json:"exam_id"`
	Test1       *float64    `json:"test1"`
	Test2       *float64    `json:"test2"`
	Test3       *float64    `json:"test3"`
	Attendance  *float64    `json:"attendance"`
	SubmittedBy ExaminerRef `gorm:"embedded;embeddedPrefix:submitted_by_" json:"submitted_by"`
	SubmittedAt *time.Time  `json:"submitted_at"`
	// SeededAt is set when the record is copied from the regular exam at
	// improvement creation. The first submission to the improvement exam
	// clears it; a record still carrying it has never been written to.
	SeededAt *time.Time `json:"seeded_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Submitted reports whether the internal examiner has handed in the record.
func (r InternalMarkRecord) Submitted() bool {
	return r.SubmittedAt != nil
}

// Total sums the present components; an absent component counts as zero.
func (r InternalMarkRecord) Total() float64 {
	var total float64
	for _, component := range []*float64{r.Test1, r.Test2, r.Test3, r.Attendance} {
		if component != nil {
			total += *component
		}
	}
	return total
}

// ExternalMarkRecord holds up to three external marks for an exam, one per
// examiner slot. Each slot carries independent submission provenance and is
// only ever written by its own examiner. ThirdExaminerRequired is a one-way
// latch set when the first two marks disagree beyond the escalation
// threshold; it is never cleared automatically.
type ExternalMarkRecord struct {
	ID                    uint        `gorm:"primaryKey" json:"id"`
	ExamID                uint        `gorm:"not null;uniqueIndex" json:"exam_id"`
	FirstExaminerMark     *float64    `json:"first_examiner_mark"`
	FirstSubmittedBy      ExaminerRef `gorm:"embedded;embeddedPrefix:first_submitted_by_" json:"first_submitted_by"`
	FirstSubmittedAt      *time.Time  `json:"first_submitted_at"`
	SecondExaminerMark    *float64    `json:"second_examiner_mark"`
	SecondSubmittedBy     ExaminerRef `gorm:"embedded;embeddedPrefix:second_submitted_by_" json:"second_submitted_by"`
	SecondSubmittedAt     *time.Time  `json:"second_submitted_at"`
	ThirdExaminerMark     *float64    `json:"third_examiner_mark"`
	ThirdSubmittedBy      ExaminerRef `gorm:"embedded;embeddedPrefix:third_submitted_by_" json:"third_submitted_by"`
	ThirdSubmittedAt      *time.Time  `json:"third_submitted_at"`
	ThirdExaminerRequired bool        `gorm:"not null;default:false" json:"third_examiner_required"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// MarkForRole returns the mark written by the given slot, or nil.
func (r ExternalMarkRecord) MarkForRole(role ExaminerRole) *float64 {
	switch role {
	case RoleFirst:
		return r.FirstExaminerMark
	case RoleSecond:
		return r.SecondExaminerMark
	case RoleThird:
		return r.ThirdExaminerMark
	default:
		return nil
	}
}

// PresentMarks counts how many slots have been written.
func (r ExternalMarkRecord) PresentMarks() int {
	count := 0
	for _, mark := range []*float64{r.FirstExaminerMark, r.SecondExaminerMark, r.ThirdExaminerMark} {
		if mark != nil {
			count++
		}
	}
	return count
}
