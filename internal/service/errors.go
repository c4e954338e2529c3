package service

import "errors"

// Not-found errors, surfaced as 404 by the handlers.
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrAssignmentNotFound = errors.New("course assignment not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrCommitteeNotFound  = errors.New("exam committee not found")
	ErrApprovalNotFound   = errors.New("approval record not found")
	ErrNoRegularExam      = errors.New("no regular exam exists for this course and student")
)

// Authorization errors, surfaced as 403.
var (
	// ErrUnauthorizedExaminer means the submitter resolves to no slot of the
	// exam's course assignment, or to a slot without the required write access.
	ErrUnauthorizedExaminer = errors.New("examiner not authorized for this exam")
	// ErrMarksFrozen means the semester's marks were approved and the ledger
	// no longer accepts submissions.
	ErrMarksFrozen = errors.New("marks are frozen by an approved semester")
	// ErrNotPresident means the actor is not the committee's president.
	ErrNotPresident = errors.New("only the committee president may transition approval")
)

// Conflict errors, surfaced as 409.
var (
	ErrDuplicateImprovement     = errors.New("improvement exam already exists")
	ErrImprovementHasMarks      = errors.New("improvement exam has submitted marks")
	ErrNotImprovementExam       = errors.New("exam is not an improvement exam")
	ErrApprovalFinal            = errors.New("approved marks cannot be transitioned again")
	ErrExaminerSlotsNotDistinct = errors.New("examiner slots must reference distinct examiners")
)
