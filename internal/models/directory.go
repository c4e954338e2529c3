package models

import "time"

// Student represents an enrolled learner. Read-only to the evaluation engine.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Roll      string    `gorm:"size:32;uniqueIndex;not null" json:"roll"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Course is a catalogue entry. Credits weight the course in GPA calculation.
type Course struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Code    string  `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Title   string  `gorm:"size:255;not null" json:"title"`
	Credits float64 `gorm:"not null" json:"credits"`
}

// Semester identifies an academic term.
type Semester struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null" json:"name"`
	Year int    `gorm:"not null" json:"year"`
}

// ExamCommittee administers one or more course assignments. The published
// flags are aggregates over the committee's per-semester approval records and
// are the sole gate on student visibility of marks.
type ExamCommittee struct {
	ID                     uint        `gorm:"primaryKey" json:"id"`
	Name                   string      `gorm:"size:255;not null" json:"name"`
	President              ExaminerRef `gorm:"embedded;embeddedPrefix:president_" json:"president"`
	InternalMarksPublished bool        `gorm:"not null;default:false" json:"internal_marks_published"`
	ExternalMarksPublished bool        `gorm:"not null;default:false" json:"external_marks_published"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// Enrollment binds a student to a course in a semester. It drives the exam
// fan-out when a course assignment is created.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;index:idx_enrollment,unique" json:"student_id"`
	CourseID   uint      `gorm:"not null;index:idx_enrollment,unique" json:"course_id"`
	SemesterID uint      `gorm:"not null;index:idx_enrollment,unique" json:"semester_id"`
	CreatedAt  time.Time `json:"created_at"`
	Student    Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Course     Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}
