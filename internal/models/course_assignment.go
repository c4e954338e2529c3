package models

import "time"

// CourseAssignment binds one course, one semester and one exam committee to
// three examiner slots. Slots one and two are mandatory; slot three is filled
// only through escalation or explicit assignment, and an unset slot carries a
// zero ExaminerRef. The examiner set is immutable except for slot updates by
// an administrator; the grading engine never mutates it.
type CourseAssignment struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CourseID       uint          `gorm:"not null;index" json:"course_id"`
	SemesterID     uint          `gorm:"not null;index" json:"semester_id"`
	CommitteeID    uint          `gorm:"not null;index" json:"committee_id"`
	FirstExaminer  ExaminerRef   `gorm:"embedded;embeddedPrefix:first_examiner_" json:"first_examiner"`
	SecondExaminer ExaminerRef   `gorm:"embedded;embeddedPrefix:second_examiner_" json:"second_examiner"`
	ThirdExaminer  ExaminerRef   `gorm:"embedded;embeddedPrefix:third_examiner_" json:"third_examiner"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Course         Course        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	Semester       Semester      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"semester"`
	Committee      ExamCommittee `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"committee"`
}

// ResolveRole determines which slot, if any, the given examiner holds on this
// assignment. Slots are compared in order first, second, third and the first
// exact (identity, kind) match wins.
func (a CourseAssignment) ResolveRole(ref ExaminerRef) ExaminerRole {
	switch {
	case a.FirstExaminer.Equal(ref):
		return RoleFirst
	case a.SecondExaminer.Equal(ref):
		return RoleSecond
	case a.ThirdExaminer.Equal(ref):
		return RoleThird
	default:
		return RoleUnauthorized
	}
}

// SlotsDistinct reports whether every filled slot references a distinct
// (identity, kind) pair.
func (a CourseAssignment) SlotsDistinct() bool {
	if a.FirstExaminer.Equal(a.SecondExaminer) {
		return false
	}
	if !a.ThirdExaminer.IsZero() {
		if a.ThirdExaminer.Equal(a.FirstExaminer) || a.ThirdExaminer.Equal(a.SecondExaminer) {
			return false
		}
	}
	return true
}
