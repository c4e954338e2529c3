package dto

// CourseResult is one row of a student report: the resolved grade for one
// course, with the approval provenance that decides whether it counts toward
// the official GPA.
type CourseResult struct {
	CourseID      uint     `json:"course_id"`
	CourseCode    string   `json:"course_code"`
	CourseTitle   string   `json:"course_title"`
	Credits       float64  `json:"credits"`
	ExamKind      string   `json:"exam_kind"`
	InternalTotal *float64 `json:"internal_total"`
	ExternalScore *float64 `json:"external_score"`
	Total         *float64 `json:"total"`
	Letter        string   `json:"letter"`
	Point         float64  `json:"point"`
	Approved      bool     `json:"approved"`
	Counted       bool     `json:"counted"`
}

// StudentReportResponse aggregates a student's results with the
// credit-weighted GPA over counted courses.
type StudentReportResponse struct {
	StudentID          uint           `json:"student_id"`
	StudentName        string         `json:"student_name"`
	Roll               string         `json:"roll"`
	Results            []CourseResult `json:"results"`
	GPA                float64        `json:"gpa"`
	TotalCredits       float64        `json:"total_credits"`
	IncludesUnapproved bool           `json:"includes_unapproved"`
	CacheHit           bool           `json:"cache_hit,omitempty"`
}
