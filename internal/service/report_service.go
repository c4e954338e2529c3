package service

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/grading"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/repository"
)

// ReportService renders per-student result reports with a credit-weighted
// GPA over counted courses.
type ReportService interface {
	StudentReport(ctx context.Context, studentID uint, includeUnapproved bool) (dto.StudentReportResponse, error)
}

type reportService struct {
	exams     repository.ExamRepository
	approvals repository.ApprovalRepository
	directory repository.DirectoryRepository
	cache     ReportCache
	logger    zerolog.Logger
}

// NewReportService constructs the report service.
func NewReportService(exams repository.ExamRepository, approvals repository.ApprovalRepository, directory repository.DirectoryRepository, cache ReportCache, logger zerolog.Logger) ReportService {
	return &reportService{
		exams:     exams,
		approvals: approvals,
		directory: directory,
		cache:     cache,
		logger:    logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) StudentReport(ctx context.Context, studentID uint, includeUnapproved bool) (dto.StudentReportResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, studentID, includeUnapproved); ok {
			cached.CacheHit = true
			return cached, nil
		}
	}

	student, err := s.directory.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentReportResponse{}, ErrStudentNotFound
		}
		return dto.StudentReportResponse{}, err
	}

	exams, err := s.exams.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentReportResponse{}, err
	}

	report := dto.StudentReportResponse{
		StudentID:          student.ID,
		StudentName:        student.Name,
		Roll:               student.Roll,
		Results:            make([]dto.CourseResult, 0, len(exams)),
		IncludesUnapproved: includeUnapproved,
	}

	approvalCache := map[[2]uint]models.ApprovalStatus{}
	// bestByCourse tracks which row of a course carries the GPA when both
	// a regular and an improvement attempt have grades.
	bestByCourse := map[uint]int{}

	for _, exam := range exams {
		assignment := exam.CourseAssignment
		course := assignment.Course

		result := dto.CourseResult{
			CourseID:    course.ID,
			CourseCode:  course.Code,
			CourseTitle: course.Title,
			Credits:     course.Credits,
			ExamKind:    string(exam.Kind),
			Letter:      grading.GradeNotAvailable,
		}

		if exam.InternalMarks != nil && exam.InternalMarks.Submitted() {
			total := exam.InternalMarks.Total()
			result.InternalTotal = &total
		}
		if exam.ExternalMarks != nil {
			if score, resolved := grading.ResolveExternal(*exam.ExternalMarks); resolved {
				result.ExternalScore = &score
			}
		}
		if result.InternalTotal != nil && result.ExternalScore != nil {
			total := *result.InternalTotal + *result.ExternalScore
			result.Total = &total
			result.Letter, result.Point = grading.GradeOf(total)
		}

		result.Approved = s.approved(ctx, approvalCache, assignment.CommitteeID, assignment.SemesterID)
		// Only approved grades ever count toward the GPA. The unapproved
		// preview adds the pending rows to the report but leaves them
		// flagged as not counted.
		result.Counted = result.Total != nil && result.Approved
		if !result.Approved && !includeUnapproved {
			continue
		}

		report.Results = append(report.Results, result)
		index := len(report.Results) - 1

		if !result.Counted {
			continue
		}
		// An improvement attempt replaces the regular grade in the GPA only
		// when it is actually better; the student keeps the higher of the
		// two grade points.
		if prev, seen := bestByCourse[course.ID]; seen {
			if result.Point > report.Results[prev].Point {
				report.Results[prev].Counted = false
				bestByCourse[course.ID] = index
			} else {
				report.Results[index].Counted = false
			}
		} else {
			bestByCourse[course.ID] = index
		}
	}

	var weighted, credits float64
	for _, result := range report.Results {
		if !result.Counted {
			continue
		}
		weighted += result.Point * result.Credits
		credits += result.Credits
	}
	if credits > 0 {
		report.GPA = math.Round(weighted/credits*100) / 100
	}
	report.TotalCredits = credits

	if s.cache != nil {
		s.cache.Set(ctx, studentID, includeUnapproved, report)
	}

	return report, nil
}

// approved reports whether both mark types are approved for the pair. A
// missing approval record means nothing has been approved yet.
func (s *reportService) approved(ctx context.Context, cache map[[2]uint]models.ApprovalStatus, committeeID, semesterID uint) bool {
	key := [2]uint{committeeID, semesterID}
	status, ok := cache[key]
	if !ok {
		loaded, err := s.approvals.GetByCommitteeSemester(ctx, committeeID, semesterID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn().Err(err).
					Uint("committee_id", committeeID).
					Uint("semester_id", semesterID).
					Msg("failed to load approval record")
			}
			cache[key] = models.ApprovalStatus{}
			return false
		}
		status = loaded
		cache[key] = loaded
	}
	return status.Frozen(models.MarkTypeInternal) && status.Frozen(models.MarkTypeExternal)
}
