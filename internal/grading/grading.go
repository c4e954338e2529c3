// Package grading holds the pure evaluation rules shared by every reporting
// and approval path: external-mark resolution, third-examiner escalation,
// exam status projection and the letter-grade scale. Keeping them here means
// no two call sites can disagree on the same exam's score.
package grading

import (
	"math"

	"github.com/campushub/examcore-api/internal/models"
)

// DefaultEscalationThreshold is the policy difference, on the 0-100 external
// scale, beyond which two external marks are considered in disagreement. It
// is injected through configuration so tests can exercise boundary values.
const DefaultEscalationThreshold = 12.0

// GradeNotAvailable is reported when an exam has no resolvable total.
const GradeNotAvailable = "N/A"

// Band is one row of the letter-grade scale: a closed lower bound with its
// letter and grade point.
type Band struct {
	Min    float64 `json:"min"`
	Letter string  `json:"letter"`
	Point  float64 `json:"point"`
}

var scale = []Band{
	{Min: 80, Letter: "A+", Point: 4.00},
	{Min: 75, Letter: "A", Point: 3.75},
	{Min: 70, Letter: "A-", Point: 3.50},
	{Min: 65, Letter: "B+", Point: 3.25},
	{Min: 60, Letter: "B", Point: 3.00},
	{Min: 55, Letter: "B-", Point: 2.75},
	{Min: 50, Letter: "C+", Point: 2.50},
	{Min: 45, Letter: "C", Point: 2.25},
	{Min: 40, Letter: "D", Point: 2.00},
}

// Scale returns a copy of the grade scale in descending threshold order.
func Scale() []Band {
	bands := make([]Band, len(scale))
	copy(bands, scale)
	return bands
}

// GradeOf maps a combined internal+external total to its letter grade and
// grade point. Bands are closed at the lower bound, so a total of exactly 80
// earns an A+ and 39.99 falls through to F.
func GradeOf(total float64) (string, float64) {
	for _, band := range scale {
		if total >= band.Min {
			return band.Letter, band.Point
		}
	}
	return "F", 0
}

// NeedsThirdExaminer reports whether the disagreement between the first and
// second external marks exceeds the escalation threshold. The comparison is
// strict: a difference of exactly the threshold does not escalate.
func NeedsThirdExaminer(first, second, threshold float64) bool {
	return math.Abs(first-second) > threshold
}

// ResolveExternal collapses the marks of an external record into a single
// score. The boolean reports whether a score could be resolved at all: a
// record with no marks yields (0, false) rather than a legitimate zero, so
// callers can surface "N/A" instead of silently averaging in a zero.
//
// One mark resolves to itself. Two marks resolve to their mean. Three marks
// resolve to the mean of the closest pair, with ties broken by preferring
// first-second, then first-third, then second-third; the third mark only
// ever enters the average when it forms the closest pair.
func ResolveExternal(record models.ExternalMarkRecord) (float64, bool) {
	present := make([]float64, 0, 3)
	for _, mark := range []*float64{record.FirstExaminerMark, record.SecondExaminerMark, record.ThirdExaminerMark} {
		if mark != nil {
			present = append(present, *mark)
		}
	}

	switch len(present) {
	case 0:
		return 0, false
	case 1:
		return present[0], true
	case 2:
		return (present[0] + present[1]) / 2, true
	}

	first := *record.FirstExaminerMark
	second := *record.SecondExaminerMark
	third := *record.ThirdExaminerMark

	pairs := []struct {
		diff float64
		mean float64
	}{
		{math.Abs(first - second), (first + second) / 2},
		{math.Abs(first - third), (first + third) / 2},
		{math.Abs(second - third), (second + third) / 2},
	}

	best := pairs[0]
	for _, pair := range pairs[1:] {
		if pair.diff < best.diff {
			best = pair
		}
	}
	return best.mean, true
}

// ProjectStatus derives the exam lifecycle state from ledger completeness.
// It is a pure function of the two records and must be recomputed after
// every mark write; a stored status column is never trusted across a
// mutation without recomputation.
func ProjectStatus(internal *models.InternalMarkRecord, external *models.ExternalMarkRecord) models.ExamStatus {
	internalSubmitted := internal != nil && internal.Submitted()

	externalPresent := 0
	externalComplete := false
	if external != nil {
		externalPresent = external.PresentMarks()
		if external.ThirdExaminerRequired {
			externalComplete = externalPresent == 3
		} else {
			externalComplete = external.FirstExaminerMark != nil && external.SecondExaminerMark != nil
		}
	}

	switch {
	case internalSubmitted && externalComplete:
		return models.ExamStatusCompleted
	case internalSubmitted || externalPresent > 0:
		return models.ExamStatusInProgress
	default:
		return models.ExamStatusPending
	}
}
