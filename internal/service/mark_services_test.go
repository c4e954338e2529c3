package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/observability"
)

func TestInternalMarkServiceSubmit(t *testing.T) {
	assignment := assignmentFixture(1)
	exam := examFixture(5, assignment)
	exams := newFakeExamRepo(exam)
	marks := newFakeMarkRepo()
	recorder := &fakeActivityRecorder{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewInternalMarkService(exams, marks, validate, recorder, testLogger())

	payload := dto.InternalMarksRequest{
		Test1:      floatPtr(8),
		Test2:      floatPtr(7.5),
		Attendance: floatPtr(9),
	}

	resp, err := svc.Submit(context.Background(), exam.ID, payload, internalRef(1))
	require.NoError(t, err)
	require.InDelta(t, 24.5, resp.Total, 1e-9)
	require.Equal(t, internalRef(1), resp.SubmittedBy)
	require.Nil(t, resp.Test3)
	require.Len(t, recorder.entries, 1)
	require.Equal(t, "internal_marks.submitted", recorder.entries[0].Action)
}

func TestInternalMarkServiceRejectsNonFirstExaminer(t *testing.T) {
	assignment := assignmentFixture(1)
	exam := examFixture(5, assignment)
	exams := newFakeExamRepo(exam)
	marks := newFakeMarkRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewInternalMarkService(exams, marks, validate, nil, testLogger())

	// The second examiner holds a slot but not the internal-ledger slot.
	_, err := svc.Submit(context.Background(), exam.ID, dto.InternalMarksRequest{Test1: floatPtr(5)}, externalRef(2))
	require.ErrorIs(t, err, ErrUnauthorizedExaminer)

	// Same numeric id under the wrong kind resolves to no slot.
	_, err = svc.Submit(context.Background(), exam.ID, dto.InternalMarksRequest{Test1: floatPtr(5)}, externalRef(1))
	require.ErrorIs(t, err, ErrUnauthorizedExaminer)
	require.Zero(t, marks.submissions)
}

func TestInternalMarkServiceFrozen(t *testing.T) {
	assignment := assignmentFixture(1)
	exam := examFixture(5, assignment)
	exams := newFakeExamRepo(exam)
	marks := newFakeMarkRepo()
	marks.frozenTypes[models.MarkTypeInternal] = true
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewInternalMarkService(exams, marks, validate, nil, testLogger())

	_, err := svc.Submit(context.Background(), exam.ID, dto.InternalMarksRequest{Test1: floatPtr(5)}, internalRef(1))
	require.ErrorIs(t, err, ErrMarksFrozen)
}

func TestInternalMarkServiceValidation(t *testing.T) {
	assignment := assignmentFixture(1)
	exam := examFixture(5, assignment)
	svc := NewInternalMarkService(newFakeExamRepo(exam), newFakeMarkRepo(), validator.New(validator.WithRequiredStructEnabled()), nil, testLogger())

	_, err := svc.Submit(context.Background(), exam.ID, dto.InternalMarksRequest{Test1: floatPtr(10.5)}, internalRef(1))
	require.Error(t, err)
}

func TestExternalMarkServiceSlotRouting(t *testing.T) {
	assignment := assignmentFixture(1)
	assignment.ThirdExaminer = externalRef(3)
	exam := examFixture(5, assignment)
	exams := newFakeExamRepo(exam)
	marks := newFakeMarkRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewExternalMarkService(exams, marks, validate, nil, 12, testLogger())

	_, err := svc.Submit(context.Background(), exam.ID, dto.ExternalMarkRequest{Mark: 70}, internalRef(1))
	require.NoError(t, err)

	resp, err := svc.Submit(context.Background(), exam.ID, dto.ExternalMarkRequest{Mark: 74}, externalRef(2))
	require.NoError(t, err)
	require.False(t, resp.ThirdExaminerRequired)
	require.Equal(t, floatPtr(70), resp.First.Mark)
	require.Equal(t, floatPtr(74), resp.Second.Mark)

	_, err = svc.Submit(context.Background(), exam.ID, dto.ExternalMarkRequest{Mark: 60}, externalRef(9))
	require.ErrorIs(t, err, ErrUnauthorizedExaminer)
}

func TestExternalMarkServiceEscalation(t *testing.T) {
	assignment := assignmentFixture(1)
	exam := examFixture(5, assignment)
	exams := newFakeExamRepo(exam)
	marks := newFakeMarkRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewExternalMarkService(exams, marks, validate, nil, 12, testLogger())

	before := testutil.ToFloat64(observability.Escalations())

	_, err := svc.Submit(context.Background(), exam.ID, dto.ExternalMarkRequest{Mark: 90}, internalRef(1))
	require.NoError(t, err)

	resp, err := svc.Submit(context.Background(), exam.ID, dto.ExternalMarkRequest{Mark: 60}, externalRef(2))
	require.NoError(t, err)
	require.True(t, resp.ThirdExaminerRequired)
	require.InDelta(t, before+1, testutil.ToFloat64(observability.Escalations()), 1e-9)

	// A rewrite after the latch is set must not count a second escalation.
	latched := marks.external[exam.ID]
	exam.ExternalMarks = &latched
	exams.exams[exam.ID] = exam

	resp, err = svc.Submit(context.Background(), exam.ID, dto.ExternalMarkRequest{Mark: 61}, externalRef(2))
	require.NoError(t, err)
	require.True(t, resp.ThirdExaminerRequired)
	require.InDelta(t, before+1, testutil.ToFloat64(observability.Escalations()), 1e-9)
}

func TestExternalMarkServiceFrozen(t *testing.T) {
	assignment := assignmentFixture(1)
	exam := examFixture(5, assignment)
	exams := newFakeExamRepo(exam)
	marks := newFakeMarkRepo()
	marks.frozenTypes[models.MarkTypeExternal] = true
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewExternalMarkService(exams, marks, validate, nil, 12, testLogger())

	_, err := svc.Submit(context.Background(), exam.ID, dto.ExternalMarkRequest{Mark: 70}, internalRef(1))
	require.ErrorIs(t, err, ErrMarksFrozen)
}

func TestExternalMarkServiceExamNotFound(t *testing.T) {
	svc := NewExternalMarkService(newFakeExamRepo(), newFakeMarkRepo(), validator.New(validator.WithRequiredStructEnabled()), nil, 12, testLogger())

	_, err := svc.Submit(context.Background(), 99, dto.ExternalMarkRequest{Mark: 70}, internalRef(1))
	require.ErrorIs(t, err, ErrExamNotFound)
}
