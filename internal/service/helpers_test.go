package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func floatPtr(v float64) *float64 {
	return &v
}

func internalRef(id uint) models.ExaminerRef {
	return models.ExaminerRef{ExaminerID: id, Kind: models.ExaminerKindInternal}
}

func externalRef(id uint) models.ExaminerRef {
	return models.ExaminerRef{ExaminerID: id, Kind: models.ExaminerKindExternal}
}

type fakeExamRepo struct {
	exams        map[uint]models.Exam
	improvements map[uint]uint
	created      *models.Exam
	createdSeed  models.InternalMarkRecord
	deleted      []uint
	deleteErr    error
}

func newFakeExamRepo(exams ...models.Exam) *fakeExamRepo {
	repo := &fakeExamRepo{exams: map[uint]models.Exam{}, improvements: map[uint]uint{}}
	for _, exam := range exams {
		repo.exams[exam.ID] = exam
	}
	return repo
}

func (r *fakeExamRepo) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	exam, ok := r.exams[id]
	if !ok {
		return models.Exam{}, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (r *fakeExamRepo) FindImprovement(ctx context.Context, assignmentID, studentID uint) (models.Exam, error) {
	for _, exam := range r.exams {
		if exam.CourseAssignmentID == assignmentID && exam.StudentID == studentID && exam.Kind == models.ExamKindImprovement {
			return exam, nil
		}
	}
	return models.Exam{}, gorm.ErrRecordNotFound
}

func (r *fakeExamRepo) FindRegularByCourseAndStudent(ctx context.Context, courseID, studentID uint) (models.Exam, error) {
	for _, exam := range r.exams {
		if exam.CourseAssignment.CourseID == courseID && exam.StudentID == studentID && exam.Kind == models.ExamKindRegular {
			return exam, nil
		}
	}
	return models.Exam{}, gorm.ErrRecordNotFound
}

func (r *fakeExamRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Exam, error) {
	var out []models.Exam
	for id := uint(1); id <= uint(len(r.exams))+10; id++ {
		exam, ok := r.exams[id]
		if !ok || exam.StudentID != studentID {
			continue
		}
		out = append(out, exam)
	}
	return out, nil
}

func (r *fakeExamRepo) ListRegularStudentIDsByCourse(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	for _, exam := range r.exams {
		if exam.CourseAssignment.CourseID == courseID && exam.Kind == models.ExamKindRegular {
			ids = append(ids, exam.StudentID)
		}
	}
	return ids, nil
}

func (r *fakeExamRepo) CreateImprovement(ctx context.Context, exam *models.Exam, seed models.InternalMarkRecord) error {
	exam.ID = uint(len(r.exams) + 1)
	seed.ExamID = exam.ID
	exam.InternalMarks = &seed
	r.exams[exam.ID] = *exam
	r.created = exam
	r.createdSeed = seed
	return nil
}

func (r *fakeExamRepo) DeleteImprovement(ctx context.Context, examID uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.exams, examID)
	r.deleted = append(r.deleted, examID)
	return nil
}

type fakeMarkRepo struct {
	internal    map[uint]models.InternalMarkRecord
	external    map[uint]models.ExternalMarkRecord
	frozenTypes map[models.MarkType]bool
	submissions int
}

func newFakeMarkRepo() *fakeMarkRepo {
	return &fakeMarkRepo{
		internal:    map[uint]models.InternalMarkRecord{},
		external:    map[uint]models.ExternalMarkRecord{},
		frozenTypes: map[models.MarkType]bool{},
	}
}

func (r *fakeMarkRepo) GetInternalByExamID(ctx context.Context, examID uint) (models.InternalMarkRecord, error) {
	record, ok := r.internal[examID]
	if !ok {
		return models.InternalMarkRecord{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *fakeMarkRepo) GetExternalByExamID(ctx context.Context, examID uint) (models.ExternalMarkRecord, error) {
	record, ok := r.external[examID]
	if !ok {
		return models.ExternalMarkRecord{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *fakeMarkRepo) SubmitInternal(ctx context.Context, exam models.Exam, write repository.InternalMarkWrite, project repository.StatusProjector) (models.InternalMarkRecord, error) {
	if r.frozenTypes[models.MarkTypeInternal] {
		return models.InternalMarkRecord{}, repository.ErrMarksFrozen
	}
	submittedAt := write.SubmittedAt
	record := models.InternalMarkRecord{
		ExamID:      exam.ID,
		Test1:       write.Test1,
		Test2:       write.Test2,
		Test3:       write.Test3,
		Attendance:  write.Attendance,
		SubmittedBy: write.Submitter,
		SubmittedAt: &submittedAt,
	}
	r.internal[exam.ID] = record
	r.submissions++
	return record, nil
}

func (r *fakeMarkRepo) SubmitExternalSlot(ctx context.Context, exam models.Exam, write repository.ExternalSlotWrite, project repository.StatusProjector) (models.ExternalMarkRecord, error) {
	if r.frozenTypes[models.MarkTypeExternal] {
		return models.ExternalMarkRecord{}, repository.ErrMarksFrozen
	}
	record := r.external[exam.ID]
	record.ExamID = exam.ID
	submittedAt := write.SubmittedAt
	switch write.Role {
	case models.RoleFirst:
		record.FirstExaminerMark = &write.Mark
		record.FirstSubmittedBy = write.Submitter
		record.FirstSubmittedAt = &submittedAt
	case models.RoleSecond:
		record.SecondExaminerMark = &write.Mark
		record.SecondSubmittedBy = write.Submitter
		record.SecondSubmittedAt = &submittedAt
		if record.FirstExaminerMark != nil && write.Escalate != nil && write.Escalate(*record.FirstExaminerMark, write.Mark) {
			record.ThirdExaminerRequired = true
		}
	case models.RoleThird:
		record.ThirdExaminerMark = &write.Mark
		record.ThirdSubmittedBy = write.Submitter
		record.ThirdSubmittedAt = &submittedAt
	}
	r.external[exam.ID] = record
	r.submissions++
	return record, nil
}

type fakeAssignmentRepo struct {
	assignments map[uint]models.CourseAssignment
	createdWith []uint
}

func newFakeAssignmentRepo(assignments ...models.CourseAssignment) *fakeAssignmentRepo {
	repo := &fakeAssignmentRepo{assignments: map[uint]models.CourseAssignment{}}
	for _, assignment := range assignments {
		repo.assignments[assignment.ID] = assignment
	}
	return repo
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (models.CourseAssignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return models.CourseAssignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *fakeAssignmentRepo) CreateWithExams(ctx context.Context, assignment *models.CourseAssignment, studentIDs []uint) error {
	assignment.ID = uint(len(r.assignments) + 1)
	r.assignments[assignment.ID] = *assignment
	r.createdWith = studentIDs
	return nil
}

func (r *fakeAssignmentRepo) UpdateThirdExaminer(ctx context.Context, id uint, ref models.ExaminerRef) (models.CourseAssignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return models.CourseAssignment{}, gorm.ErrRecordNotFound
	}
	assignment.ThirdExaminer = ref
	r.assignments[id] = assignment
	return assignment, nil
}

func (r *fakeAssignmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.CourseAssignment, error) {
	var out []models.CourseAssignment
	for _, assignment := range r.assignments {
		if assignment.CourseID == courseID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

type fakeDirectoryRepo struct {
	students    map[uint]models.Student
	courses     map[uint]models.Course
	committees  map[uint]models.ExamCommittee
	semesters   map[uint]models.Semester
	enrollments []models.Enrollment
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{
		students:   map[uint]models.Student{},
		courses:    map[uint]models.Course{},
		committees: map[uint]models.ExamCommittee{},
		semesters:  map[uint]models.Semester{},
	}
}

func (r *fakeDirectoryRepo) GetStudent(ctx context.Context, id uint) (models.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (r *fakeDirectoryRepo) GetCourse(ctx context.Context, id uint) (models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (r *fakeDirectoryRepo) GetCommittee(ctx context.Context, id uint) (models.ExamCommittee, error) {
	committee, ok := r.committees[id]
	if !ok {
		return models.ExamCommittee{}, gorm.ErrRecordNotFound
	}
	return committee, nil
}

func (r *fakeDirectoryRepo) GetSemester(ctx context.Context, id uint) (models.Semester, error) {
	semester, ok := r.semesters[id]
	if !ok {
		return models.Semester{}, gorm.ErrRecordNotFound
	}
	return semester, nil
}

func (r *fakeDirectoryRepo) ListEnrollments(ctx context.Context, courseID, semesterID uint) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, enrollment := range r.enrollments {
		if enrollment.CourseID == courseID && enrollment.SemesterID == semesterID {
			out = append(out, enrollment)
		}
	}
	return out, nil
}

func (r *fakeDirectoryRepo) ListEnrollmentsByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, enrollment := range r.enrollments {
		if enrollment.StudentID == studentID {
			out = append(out, enrollment)
		}
	}
	return out, nil
}

type fakeApprovalRepo struct {
	statuses    map[[2]uint]models.ApprovalStatus
	publishNext bool
	transitions []repository.ApprovalTransition
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{statuses: map[[2]uint]models.ApprovalStatus{}}
}

func (r *fakeApprovalRepo) put(status models.ApprovalStatus) {
	r.statuses[[2]uint{status.CommitteeID, status.SemesterID}] = status
}

func (r *fakeApprovalRepo) Create(ctx context.Context, status *models.ApprovalStatus) error {
	status.ID = uint(len(r.statuses) + 1)
	r.put(*status)
	return nil
}

func (r *fakeApprovalRepo) GetByCommitteeSemester(ctx context.Context, committeeID, semesterID uint) (models.ApprovalStatus, error) {
	status, ok := r.statuses[[2]uint{committeeID, semesterID}]
	if !ok {
		return models.ApprovalStatus{}, gorm.ErrRecordNotFound
	}
	return status, nil
}

func (r *fakeApprovalRepo) ListByCommittee(ctx context.Context, committeeID uint) ([]models.ApprovalStatus, error) {
	var out []models.ApprovalStatus
	for _, status := range r.statuses {
		if status.CommitteeID == committeeID {
			out = append(out, status)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) Transition(ctx context.Context, committeeID, semesterID uint, transition repository.ApprovalTransition) (models.ApprovalStatus, bool, error) {
	status, ok := r.statuses[[2]uint{committeeID, semesterID}]
	if !ok {
		return models.ApprovalStatus{}, false, gorm.ErrRecordNotFound
	}
	decidedAt := transition.DecidedAt
	if transition.MarkType == models.MarkTypeInternal {
		status.InternalMarkStatus = transition.NewState
		status.InternalApprover = transition.Approver
		status.InternalDecidedAt = &decidedAt
	} else {
		status.ExternalMarkStatus = transition.NewState
		status.ExternalApprover = transition.Approver
		status.ExternalDecidedAt = &decidedAt
	}
	r.put(status)
	r.transitions = append(r.transitions, transition)
	published := r.publishNext && transition.NewState == models.MarkStateApproved
	r.publishNext = false
	return status, published, nil
}

type fakeActivityRecorder struct {
	entries []ActivityEntry
}

func (r *fakeActivityRecorder) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	r.entries = append(r.entries, entry)
	return dto.ActivityResponse{}, nil
}

type fakePublisher struct {
	events []PublicationEvent
}

func (p *fakePublisher) PublishMarksPublished(event PublicationEvent) {
	p.events = append(p.events, event)
}

type noopCache struct {
	invalidations int
}

func (c *noopCache) Get(ctx context.Context, studentID uint, includeUnapproved bool) (dto.StudentReportResponse, bool) {
	return dto.StudentReportResponse{}, false
}

func (c *noopCache) Set(ctx context.Context, studentID uint, includeUnapproved bool, report dto.StudentReportResponse) {
}

func (c *noopCache) Invalidate(ctx context.Context) {
	c.invalidations++
}

func assignmentFixture(id uint) models.CourseAssignment {
	return models.CourseAssignment{
		ID:             id,
		CourseID:       10,
		SemesterID:     20,
		CommitteeID:    30,
		FirstExaminer:  internalRef(1),
		SecondExaminer: externalRef(2),
		Course:         models.Course{ID: 10, Code: "CSE-301", Title: "Operating Systems", Credits: 3},
	}
}

func examFixture(id uint, assignment models.CourseAssignment) models.Exam {
	return models.Exam{
		ID:                 id,
		CourseAssignmentID: assignment.ID,
		StudentID:          100,
		Kind:               models.ExamKindRegular,
		Status:             models.ExamStatusPending,
		CourseAssignment:   assignment,
		Student:            models.Student{ID: 100, Roll: "18-301", Name: "Rahim Uddin"},
		CreatedAt:          time.Now(),
	}
}
