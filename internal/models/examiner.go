package models

// ExaminerKind discriminates the two disjoint examiner identity spaces.
type ExaminerKind string

const (
	// ExaminerKindInternal marks a faculty member of the offering department.
	ExaminerKindInternal ExaminerKind = "internal"
	// ExaminerKindExternal marks an examiner invited from outside the department.
	ExaminerKindExternal ExaminerKind = "external"
)

// ExaminerRef is a tagged reference to an examiner: an identity plus the kind
// that selects which identity space the id belongs to. The two spaces share
// no schema, so a bare id is meaningless without the kind.
type ExaminerRef struct {
	ExaminerID uint         `gorm:"column:id" json:"examiner_id"`
	Kind       ExaminerKind `gorm:"column:kind;size:16" json:"kind"`
}

// IsZero reports whether the reference points at nobody.
func (r ExaminerRef) IsZero() bool {
	return r.ExaminerID == 0
}

// Equal reports whether two references name the same examiner. Both the
// identity and the kind must match exactly.
func (r ExaminerRef) Equal(other ExaminerRef) bool {
	return !r.IsZero() && r.ExaminerID == other.ExaminerID && r.Kind == other.Kind
}

// ExaminerRole is the position an examiner holds on a course assignment.
type ExaminerRole string

const (
	RoleFirst        ExaminerRole = "first"
	RoleSecond       ExaminerRole = "second"
	RoleThird        ExaminerRole = "third"
	RoleUnauthorized ExaminerRole = "unauthorized"
)

// InternalExaminer is a directory record for department faculty.
type InternalExaminer struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255;uniqueIndex" json:"email"`
}

// ExternalExaminer is a directory record for invited examiners. It shares no
// schema with InternalExaminer beyond an identity and a name.
type ExternalExaminer struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Institution string `gorm:"size:255" json:"institution"`
}
