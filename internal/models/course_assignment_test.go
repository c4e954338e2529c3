package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRoleMatchesSlotInOrder(t *testing.T) {
	assignment := CourseAssignment{
		FirstExaminer:  ExaminerRef{ExaminerID: 1, Kind: ExaminerKindInternal},
		SecondExaminer: ExaminerRef{ExaminerID: 2, Kind: ExaminerKindExternal},
		ThirdExaminer:  ExaminerRef{ExaminerID: 3, Kind: ExaminerKindExternal},
	}

	require.Equal(t, RoleFirst, assignment.ResolveRole(ExaminerRef{ExaminerID: 1, Kind: ExaminerKindInternal}))
	require.Equal(t, RoleSecond, assignment.ResolveRole(ExaminerRef{ExaminerID: 2, Kind: ExaminerKindExternal}))
	require.Equal(t, RoleThird, assignment.ResolveRole(ExaminerRef{ExaminerID: 3, Kind: ExaminerKindExternal}))
}

func TestResolveRoleRequiresExactKindMatch(t *testing.T) {
	assignment := CourseAssignment{
		FirstExaminer:  ExaminerRef{ExaminerID: 1, Kind: ExaminerKindInternal},
		SecondExaminer: ExaminerRef{ExaminerID: 2, Kind: ExaminerKindExternal},
	}

	// Same identity, wrong identity space.
	require.Equal(t, RoleUnauthorized, assignment.ResolveRole(ExaminerRef{ExaminerID: 1, Kind: ExaminerKindExternal}))
	require.Equal(t, RoleUnauthorized, assignment.ResolveRole(ExaminerRef{ExaminerID: 9, Kind: ExaminerKindInternal}))
	require.Equal(t, RoleUnauthorized, assignment.ResolveRole(ExaminerRef{}))
}

func TestResolveRoleUnfilledThirdSlot(t *testing.T) {
	assignment := CourseAssignment{
		FirstExaminer:  ExaminerRef{ExaminerID: 1, Kind: ExaminerKindInternal},
		SecondExaminer: ExaminerRef{ExaminerID: 2, Kind: ExaminerKindExternal},
	}

	require.Equal(t, RoleUnauthorized, assignment.ResolveRole(ExaminerRef{ExaminerID: 3, Kind: ExaminerKindExternal}))
}

func TestSlotsDistinct(t *testing.T) {
	base := CourseAssignment{
		FirstExaminer:  ExaminerRef{ExaminerID: 1, Kind: ExaminerKindInternal},
		SecondExaminer: ExaminerRef{ExaminerID: 2, Kind: ExaminerKindExternal},
	}
	require.True(t, base.SlotsDistinct())

	duplicate := base
	duplicate.SecondExaminer = duplicate.FirstExaminer
	require.False(t, duplicate.SlotsDistinct())

	// Same identity in a different identity space is a distinct examiner.
	crossKind := base
	crossKind.SecondExaminer = ExaminerRef{ExaminerID: 1, Kind: ExaminerKindExternal}
	require.True(t, crossKind.SlotsDistinct())

	third := base
	third.ThirdExaminer = ExaminerRef{ExaminerID: 2, Kind: ExaminerKindExternal}
	require.False(t, third.SlotsDistinct())
}
