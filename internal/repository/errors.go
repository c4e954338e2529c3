package repository

import "errors"

// ErrMarksFrozen is returned when a mark write arrives after the semester's
// marks were approved. The check runs inside the same transaction as the
// write, so a submission racing an approval is either accepted before the
// freeze is visible or rejected after it, never silently lost.
var ErrMarksFrozen = errors.New("marks frozen by approval")

// ErrImprovementHasMarks guards improvement-exam deletion: an improvement
// exam with any submitted mark is permanent.
var ErrImprovementHasMarks = errors.New("improvement exam has submitted marks")

// ErrApprovalStateFinal rejects a transition on a mark type that is already
// approved. The check runs under the transition's row lock so two racing
// decisions cannot demote an approved state.
var ErrApprovalStateFinal = errors.New("approval state is final")
