package port

import "context"

// ClosureReportGenerator produces the closure report for an archived case
// and returns a retrievable URL. The generator is an external collaborator;
// failures are logged and swallowed by callers, never propagated into a
// transition.
type ClosureReportGenerator interface {
	Generate(ctx context.Context, caseID, actorID string) (string, error)
}
