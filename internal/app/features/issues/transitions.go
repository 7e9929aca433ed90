package issues

import (
	"slices"

	"github.com/dalemusser/civictrack/internal/domain/models"
)

// transitions lists the statuses reachable from each status. Resolved and
// rejected are terminal.
var transitions = map[string][]string{
	models.IssuePending:    {models.IssueInProgress, models.IssueRejected},
	models.IssueInProgress: {models.IssueResolved, models.IssueRejected},
}

func canTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}
