package issues

import (
	"testing"

	"github.com/dalemusser/civictrack/internal/domain/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.IssuePending, models.IssueInProgress, true},
		{models.IssuePending, models.IssueRejected, true},
		{models.IssuePending, models.IssueResolved, false},
		{models.IssuePending, models.IssuePending, false},
		{models.IssueInProgress, models.IssueResolved, true},
		{models.IssueInProgress, models.IssueRejected, true},
		{models.IssueInProgress, models.IssuePending, false},
		{models.IssueResolved, models.IssueInProgress, false},
		{models.IssueRejected, models.IssuePending, false},
		{"unknown", models.IssueResolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := canTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("canTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
