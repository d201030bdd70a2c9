// internal/domain/invoice/entity_test.go
package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusSent},
		{StatusDraft, StatusCancelled},
		{StatusSent, StatusCancelled},
		{StatusUnpaid, StatusCancelled},
		{StatusOverdue, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusDraft, StatusDraft},
		{StatusSent, StatusDraft},
		{StatusCancelled, StatusSent},
		{StatusPaid, StatusCancelled},
		{StatusPartiallyPaid, StatusCancelled},
		// Ledger-owned statuses are never reachable manually.
		{StatusSent, StatusPaid},
		{StatusSent, StatusPartiallyPaid},
		{StatusSent, StatusUnpaid},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}
