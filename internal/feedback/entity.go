// AngelaMos | 2026
// entity.go

package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusInReview  Status = "IN_REVIEW"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

var Statuses = []Status{
	StatusNew,
	StatusInReview,
	StatusAccepted,
	StatusRejected,
	StatusCompleted,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown feedback status %q: %w", s, core.ErrInvalidInput)
}

type Feedback struct {
	ID         string    `db:"id"`
	Content    string    `db:"content"`
	Department *string   `db:"department"`
	Name       *string   `db:"name"`
	Status     Status    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type StatusCount struct {
	Status Status `db:"status"`
	Count  int    `db:"count"`
}
