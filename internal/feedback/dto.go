// AngelaMos | 2026
// dto.go

package feedback

import (
	"time"
)

type CreateFeedbackRequest struct {
	Content    string  `json:"content"              validate:"required,max=5000"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Name       *string `json:"name,omitempty"       validate:"omitempty,max=100"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=NEW IN_REVIEW ACCEPTED REJECTED COMPLETED"`
}

type FeedbackResponse struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Department *string   `json:"department"`
	Name       *string   `json:"name"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ListParams struct {
	Page     int
	PageSize int
	Status   string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToFeedbackResponse(f *Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID,
		Content:    f.Content,
		Department: f.Department,
		Name:       f.Name,
		Status:     string(f.Status),
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func ToFeedbackResponseList(items []Feedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToFeedbackResponse(&items[i]))
	}
	return responses
}
