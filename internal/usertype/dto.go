// AngelaMos | 2026
// dto.go

package usertype

import (
	"time"
)

type CreateUserTypeRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type UpdateUserTypeRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type UserTypeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UsageResponse struct {
	IsInUse   bool `json:"isInUse"`
	UserCount int  `json:"userCount"`
	AppCount  int  `json:"appCount"`
}

func ToUserTypeResponse(t *UserType) UserTypeResponse {
	return UserTypeResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func ToUserTypeResponseList(types []UserType) []UserTypeResponse {
	responses := make([]UserTypeResponse, 0, len(types))
	for i := range types {
		responses = append(responses, ToUserTypeResponse(&types[i]))
	}
	return responses
}

func ToUsageResponse(u Usage) UsageResponse {
	return UsageResponse{
		IsInUse:   u.InUse(),
		UserCount: u.UserCount,
		AppCount:  u.AppCount,
	}
}
