// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateUserRequest struct {
	Username   string `json:"username"   validate:"required,min=3,max=50"`
	Email      string `json:"email"      validate:"required,email,max=255"`
	Password   string `json:"password"   validate:"required,min=8,max=128"`
	Role       string `json:"role"       validate:"required,oneof=USER ADMIN SUPERUSER"`
	UserTypeID string `json:"userTypeId" validate:"required,max=64"`
}

type UpdateUserRequest struct {
	Username   *string `json:"username,omitempty"   validate:"omitempty,min=3,max=50"`
	Email      *string `json:"email,omitempty"      validate:"omitempty,email,max=255"`
	Password   *string `json:"password,omitempty"   validate:"omitempty,min=8,max=128"`
	Role       *string `json:"role,omitempty"       validate:"omitempty,oneof=USER ADMIN SUPERUSER"`
	UserTypeID *string `json:"userTypeId,omitempty" validate:"omitempty,max=64"`
}

type UpdateMeRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

type UserTypeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	UserType  UserTypeRef `json:"userType"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type ListUsersParams struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Search     string `json:"search"`
	Role       string `json:"role"`
	UserTypeID string `json:"userTypeId"`
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role.String(),
		UserType: UserTypeRef{
			ID:   u.UserTypeID,
			Name: u.UserTypeName,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
