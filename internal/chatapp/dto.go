// AngelaMos | 2026
// dto.go

package chatapp

import (
	"time"
)

type CreateChatAppRequest struct {
	Name           string   `json:"name"           validate:"required,min=1,max=200"`
	Description    string   `json:"description"    validate:"max=2000"`
	Details        string   `json:"details"        validate:"max=100000"`
	URL            string   `json:"url"            validate:"required,url,max=2048"`
	IsVisibleToAll bool     `json:"isVisibleToAll"`
	IsAdminOnly    bool     `json:"isAdminOnly"`
	UserTypeIDs    []string `json:"userTypeIds"    validate:"required,dive,required,max=64"`
}

type UpdateChatAppRequest struct {
	Name           *string   `json:"name,omitempty"           validate:"omitempty,min=1,max=200"`
	Description    *string   `json:"description,omitempty"    validate:"omitempty,max=2000"`
	Details        *string   `json:"details,omitempty"        validate:"omitempty,max=100000"`
	URL            *string   `json:"url,omitempty"            validate:"omitempty,url,max=2048"`
	IsVisibleToAll *bool     `json:"isVisibleToAll,omitempty"`
	IsAdminOnly    *bool     `json:"isAdminOnly,omitempty"`
	UserTypeIDs    *[]string `json:"userTypeIds,omitempty"    validate:"omitempty,dive,required,max=64"`
}

// CreateAdminAppRequest has no visibility knobs: admin apps are always
// admin-only and granted to the creator's user type.
type CreateAdminAppRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Details     string `json:"details"     validate:"max=100000"`
	URL         string `json:"url"         validate:"required,url,max=2048"`
}

type ListParams struct {
	UserTypeID string
	Mine       bool
}

type UserTypeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreatorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ChatAppResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Details        string             `json:"details"`
	URL            string             `json:"url"`
	IsVisibleToAll bool               `json:"isVisibleToAll"`
	IsAdminOnly    bool               `json:"isAdminOnly"`
	CreatedByID    string             `json:"createdById"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	UserTypes      []UserTypeResponse `json:"userTypes"`
	CreatedBy      CreatorResponse    `json:"createdBy"`
}

func ToChatAppResponse(a *ChatApp) ChatAppResponse {
	types := make([]UserTypeResponse, 0, len(a.UserTypes))
	for _, t := range a.UserTypes {
		types = append(types, UserTypeResponse{ID: t.ID, Name: t.Name})
	}

	return ChatAppResponse{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Details:        a.Details,
		URL:            a.URL,
		IsVisibleToAll: a.IsVisibleToAll,
		IsAdminOnly:    a.IsAdminOnly,
		CreatedByID:    a.CreatedByID,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		UserTypes:      types,
		CreatedBy: CreatorResponse{
			ID:       a.CreatedByID,
			Username: a.CreatedByUsername,
		},
	}
}

func ToChatAppResponseList(apps []ChatApp) []ChatAppResponse {
	responses := make([]ChatAppResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, ToChatAppResponse(&apps[i]))
	}
	return responses
}
