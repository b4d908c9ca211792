package server

import "mzstay/internal/domain"

// Request payloads

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ForgotRequest struct {
	Email string `json:"email" format:"email"`
}

type KeyPhotoRequest struct {
	URI string `json:"uri"`
}

type CompleteTaskRequest struct {
	Supplies    []string `json:"supplies,omitempty"`
	Note        string   `json:"note,omitempty" maxLength:"500"`
	CompletedAt string   `json:"completedAt,omitempty" format:"date-time"`
}

type LoadMoreRequest struct {
	Count int `json:"count,omitempty" minimum:"1" maximum:"100"`
}

type CreateRepairRequest struct {
	TaskID        string               `json:"taskId"`
	PropertyTitle string               `json:"propertyTitle"`
	Address       string               `json:"address,omitempty"`
	Type          string               `json:"type"`
	Description   string               `json:"description"`
	Urgency       domain.RepairUrgency `json:"urgency" enum:"low,medium,high"`
	Contact       string               `json:"contact,omitempty"`
}

// Response payloads

type LoginResponse struct {
	Token string `json:"token"`
}

type MeResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type TaskListResponse struct {
	Items []domain.Task `json:"items"`
}

type NoticeListResponse struct {
	Items     []domain.Notice `json:"items"`
	UnreadIDs []string        `json:"unreadIds"`
}

type RepairListResponse struct {
	Items []domain.RepairTicket `json:"items"`
}

type ContactListResponse struct {
	Items []domain.Contact `json:"items"`
}
