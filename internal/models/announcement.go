package models

import "time"

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
*/
type Announcement struct {
	ID         int64
	Title      string
	Message    string
	SenderName string
	Priority   string // low, normal, high, urgent
	IsActive   string
	CreatedAt  time.Time
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type CreateAnnouncementRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	SenderName string `json:"sender_name"`
	Priority   string `json:"priority"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type AnnouncementResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	SenderName string `json:"sender_name"`
	Priority   string `json:"priority"`
	CreatedAt  string `json:"created_at"`
	IsActive   bool   `json:"is_active"`
}

// AnnouncementEvent adalah envelope yang dipublish ke channel broker.
type AnnouncementEvent struct {
	Announcement AnnouncementResponse `json:"announcement"`
	Ts           int64                `json:"ts"`
}

/*
|--------------------------------------------------------------------------
| MAPPER
|--------------------------------------------------------------------------
*/
func ToAnnouncementResponse(a Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:         a.ID,
		Title:      a.Title,
		Message:    a.Message,
		SenderName: a.SenderName,
		Priority:   a.Priority,
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
		IsActive:   a.IsActive == "y",
	}
}
