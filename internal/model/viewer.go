package model

import "time"

// Notice is a dismissible, non-fatal message raised by a viewer session.
type Notice struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Page      int       `json:"page"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewerState is the read-only snapshot a client renders from.
// Handles maps a page number to the URL of its live resource handle.
type ViewerState struct {
	SessionID    string         `json:"session_id"`
	DocumentID   string         `json:"document_id"`
	Title        string         `json:"title"`
	CurrentPage  int            `json:"current_page"`
	PageCount    int            `json:"page_count"`
	Zoom         float64        `json:"zoom"`
	Rotation     int            `json:"rotation"`
	IsLoading    bool           `json:"is_loading"`
	IsFullscreen bool           `json:"is_fullscreen"`
	CachedPages  []int          `json:"cached_pages"`
	Handles      map[int]string `json:"handles"`
	Notices      []Notice       `json:"notices"`
}
