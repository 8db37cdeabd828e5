package models

import "time"

// RecordOutcome is what happened to a single record of an upload batch.
type RecordOutcome struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	StatusCode int    `json:"status_code,omitempty"`
	ProductID  int64  `json:"product_id,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type UploadResult struct {
	Attempted int             `json:"attempted"`
	Succeeded int             `json:"succeeded"`
	Outcomes  []RecordOutcome `json:"outcomes"`
}

func (r UploadResult) Failed() int {
	return r.Attempted - r.Succeeded
}

// UploadCompletedEvent is published after every confirmed upload attempt.
type UploadCompletedEvent struct {
	SessionID   string          `json:"session_id"`
	SiteURL     string          `json:"site_url"`
	Attempted   int             `json:"attempted"`
	Succeeded   int             `json:"succeeded"`
	Outcomes    []RecordOutcome `json:"outcomes"`
	CompletedAt time.Time       `json:"completed_at"`
}
