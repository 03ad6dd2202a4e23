package domain

import (
	"time"
)

// Job represents a job listing posted by an employer
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Employer    string    `json:"employer"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateJobRequest represents the request to post a job
type CreateJobRequest struct {
	Title       string `json:"title"`
	Employer    string `json:"employer"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// JobPage is one page of job listings, newest first
type JobPage struct {
	Jobs     []*Job `json:"jobs"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
}

// QRLinkResponse represents a freshly issued time-limited link
type QRLinkResponse struct {
	URL       string    `json:"url"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LinkValidationResponse represents the outcome of validating a link
type LinkValidationResponse struct {
	IsValid       bool   `json:"is_valid"`
	Reason        string `json:"reason,omitempty"`
	TimeRemaining *int64 `json:"time_remaining,omitempty"` // seconds; set only for timestamped links
}

// ErrorResponse is the JSON body of every API error
type ErrorResponse struct {
	Error string `json:"error"`
}
