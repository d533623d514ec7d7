package templates

import "time"

// Template is the text shown on a queue display when its condition rule
// matches the current queue length.
type Template struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	QueueID   string    `json:"queue_id" bson:"queue_id"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Enabled   bool      `json:"enabled" bson:"enabled"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type CreateTemplateRequest struct {
	QueueID string `json:"queue_id" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Body    string `json:"body" binding:"required"`
	Enabled *bool  `json:"enabled"`
}

type UpdateTemplateRequest struct {
	Title   *string `json:"title"`
	Body    *string `json:"body"`
	Enabled *bool   `json:"enabled"`
}
