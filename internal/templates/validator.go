package templates

import (
	"fmt"
	"strings"
)

const (
	maxTitleLength = 120
	maxBodyLength  = 2000
)

func ValidateTemplate(req CreateTemplateRequest) error {
	if req.QueueID == "" {
		return fmt.Errorf("queue_id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(req.Title) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	if strings.TrimSpace(req.Body) == "" {
		return fmt.Errorf("body is required")
	}
	if len(req.Body) > maxBodyLength {
		return fmt.Errorf("body must be at most %d characters", maxBodyLength)
	}
	return nil
}

func ValidateUpdateTemplate(req UpdateTemplateRequest) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return fmt.Errorf("title cannot be blank")
		}
		if len(*req.Title) > maxTitleLength {
			return fmt.Errorf("title must be at most %d characters", maxTitleLength)
		}
	}
	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return fmt.Errorf("body cannot be blank")
		}
		if len(*req.Body) > maxBodyLength {
			return fmt.Errorf("body must be at most %d characters", maxBodyLength)
		}
	}
	return nil
}
