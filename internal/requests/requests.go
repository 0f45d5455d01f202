// Package requests implements the student request-form flow: browsing
// submitted requests and filing new ones.
package requests

import (
	"context"
	"strings"
	"time"

	"trainingportal/internal/api"
)

// Request is one submitted form request.
type Request struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Reply     string    `json:"reply,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service talks to the form-request endpoints.
type Service struct {
	api *api.Client
}

// NewService creates the request-form service.
func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// List returns the caller's requests, newest first as served by the backend.
func (s *Service) List(ctx context.Context) ([]Request, error) {
	var out []Request
	if err := s.api.Get(ctx, "/form-requests", &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Status = normalizeStatus(out[i].Status)
	}
	return out, nil
}

// Get returns one request by id.
func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	var out Request
	if err := s.api.Get(ctx, "/form-requests/"+id, &out); err != nil {
		return Request{}, err
	}
	out.Status = normalizeStatus(out.Status)
	return out, nil
}

// Create validates and submits a new request.
func (s *Service) Create(ctx context.Context, title, content string) (Request, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return Request{}, &api.ValidationError{Field: "title", Message: "title required"}
	}
	if content == "" {
		return Request{}, &api.ValidationError{Field: "content", Message: "content required"}
	}

	body := map[string]string{"title": title, "content": content}
	var out Request
	if err := s.api.Post(ctx, "/form-requests", body, &out); err != nil {
		return Request{}, err
	}
	out.Status = normalizeStatus(out.Status)
	return out, nil
}

// normalizeStatus upper-cases the status and defaults blanks to PENDING, the
// same treatment the screens apply.
func normalizeStatus(status string) string {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return "PENDING"
	}
	return status
}
