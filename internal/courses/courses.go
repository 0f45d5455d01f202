// Package courses exposes the course catalog for browsing.
package courses

import (
	"context"
	"strings"

	"trainingportal/internal/api"
)

// Course is one catalog entry.
type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"coverImage,omitempty"`
	TeacherName string `json:"teacherName,omitempty"`
}

// Service fetches courses and resolves relative cover-image paths against
// the current base URL.
type Service struct {
	api         *api.Client
	provider    api.ConfigProvider
	fallbackImg string
}

// NewService creates the catalog service. fallbackImg is used when a course
// has no cover image at all.
func NewService(client *api.Client, provider api.ConfigProvider, fallbackImg string) *Service {
	return &Service{api: client, provider: provider, fallbackImg: fallbackImg}
}

// List returns all courses.
func (s *Service) List(ctx context.Context) ([]Course, error) {
	var out []Course
	if err := s.api.Get(ctx, "/courses", &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CoverImage = s.resolveCover(out[i].CoverImage)
	}
	return out, nil
}

// Get returns one course by id.
func (s *Service) Get(ctx context.Context, id string) (Course, error) {
	var out Course
	if err := s.api.Get(ctx, "/courses/"+id, &out); err != nil {
		return Course{}, err
	}
	out.CoverImage = s.resolveCover(out.CoverImage)
	return out, nil
}

// resolveCover turns backend-relative paths like /public/x.png into absolute
// URLs. The base URL is read per call because it can change at runtime.
func (s *Service) resolveCover(cover string) string {
	if cover == "" {
		return s.fallbackImg
	}
	if strings.HasPrefix(cover, "http://") || strings.HasPrefix(cover, "https://") {
		return cover
	}
	base := strings.TrimRight(s.provider.BaseURL(), "/")
	if !strings.HasPrefix(cover, "/") {
		cover = "/" + cover
	}
	return base + cover
}
