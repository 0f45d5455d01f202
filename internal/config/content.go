package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Content carries the static center information shown on the about and
// contact pages, plus presentation fallbacks used when the backend omits a
// field. It is loaded once at startup from a YAML file; a missing file means
// defaults.
type Content struct {
	CenterName         string   `yaml:"centerName"`
	DefaultAddress     string   `yaml:"defaultAddress"`
	Hotline            string   `yaml:"hotline"`
	SupportEmail       string   `yaml:"supportEmail"`
	DefaultAvatar      string   `yaml:"defaultAvatar"`
	DefaultCourseImage string   `yaml:"defaultCourseImage"`
	About              []string `yaml:"about"`
}

// DefaultContent returns the built-in center information.
func DefaultContent() Content {
	return Content{
		CenterName:         "HRC Training Center",
		DefaultAddress:     "Lab 1, HRC Building, District 10",
		Hotline:            "1900 1234",
		SupportEmail:       "support@hrc.edu.vn",
		DefaultAvatar:      "https://picsum.photos/200/300",
		DefaultCourseImage: "https://picsum.photos/seed/default/300/200",
	}
}

// LoadContent reads center content from path, falling back to defaults for
// any field left empty. A missing file is not an error.
func LoadContent(path string) (Content, error) {
	content := DefaultContent()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return content, nil
		}
		return content, fmt.Errorf("read content file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return DefaultContent(), fmt.Errorf("parse content file: %w", err)
	}
	defaults := DefaultContent()
	if content.CenterName == "" {
		content.CenterName = defaults.CenterName
	}
	if content.DefaultAddress == "" {
		content.DefaultAddress = defaults.DefaultAddress
	}
	if content.DefaultAvatar == "" {
		content.DefaultAvatar = defaults.DefaultAvatar
	}
	if content.DefaultCourseImage == "" {
		content.DefaultCourseImage = defaults.DefaultCourseImage
	}
	return content, nil
}
