package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Profile is a named backend connection kept in client configuration.
type Profile struct {
	Name     string
	BaseURL  string
	WSPath   string
	TokenRef string
	Active   bool
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.BaseURL) == "" {
		return fmt.Errorf("base url is required")
	}
	parsed, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported base url scheme %q", parsed.Scheme)
	}
	return nil
}
