// Package urlparse extracts resource IDs from Overview web URLs.
package urlparse

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

// ParsedURL holds the components of an Overview document set URL.
type ParsedURL struct {
	BaseURL       string
	DocumentSetID int64
	DocumentID    int64 // optional, 0 if not present
}

// urlPattern matches Overview URLs of the form:
// /documentsets/{set_id}[/documents/{document_id}]
var urlPattern = regexp.MustCompile(`^/documentsets/(\d+)(?:/documents/(\d+))?(?:/.*)?$`)

// Parse extracts resource information from an Overview URL.
// It accepts full URLs like https://www.overviewdocs.com/documentsets/123
// or .../documentsets/123/documents/456 and returns the parsed components.
func Parse(rawURL string) (*ParsedURL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme == "" {
		return nil, fmt.Errorf("invalid URL: missing scheme (expected https://...)")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: expected http or https", parsed.Scheme)
	}

	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)

	matches := urlPattern.FindStringSubmatch(parsed.Path)
	if matches == nil {
		return nil, fmt.Errorf("invalid Overview URL format: expected /documentsets/{set_id}[/documents/{document_id}]")
	}

	setID, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid document set ID: %w", err)
	}

	var docID int64
	if matches[2] != "" {
		docID, err = strconv.ParseInt(matches[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid document ID: %w", err)
		}
	}

	return &ParsedURL{
		BaseURL:       baseURL,
		DocumentSetID: setID,
		DocumentID:    docID,
	}, nil
}

// HasDocumentID returns true if the parsed URL includes a document ID.
func (p *ParsedURL) HasDocumentID() bool {
	return p.DocumentID > 0
}
