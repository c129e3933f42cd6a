package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"results-ingest/feature/ingest/extract"

	"gopkg.in/yaml.v3"
)

// Feed document encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DecodeFeed parses an already converted feed document and extracts its records.
func DecodeFeed(data []byte, format string) (*extract.Feed, error) {
	tree := make(map[string]any)
	switch strings.ToLower(format) {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("invalid json feed: %w", err)
		}
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("invalid yaml feed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported feed format %q", format)
	}
	return extract.Extract(tree)
}

// FormatFromContentType maps a request content type to a feed format.
func FormatFromContentType(contentType string) string {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "yaml") || strings.Contains(ct, "yml") {
		return FormatYAML
	}
	return FormatJSON
}
