package figma

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidSource = errors.New("figma: cannot determine file key")

var (
	fileKeyRe   = regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design)/([A-Za-z0-9]+)(?:[/?#]|$)`)
	bareKeyRe   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	queryNodeRe = regexp.MustCompile(`[?&]node-id=([^&#]*)`)
	pathNodeRe  = regexp.MustCompile(`/nodes/([^/?#]+)`)
	fragNodeRe  = regexp.MustCompile(`#(.+)$`)
)

// ExtractFileKey extracts the file identifier from a figma.com /file/ or
// /design/ URL. The pattern is anchored so look-alike hosts are rejected.
func ExtractFileKey(figmaURL string) (string, error) {
	matches := fileKeyRe.FindStringSubmatch(figmaURL)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Figma URL format: must be a valid figma.com URL with /file/ or /design/ path")
	}
	return matches[1], nil
}

// ExtractNodeIDs returns the node ids referenced by a URL, in order of
// appearance, de-duplicated. Ids may come from the node-id query parameter,
// a /nodes/ path segment or the fragment; dash separators become colons.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	var raw []string
	if m := queryNodeRe.FindStringSubmatch(figmaURL); m != nil {
		raw = append(raw, m[1])
	}
	if m := pathNodeRe.FindStringSubmatch(figmaURL); m != nil {
		raw = append(raw, m[1])
	}
	if m := fragNodeRe.FindStringSubmatch(figmaURL); m != nil {
		raw = append(raw, m[1])
	}

	ids := []string{}
	for _, part := range raw {
		if dec, err := url.QueryUnescape(part); err == nil {
			part = dec
		}
		for _, id := range strings.Split(part, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			ids = append(ids, strings.Replace(id, "-", ":", 1))
		}
	}
	return deduplicateNodeIDs(ids), nil
}

func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ParseSource accepts a figma.com URL (with or without scheme) or a bare
// file key and returns the file key plus the first referenced node id.
func ParseSource(urlOrKey string) (fileKey, nodeID string, err error) {
	s := strings.TrimSpace(urlOrKey)
	if !strings.Contains(s, "figma.com") {
		if !bareKeyRe.MatchString(s) {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidSource, urlOrKey)
		}
		return s, "", nil
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	fileKey, err = ExtractFileKey(s)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	ids, _ := ExtractNodeIDs(s)
	if len(ids) > 0 {
		nodeID = ids[0]
	}
	return fileKey, nodeID, nil
}
