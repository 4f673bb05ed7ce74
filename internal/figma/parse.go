package figma

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"vectorboard/internal/scene"
)

var (
	ErrInvalidData = errors.New("figma: invalid data")
	ErrNoContent   = errors.New("figma: no page content found")
)

// Logger is implemented by anything that can report parser diagnostics.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type stdLogger struct{}

func (stdLogger) Infof(format string, args ...any)  { log.Printf(format, args...) }
func (stdLogger) Warnf(format string, args ...any)  { log.Printf("warn: "+format, args...) }
func (stdLogger) Errorf(format string, args ...any) { log.Printf("error: "+format, args...) }

// DefaultLogger writes through the standard log package.
var DefaultLogger Logger = stdLogger{}

// ParseOptions controls Parse.
type ParseOptions struct {
	// NodeID restricts the import to a single node and its subtree.
	NodeID string
	Logger Logger
}

type parser struct {
	log Logger
}

// envelope holds just enough of a payload to tell the two formats apart.
type envelope struct {
	Version  json.RawMessage `json:"version"`
	Type     string          `json:"type"`
	X        *float64        `json:"x"`
	Width    *float64        `json:"width"`
	Document json.RawMessage `json:"document"`
	Children []struct {
		Type string `json:"type"`
	} `json:"children"`
}

func isLower(s string) bool { return s != "" && s == strings.ToLower(s) }

func (pr envelope) native() bool {
	if len(pr.Version) > 0 && string(pr.Version) != "null" && len(pr.Children) > 0 {
		if isLower(pr.Children[0].Type) {
			return true
		}
	}
	return isLower(pr.Type) && (pr.X != nil || pr.Width != nil)
}

// Parse converts a Figma payload into scene records. Both the REST API file
// format and the flat native export are accepted. Unsupported or hidden
// nodes are skipped.
func Parse(data []byte, opts ParseOptions) ([]scene.Record, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}
	var pr envelope
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	p := &parser{log: opts.Logger}
	if p.log == nil {
		p.log = DefaultLogger
	}
	if pr.native() {
		return p.parseNative(data, opts.NodeID)
	}
	return p.parseREST(data, pr, opts.NodeID)
}

func (p *parser) parseREST(data []byte, pr envelope, nodeID string) ([]scene.Record, error) {
	raw := data
	if len(pr.Document) > 0 && string(pr.Document) != "null" {
		raw = pr.Document
	}
	var doc Node
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if doc.Children == nil {
		return nil, ErrNoContent
	}

	records := []scene.Record{}
	if nodeID != "" {
		if target := findREST(&doc, nodeID); target != nil {
			if r, ok := p.convertREST(target, 0, 0); ok {
				records = append(records, r)
			}
		} else {
			p.log.Warnf("figma: node %s not found", nodeID)
		}
		return records, nil
	}

	for i := range doc.Children {
		page := &doc.Children[i]
		if page.Type == "CANVAS" || page.Type == "PAGE" {
			for j := range page.Children {
				if r, ok := p.convertREST(&page.Children[j], 0, 0); ok {
					records = append(records, r)
				}
			}
			continue
		}
		if r, ok := p.convertREST(page, 0, 0); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

func (p *parser) parseNative(data []byte, nodeID string) ([]scene.Record, error) {
	var root NativeNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	records := []scene.Record{}
	if nodeID != "" {
		if target := findNative(&root, nodeID); target != nil {
			if r, ok := p.convertNative(target); ok {
				records = append(records, r)
			}
		} else {
			p.log.Warnf("figma: node %s not found", nodeID)
		}
		return records, nil
	}

	if root.Type == "" {
		for i := range root.Children {
			if r, ok := p.convertNative(&root.Children[i]); ok {
				records = append(records, r)
			}
		}
		return records, nil
	}
	if r, ok := p.convertNative(&root); ok {
		records = append(records, r)
	}
	return records, nil
}
