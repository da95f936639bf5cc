package media

import (
	"fmt"
	"net/url"

	"github.com/go-drift/mediakit/pkg/channel"
)

// SourceType identifies where a video comes from.
type SourceType int

const (
	// SourceTypeAsset is a bundled application asset, addressed by key.
	SourceTypeAsset SourceType = iota
	// SourceTypeFile is a file on the local filesystem.
	SourceTypeFile
	// SourceTypeNetwork is a remote resource addressed by URL.
	SourceTypeNetwork
)

// String returns the wire name of the source type.
func (t SourceType) String() string {
	switch t {
	case SourceTypeAsset:
		return "asset"
	case SourceTypeFile:
		return "file"
	case SourceTypeNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// SourceTypeFromString parses a wire name into a SourceType.
func SourceTypeFromString(s string) (SourceType, error) {
	switch s {
	case "asset":
		return SourceTypeAsset, nil
	case "file":
		return SourceTypeFile, nil
	case "network":
		return SourceTypeNetwork, nil
	default:
		return 0, fmt.Errorf("unknown source type %q", s)
	}
}

// VideoSource describes where a video comes from. It is immutable once
// passed to a load.
type VideoSource struct {
	// Path is the asset key, file path, or URL depending on Type.
	Path string
	// Type selects how Path is resolved.
	Type SourceType
	// Headers are optional HTTP request headers for network sources.
	Headers map[string]string
}

// Validate checks the source for structural problems that can be rejected
// synchronously. Resolution failures (unreadable paths, unknown asset
// keys) surface asynchronously as error events instead.
func (s VideoSource) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("%w: empty source path", ErrInvalidSource)
	}
	switch s.Type {
	case SourceTypeAsset, SourceTypeFile:
		return nil
	case SourceTypeNetwork:
		u, err := url.Parse(s.Path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSource, err)
		}
		if u.Scheme == "" {
			return fmt.Errorf("%w: network source %q has no scheme", ErrInvalidSource, s.Path)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown source type %d", ErrInvalidSource, s.Type)
	}
}

// HasHeaders reports whether the source carries at least one request
// header. An empty-but-present header map is treated as no headers.
func (s VideoSource) HasHeaders() bool {
	return len(s.Headers) > 0
}

// Map encodes the source as a wire payload.
func (s VideoSource) Map() map[string]any {
	m := map[string]any{
		"path": s.Path,
		"type": s.Type.String(),
	}
	if s.HasHeaders() {
		m["headers"] = s.Headers
	}
	return m
}

// SourceFromMap decodes a wire payload into a VideoSource.
func SourceFromMap(m map[string]any) (VideoSource, error) {
	if m == nil {
		return VideoSource{}, fmt.Errorf("%w: missing source", ErrInvalidSource)
	}
	typ, err := SourceTypeFromString(channel.ParseString(m["type"]))
	if err != nil {
		return VideoSource{}, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	src := VideoSource{
		Path:    channel.ParseString(m["path"]),
		Type:    typ,
		Headers: channel.ParseStringMap(m["headers"]),
	}
	if err := src.Validate(); err != nil {
		return VideoSource{}, err
	}
	return src, nil
}
