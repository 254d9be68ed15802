// Package transfer holds the portable export format for robots: the
// envelope, its encodings and the mapping back to creatable fields.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/example/robodb/internal/core/robot"
)

// EnvelopeVersion is written into every export.
const EnvelopeVersion = "1.0"

var (
	// ErrInvalidFormat means the payload is neither an envelope nor a bare robot array.
	ErrInvalidFormat = errors.New("invalid import format")
	// ErrNothingToExport means there are no robots; exporting an empty set is refused.
	ErrNothingToExport = errors.New("no robots to export")
)

// Format is an envelope encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (use json or yaml)", s)
	}
}

// FormatFromPath picks the encoding from a file name; a trailing .gz marks compression.
func FormatFromPath(path string) (Format, bool) {
	name := strings.ToLower(filepath.Base(path))
	compressed := strings.HasSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".gz")
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return FormatYAML, compressed
	default:
		return FormatJSON, compressed
	}
}

// Extension returns the file extension for format, with ".gz" appended when compressed.
func Extension(format Format, compressed bool) string {
	ext := ".json"
	if format == FormatYAML {
		ext = ".yaml"
	}
	if compressed {
		ext += ".gz"
	}
	return ext
}

// FileName returns the timestamped export file name.
func FileName(now time.Time, format Format, compressed bool) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	return "robots-export-" + stamp + Extension(format, compressed)
}

// Flag is a boolean that also accepts 0/1, as written by older exports.
type Flag bool

// UnmarshalJSON accepts true/false and numbers.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch s {
	case "true":
		*f = true
	case "false", "null", "0":
		*f = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("archived: expected boolean or number, got %s", s)
		}
		*f = n != 0
	}
	return nil
}

// UnmarshalYAML accepts booleans and integers.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		*f = Flag(b)
		return nil
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("archived: expected boolean or number, got %q", node.Value)
	}
	*f = n != 0
	return nil
}

// Robot is one exported robot.
type Robot struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Label     string `json:"label" yaml:"label"`
	Year      int    `json:"year" yaml:"year"`
	Type      string `json:"type" yaml:"type"`
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt int64  `json:"updatedAt" yaml:"updatedAt"`
	Archived  *Flag  `json:"archived,omitempty" yaml:"archived,omitempty"`
}

// Envelope wraps an export.
type Envelope struct {
	Version    string  `json:"version" yaml:"version"`
	ExportedAt int64   `json:"exportedAt" yaml:"exportedAt"`
	Robots     []Robot `json:"robots" yaml:"robots"`
}

// NewEnvelope wraps robots with the current envelope version and timestamp.
func NewEnvelope(robots []Robot, now time.Time) Envelope {
	return Envelope{
		Version:    EnvelopeVersion,
		ExportedAt: robot.Millis(now),
		Robots:     robots,
	}
}

// Encode serializes the envelope, optionally gzip-compressed.
func Encode(env Envelope, format Format, compressed bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(env)
	default:
		data, err = json.MarshalIndent(env, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	if !compressed {
		return data, nil
	}
	return compress(data)
}

// Row is one element of the robots collection. Err is set when the element
// could not be decoded into a Robot; Name then holds whatever name could be
// recovered from it.
type Row struct {
	Index int
	Robot Robot
	Name  string
	Err   error
}

// Decode parses either an envelope or a bare robot array. Gzip input is
// detected from its magic bytes. Only the top-level shape can fail the whole
// payload; an element that does not decode becomes a Row with Err set.
func Decode(data []byte, format Format) ([]Row, error) {
	data, err := maybeDecompress(data)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidFormat)
	}
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

// Robots returns the decoded robots, dropping rows that failed.
func Robots(rows []Row) []Robot {
	out := make([]Robot, 0, len(rows))
	for _, row := range rows {
		if row.Err == nil {
			out = append(out, row.Robot)
		}
	}
	return out
}

func decodeJSON(data []byte) ([]Row, error) {
	trimmed := bytes.TrimSpace(data)
	var elems []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	} else {
		var env struct {
			Robots *[]json.RawMessage `json:"robots"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if env.Robots == nil {
			return nil, fmt.Errorf("%w: missing robots collection", ErrInvalidFormat)
		}
		elems = *env.Robots
	}

	rows := make([]Row, len(elems))
	for i, raw := range elems {
		rows[i].Index = i
		if err := json.Unmarshal(raw, &rows[i].Robot); err != nil {
			var hint struct {
				Name any `json:"name"`
			}
			_ = json.Unmarshal(raw, &hint)
			rows[i] = Row{Index: i, Name: nameHint(hint.Name), Err: fmt.Errorf("malformed robot: %v", err)}
			continue
		}
		rows[i].Name = rows[i].Robot.Name
	}
	return rows, nil
}

func decodeYAML(data []byte) ([]Row, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}

	var seq *yaml.Node
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		seq = doc
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if doc.Content[i].Value == "robots" {
				seq = doc.Content[i+1]
				if seq.Kind == yaml.AliasNode && seq.Alias != nil {
					seq = seq.Alias
				}
				break
			}
		}
		if seq == nil || (seq.Kind == yaml.ScalarNode && seq.Tag == "!!null") {
			return nil, fmt.Errorf("%w: missing robots collection", ErrInvalidFormat)
		}
		if seq.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: robots is not a sequence", ErrInvalidFormat)
		}
	default:
		return nil, fmt.Errorf("%w: expected a mapping or a sequence", ErrInvalidFormat)
	}

	rows := make([]Row, len(seq.Content))
	for i, node := range seq.Content {
		rows[i].Index = i
		if err := node.Decode(&rows[i].Robot); err != nil {
			var hint struct {
				Name any `yaml:"name"`
			}
			_ = node.Decode(&hint)
			rows[i] = Row{Index: i, Name: nameHint(hint.Name), Err: fmt.Errorf("malformed robot: %v", err)}
			continue
		}
		rows[i].Name = rows[i].Robot.Name
	}
	return rows, nil
}

func nameHint(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ToFields strips identity (id, timestamps, archived) and keeps the
// creatable fields in input order.
func ToFields(robots []Robot) ([]robot.Fields, error) {
	fields := make([]robot.Fields, 0, len(robots))
	if err := copier.Copy(&fields, &robots); err != nil {
		return nil, fmt.Errorf("failed to map imported robots: %w", err)
	}
	return fields, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress envelope: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress envelope: %w", err)
	}
	return buf.Bytes(), nil
}

func maybeDecompress(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return out, nil
}
