package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// ErrUnterminated is returned when a document opens frontmatter but never
// closes it.
var ErrUnterminated = fmt.Errorf("frontmatter: missing closing fence")

// Split decodes the YAML header of content into meta and returns the body.
// Content without a header is returned whole and meta is left untouched.
func Split(content string, meta any) (string, error) {
	if !strings.HasPrefix(content, fence) {
		return content, nil
	}
	rest := strings.TrimPrefix(content, fence)
	idx := strings.Index(rest, "\n"+fence)
	if idx < 0 {
		return "", ErrUnterminated
	}
	if err := yaml.Unmarshal([]byte(rest[:idx]), meta); err != nil {
		return "", fmt.Errorf("decode frontmatter: %w", err)
	}
	return rest[idx+len("\n"+fence):], nil
}

// Render writes meta as a YAML header followed by body. Struct meta keeps
// field order; maps are sorted by key.
func Render(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(body)
	return buf.String(), nil
}
