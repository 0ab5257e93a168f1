package markdown

import "strings"

// Block is a generated region delimited by two marker lines. Text outside
// the markers belongs to the user.
type Block struct {
	Start string
	End   string
}

// Replace swaps the block's content in doc, appending the block when the
// markers are missing.
func (b Block) Replace(doc string, lines []string) string {
	generated := b.Start + "\n"
	if len(lines) > 0 {
		generated += strings.Join(lines, "\n") + "\n"
	}
	generated += b.End

	start := strings.Index(doc, b.Start)
	end := strings.Index(doc, b.End)
	if start >= 0 && end > start {
		return doc[:start] + generated + doc[end+len(b.End):]
	}
	switch {
	case strings.TrimSpace(doc) == "":
		return generated + "\n"
	case strings.HasSuffix(doc, "\n"):
		return doc + "\n" + generated + "\n"
	default:
		return doc + "\n\n" + generated + "\n"
	}
}

// Lines returns the lines currently inside the block, or nil when absent.
func (b Block) Lines(doc string) []string {
	start := strings.Index(doc, b.Start)
	end := strings.Index(doc, b.End)
	if start < 0 || end <= start {
		return nil
	}
	inner := strings.Trim(doc[start+len(b.Start):end], "\n")
	if inner == "" {
		return []string{}
	}
	return strings.Split(inner, "\n")
}
