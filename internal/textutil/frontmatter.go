package textutil

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// FrontMatter is the YAML header of a conversation message file.
type FrontMatter struct {
	Author string    `yaml:"author,omitempty"`
	Name   string    `yaml:"name,omitempty"`
	Time   time.Time `yaml:"time,omitempty"`
}

// IsUser reports whether the message was written by the local reader.
func (fm FrontMatter) IsUser() bool {
	switch strings.ToLower(strings.TrimSpace(fm.Author)) {
	case "user", "me", "you":
		return true
	}
	return false
}

// SplitFrontMatter separates a leading "---" fenced header from the body. A
// header whose closing fence has not been written yet swallows the rest of
// the document.
func SplitFrontMatter(src string) (header, body string) {
	rest, ok := cutLine(src, fence)
	if !ok {
		return "", src
	}

	for offset := 0; offset < len(rest); {
		end := strings.IndexByte(rest[offset:], '\n')
		line := rest[offset:]
		if end >= 0 {
			line = rest[offset : offset+end]
		}
		if strings.TrimRight(line, "\r") == fence {
			header = rest[:offset]
			if end < 0 {
				return header, ""
			}
			return header, rest[offset+end+1:]
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return rest, ""
}

// ParseFrontMatter decodes the header of src and returns it with the body.
func ParseFrontMatter(src string) (FrontMatter, string, error) {
	var fm FrontMatter
	header, body := SplitFrontMatter(src)
	if strings.TrimSpace(header) == "" {
		return fm, body, nil
	}
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return fm, body, fmt.Errorf("front matter: %w", err)
	}
	return fm, body, nil
}

// MarshalFrontMatter renders fm followed by body as a message file.
func MarshalFrontMatter(fm FrontMatter, body string) ([]byte, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString(fence + "\n")
	b.Write(header)
	b.WriteString(fence + "\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// cutLine reports whether the first line of s is exactly want and returns
// what follows it.
func cutLine(s, want string) (string, bool) {
	line, rest, found := strings.Cut(s, "\n")
	if !found || strings.TrimRight(line, "\r") != want {
		return s, false
	}
	return rest, true
}
