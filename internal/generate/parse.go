package generate

import (
	"encoding/json"
	"regexp"
	"strings"
)

const maxParsedLines = 8

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	listMarker  = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•・])\s*`)
)

// ParseTaskList extracts task texts from a model reply. JSON {"todos": [...]} is
// preferred, optionally fenced; otherwise list-looking lines are used.
func ParseTaskList(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	raw := content
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		raw = m[1]
	}
	var payload struct {
		Todos []string `json:"todos"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return cleanAll(payload.Todos)
	}
	var bare []string
	if err := json.Unmarshal([]byte(raw), &bare); err == nil {
		return cleanAll(bare)
	}
	return parseLines(content)
}

func parseLines(content string) []string {
	lines := strings.Split(content, "\n")
	listed := make([]string, 0, len(lines))
	plain := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if listMarker.MatchString(line) {
			if text := cleanLine(line); text != "" {
				listed = append(listed, text)
			}
			continue
		}
		if strings.HasSuffix(line, ":") {
			continue
		}
		if text := cleanLine(line); text != "" {
			plain = append(plain, text)
		}
	}
	out := listed
	if len(out) == 0 {
		out = plain
	}
	if len(out) > maxParsedLines {
		out = out[:maxParsedLines]
	}
	return out
}

func cleanLine(line string) string {
	line = listMarker.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "\"'“”")
	line = strings.TrimSuffix(line, ",")
	line = strings.Trim(line, "\"'“”")
	return strings.TrimSpace(line)
}

func cleanAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text := strings.TrimSpace(item); text != "" {
			out = append(out, text)
		}
	}
	return out
}
