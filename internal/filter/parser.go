package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ParseKeywords parses a keyword list.
//
// Supported formats:
//   - one keyword per line
//   - comma-separated keywords on a line ("Frieren, Black Clover")
//   - "#" starts a comment that runs to the end of the line
//
// Blank entries are ignored. Entries are trimmed but otherwise kept verbatim,
// so titles containing commas must go on their own line and be quoted:
//
//	"Les fées, le Roi-Dragon et moi (en chat)"
func ParseKeywords(input string) []string {
	keywords := make([]string, 0)

	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if quoted, ok := unquote(line); ok {
			keywords = append(keywords, quoted)
			continue
		}

		for _, part := range strings.Split(line, ",") {
			if part = strings.TrimSpace(part); part != "" {
				keywords = append(keywords, part)
			}
		}
	}

	return keywords
}

// LoadKeywordsFile reads a keyword list from path.
func LoadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}
	return ParseKeywords(string(data)), nil
}

func unquote(line string) (string, bool) {
	if len(line) >= 2 && line[0] == '"' && line[len(line)-1] == '"' {
		return strings.TrimSpace(line[1 : len(line)-1]), true
	}
	return "", false
}
