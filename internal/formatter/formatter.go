package formatter

import (
	"fmt"
	"go/format"
	"regexp"
	"sort"
	"strings"
)

var importBlockRegex = regexp.MustCompile(`(?s)import\s*\((.+?)\)`)

// Formatter is responsible for formatting generated Go code
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format runs code through go/format and regroups the import block
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := format.Source([]byte(code))
	if err != nil {
		return "", fmt.Errorf("failed to parse Go code: %w", err)
	}

	return f.formatImports(string(formatted)), nil
}

// formatImports organizes import statements with standard library imports first,
// followed by third-party imports with a blank line in between
func (f *Formatter) formatImports(code string) string {
	matches := importBlockRegex.FindStringSubmatch(code)
	if len(matches) < 2 {
		// No import block found or it's a single-line import
		return code
	}

	var stdLib, thirdParty []string
	for _, line := range strings.Split(strings.TrimSpace(matches[1]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		// Standard library paths have no dot in their first element
		path := strings.Trim(line[strings.Index(line, `"`)+1:], `"`)
		if !strings.Contains(strings.SplitN(path, "/", 2)[0], ".") {
			stdLib = append(stdLib, line)
		} else {
			thirdParty = append(thirdParty, line)
		}
	}
	sort.Strings(stdLib)
	sort.Strings(thirdParty)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, imp := range stdLib {
		b.WriteString("\t" + imp + "\n")
	}
	if len(stdLib) > 0 && len(thirdParty) > 0 {
		b.WriteString("\n")
	}
	for _, imp := range thirdParty {
		b.WriteString("\t" + imp + "\n")
	}
	b.WriteString(")")

	loc := importBlockRegex.FindStringIndex(code)
	return code[:loc[0]] + b.String() + code[loc[1]:]
}
