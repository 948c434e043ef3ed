package preview

import (
	"fmt"
	"strings"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// renderLineRange selects the fragment's line range from the raw content and
// prefixes each line with a right-aligned line-number gutter.
func renderLineRange(rawContent string, fragment string) (string, error) {
	top, bottom, err := fragmentLineRange(fragment)
	if err != nil {
		return "", err
	}

	lines := strings.Split(rawContent, "\n")
	// A trailing newline yields a phantom empty last element.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if top > len(lines) {
		return "", errorcode.NewInputError("the selected lines are past the end of the file")
	}
	if bottom > len(lines) {
		bottom = len(lines)
	}

	selected := lines[top-1 : bottom]

	gutterWidth := len(fmt.Sprint(bottom))
	var builder strings.Builder
	for index, line := range selected {
		fmt.Fprintf(&builder, "%*d | %v\n", gutterWidth, top+index, strings.TrimRight(line, "\r"))
	}

	return builder.String(), nil
}
