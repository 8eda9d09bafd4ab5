package diff

import (
	"strconv"
	"strings"
)

// AssignLineNumbers rewrites a patch so that every line present in the new
// file is prefixed with its new-file line number ("12: +code"). Removed lines
// are dropped and hunk headers are kept as they are. Lines before the first
// header and "\ No newline at end of file" markers pass through unchanged.
func AssignLineNumbers(patch string) (string, error) {
	lines := splitLines(patch)
	out := make([]string, 0, len(lines))

	newLine := 0
	inHunk := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			h, err := ParseHeader(line)
			if err != nil {
				return "", err
			}
			newLine = h.NewStart
			inHunk = true
			out = append(out, line)
		case !inHunk || line == noNewlineMarker:
			out = append(out, line)
		case strings.HasPrefix(line, "-"):
			// Not part of the new file.
		default:
			out = append(out, strconv.Itoa(newLine)+": "+line)
			newLine++
		}
	}

	result := strings.Join(out, "\n")
	if strings.HasSuffix(patch, "\n") {
		result += "\n"
	}
	return result, nil
}
