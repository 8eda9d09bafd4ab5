package diff

import (
	"fmt"
	"regexp"
	"strings"
)

// DevNull names the missing side of an added or deleted file.
const DevNull = "/dev/null"

var gitHeaderRegex = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)

// FilePatch is the part of a multi-file diff that belongs to one file.
type FilePatch struct {
	OldName string
	NewName string

	// Patch holds the file's hunks, starting at the first "@@" line, in the
	// form code hosts report per-file patches.
	Patch string
}

// Name returns the file's path after the change, or its old path when the
// file was deleted.
func (f FilePatch) Name() string {
	if f.NewName == "" || f.NewName == DevNull {
		return f.OldName
	}
	return f.NewName
}

// IsNew reports whether the file did not exist before the change.
func (f FilePatch) IsNew() bool { return f.OldName == DevNull }

// IsDeleted reports whether the change removes the file.
func (f FilePatch) IsDeleted() bool { return f.NewName == DevNull }

// SplitFiles splits the output of "git diff" (or any multi-file unified diff)
// into per-file patches. Hunk bodies are consumed by the counts in their
// headers, so removed lines that look like "--- " are not mistaken for file
// headers.
func SplitFiles(text string) ([]FilePatch, error) {
	var (
		files   []FilePatch
		cur     *FilePatch
		body    strings.Builder
		oldLeft int
		newLeft int
	)

	flush := func() {
		if cur != nil {
			cur.Patch = body.String()
			files = append(files, *cur)
		}
		cur = nil
		body.Reset()
	}
	start := func() {
		flush()
		cur = &FilePatch{}
	}

	for _, line := range splitLines(text) {
		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(line, "+"):
				newLeft--
			case strings.HasPrefix(line, "-"):
				oldLeft--
			case strings.HasPrefix(line, `\`):
			default:
				oldLeft--
				newLeft--
			}
			body.WriteString(line + "\n")
			continue
		}

		switch {
		case strings.HasPrefix(line, "diff --git "):
			start()
			if m := gitHeaderRegex.FindStringSubmatch(line); m != nil {
				cur.OldName, cur.NewName = m[1], m[2]
			}
		case strings.HasPrefix(line, "--- "):
			if cur == nil || body.Len() > 0 {
				start()
			}
			cur.OldName = fileName(line[4:], "a/")
		case strings.HasPrefix(line, "+++ ") && cur != nil:
			cur.NewName = fileName(line[4:], "b/")
		case strings.HasPrefix(line, "@@"):
			if cur == nil {
				return nil, fmt.Errorf("hunk %q appears before any file header", line)
			}
			h, err := ParseHeader(line)
			if err != nil {
				return nil, err
			}
			oldLeft, newLeft = h.OldLines, h.NewLines
			body.WriteString(line + "\n")
		case line == noNewlineMarker && body.Len() > 0:
			body.WriteString(line + "\n")
		}
	}
	flush()
	return files, nil
}

// fileName strips the a/ or b/ prefix and any tab-separated timestamp.
func fileName(s, prefix string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == DevNull {
		return s
	}
	return strings.TrimPrefix(s, prefix)
}
