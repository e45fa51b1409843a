// Package taskname encodes and decodes the task-naming convention that
// ties a Timer task back to its Tracker issue: the task name starts with
// the issue id in square brackets, "[42] Fix login".
package taskname

import (
	"fmt"
	"regexp"
	"strings"
)

var issueIDPattern = regexp.MustCompile(`^\[(\d+)\]\s*`)

// Encode prepends the bracketed issue id to a subject. Subjects already
// carrying the prefix are returned unchanged, so encoding is idempotent.
func Encode(issueID int, subject string) string {
	prefix := fmt.Sprintf("[%d]", issueID)
	if strings.HasPrefix(subject, prefix) {
		return subject
	}
	return prefix + " " + subject
}

// Decode extracts the issue id from a task name. Names may carry an
// optional "<project>: " prefix ahead of the bracketed id. The second
// return value is false when the name holds no id; Decode never fails.
func Decode(taskName string) (string, bool) {
	if m := issueIDPattern.FindStringSubmatch(taskName); m != nil {
		return m[1], true
	}
	// Some Timer views prepend the project name, "Alpha: [42] Fix login".
	if _, rest, found := strings.Cut(taskName, ": "); found {
		if m := issueIDPattern.FindStringSubmatch(rest); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// StripIssueID removes the leading bracketed issue id, returning the
// bare subject. Names without the prefix are returned unchanged.
func StripIssueID(taskName string) string {
	return issueIDPattern.ReplaceAllString(taskName, "")
}
