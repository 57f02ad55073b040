package checker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dkoosis/scame/pkg/report"
)

var (
	conflictOpen  = strings.Repeat("<", 7)
	conflictClose = strings.Repeat(">", 7)
)

// lineCheck inspects one line; n is 1-based.
type lineCheck func(n int, line string)

// eachLine runs checks, in order, over every line of the text.
func (b *Base) eachLine(checks ...lineCheck) {
	for i, line := range b.Lines() {
		for _, check := range checks {
			check(i+1, line)
		}
	}
}

func (b *Base) checkConflicts(n int, line string) {
	if strings.HasPrefix(line, conflictOpen) || strings.HasPrefix(line, conflictClose) {
		b.Message(n, "File has conflicts.", report.SeverityError, "")
	}
}

func (b *Base) checkLength(n int, line string) {
	limit := b.MaxLength()
	if utf8.RuneCountInString(line) > limit {
		b.Message(n, fmt.Sprintf("Line exceeds %d characters.", limit), report.SeverityInfo, "")
	}
}

func (b *Base) checkTrailingWhitespace(n int, line string) {
	if strings.HasSuffix(line, " ") {
		b.Message(n, "Line has trailing whitespace.", report.SeverityInfo, "")
	}
}

func (b *Base) checkTab(n int, line string) {
	if strings.Contains(line, "\t") {
		b.Message(n, "Line contains a tab character.", report.SeverityInfo, "")
	}
}
