package app

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

const noticeWidth = 78

// autoGeneratedNotice builds the banner block wrapped around the generated
// output. A non-empty message is wrapped to the banner width and centered,
// one comment line per wrapped line.
func autoGeneratedNotice(message string) string {
	border := strings.Repeat("#", noticeWidth+2)
	lines := []string{
		border,
		centerLine("AUTO GENERATED FILE"),
		centerLine("Do Not Manually Update"),
	}
	if message != "" {
		for _, line := range strings.Split(wordwrap.WrapString(message, noticeWidth), "\n") {
			lines = append(lines, centerLine(line))
		}
	}
	lines = append(lines,
		centerLine("For details, see:"),
		centerLine("https://github.com/multimediallc/owners-gen#readme"),
		border,
	)
	return strings.Join(lines, "\n")
}

func centerLine(text string) string {
	pad := noticeWidth - len(text)
	if pad < 0 {
		pad = 0
	}
	return "# " + strings.Repeat(" ", pad/2) + text
}
