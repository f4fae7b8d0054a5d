package cli

import "github.com/fatih/color"

// Labels for command verdicts. fatih/color drops the escape codes when
// stdout is not a terminal or NO_COLOR is set.
var (
	passColor    = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	headingColor = color.New(color.Bold)
)

func passLabel() string { return passColor.Sprint("PASS") }

func failLabel() string { return failColor.Sprint("FAIL") }
