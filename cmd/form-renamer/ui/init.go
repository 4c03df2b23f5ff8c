package ui

import (
	"github.com/fatih/color"
)

var (
	noColorFlag bool
	verboseFlag bool
)

// InitUI applies the color and verbosity settings for the process.
func InitUI(noColor, verbose bool) {
	noColorFlag = noColor
	verboseFlag = verbose

	if noColor {
		color.NoColor = true
	}
}

// Verbose reports whether verbose output was requested.
func Verbose() bool {
	return verboseFlag
}
