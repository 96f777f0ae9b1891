// Package color styles hubctl's terminal output. fatih/color turns itself
// off when stdout is not a terminal or NO_COLOR is set.
package color

import (
	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func Info(s string) string {
	return infoColor.Sprint(s)
}

func Success(s string) string {
	return successColor.Sprint(s)
}

func Warning(s string) string {
	return warningColor.Sprint(s)
}

func Error(s string) string {
	return errorColor.Sprint(s)
}
