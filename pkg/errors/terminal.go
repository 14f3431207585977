package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	passColor = color.New(color.Bold, color.FgGreen)
	failColor = color.New(color.Bold, color.FgRed)
	hintColor = color.New(color.Bold, color.FgYellow)
	dimColor  = color.New(color.FgHiBlack)
)

// FormatTerminal renders a CompileError for a command-line pass/fail
// banner using fatih/color instead of the hand-rolled ANSI escapes
// FormatError uses. It is a shorter, one-paragraph rendering aimed at a
// job-runner CLI, not a full source-snippet diagnostic.
func (e *CompileError) FormatTerminal() string {
	var b strings.Builder

	errorType := e.ErrorType
	if errorType == "" {
		errorType = "Compile Error"
	}
	b.WriteString(failColor.Sprint(errorType))

	if e.FileName != "" {
		fmt.Fprintf(&b, " in %s", e.FileName)
	}
	if e.Context != "" {
		b.WriteString(dimColor.Sprintf(" (%s)", e.Context))
	}
	b.WriteString("\n")

	b.WriteString(color.RedString(e.Message))
	b.WriteString("\n")

	if e.Suggestion != "" {
		b.WriteString(hintColor.Sprint("Suggestion: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

// PrintPassBanner prints a green "pass" banner for a completed job.
func PrintPassBanner(label string) {
	passColor.Printf("PASS")
	fmt.Printf(" %s\n", label)
}

// PrintFailBanner prints a red "fail" banner followed by err's terminal
// rendering, or its plain Error() text if err is not a *CompileError.
func PrintFailBanner(label string, err error) {
	failColor.Printf("FAIL")
	fmt.Printf(" %s\n", label)

	if ce, ok := err.(*CompileError); ok {
		fmt.Print(ce.FormatTerminal())
		return
	}
	fmt.Println(err.Error())
}
