package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// Output is the writer all diagnostics go to. It defaults to stderr so
// that the dependency listing on stdout stays machine-readable even
// when some files fail to parse. Tests may swap it out.
var Output io.Writer = os.Stderr

func init() {
	// Respect NO_COLOR and don't emit escape sequences into pipes.
	if os.Getenv("NO_COLOR") != "" || !stderrIsTerminal() {
		pterm.DisableColor()
	}
}

func stderrIsTerminal() bool {
	f, ok := Output.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func write(style pterm.Style, icon string, msg string) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if icon != "" {
		msg = icon + " " + msg
	}
	fmt.Fprint(Output, style.Sprint(msg))
}

func Error(err error) {
	Errorf("%v", err)
}

func Errorf(format string, a ...any) {
	write(pterm.Style{pterm.FgRed}, pterm.Red("✗"), fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) {
	write(pterm.Style{pterm.FgYellow}, pterm.Yellow("⚠"), fmt.Sprintf(format, a...))
}

func Infof(format string, a ...any) {
	write(pterm.Style{pterm.FgDefault}, "", fmt.Sprintf(format, a...))
}

func Successf(format string, a ...any) {
	write(pterm.Style{pterm.FgGreen}, pterm.Green("✓"), fmt.Sprintf(format, a...))
}

// Debugf only prints when the verbose flag (or XPLDD_VERBOSE) is set.
func Debugf(format string, a ...any) {
	if !viper.GetBool("verbose") {
		return
	}
	write(pterm.Style{pterm.FgGray}, "", fmt.Sprintf(format, a...))
}
