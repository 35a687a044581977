package cmdutils

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xpldd/xpldd/pkg/log"
)

// ExecuteCommand runs a cobra command with the given arguments and
// returns everything it wrote to stdout and stderr. Log output is
// redirected to the command's stderr for the duration of the call.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, in io.Reader, args ...string) (string, string, error) {
	t.Helper()

	// Commands bind viper keys to their flags, which leaks into
	// subsequent tests unless we reset the shared viper state.
	viper.Reset()
	t.Cleanup(viper.Reset)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(in)
	cmd.SetArgs(args)

	oldOutput := log.Output
	log.Output = stderr
	defer func() {
		log.Output = oldOutput
	}()

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
