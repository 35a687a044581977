package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/xpldd/xpldd/internal/cmd/root"
	"github.com/xpldd/xpldd/internal/cmdutils"
	"github.com/xpldd/xpldd/pkg/log"
)

func main() {
	cmd := root.New()
	err := cmd.Execute()
	if err == nil {
		return
	}

	switch {
	case cmdutils.IsIncorrectUsageError(err):
		log.Error(err)
		_ = cmd.Usage()
	case errors.Is(err, cmdutils.ErrAllFailed), errors.Is(err, cmdutils.ErrSomeFailed):
		// Per-file failures were already logged where they happened;
		// the aggregate only determines the exit code.
	default:
		log.Error(err)
	}
	os.Exit(cmdutils.ExitCode(err))
}
