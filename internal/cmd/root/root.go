package root

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xpldd/xpldd/internal/cmdutils"
	"github.com/xpldd/xpldd/internal/config"
	"github.com/xpldd/xpldd/internal/ldd"
)

type rootCmd struct {
	*cobra.Command
	opts *config.Session
}

func New() *cobra.Command {
	return newWithOptions(&config.Session{})
}

func newWithOptions(opts *config.Session) *cobra.Command {
	var bindFlags func()

	cmd := &cobra.Command{
		Use:   "xpldd [flags] file...",
		Short: "Print shared library dependencies of ELF binaries",
		Long: `xpldd prints the transitive shared library dependencies of ELF
binaries by reading their dynamic sections directly, without involving
the host's dynamic linker. That makes it usable on binaries built for
a foreign architecture and on chroot/sysroot trees, e.g.:

    xpldd -P /path/to/sysroot -R /usr/lib ./some-arm-binary

Search paths are tried in order: entries given with -R (and --ld-conf)
first, then the rpath/runpath entries declared by the binary itself.
Dependencies that cannot be found are printed under their unresolved
name and not descended into.

Exit status is 0 if every file was processed cleanly, 3 if all of them
failed and 2 if only some did.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return cmdutils.WrapIncorrectUsageError(
					errors.New("takes at least one ELF file to operate on"))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind viper keys to flags. This can't happen in New,
			// because it would re-bind keys which were bound to the
			// flags of other commands before.
			bindFlags()
			err := viper.Unmarshal(opts)
			if err != nil {
				return errors.WithStack(err)
			}
			return opts.Validate()
		},
		RunE: func(c *cobra.Command, args []string) error {
			cmd := rootCmd{Command: c, opts: opts}
			return cmd.run(args)
		},
	}

	bindFlags = cmdutils.AddFlags(cmd,
		cmdutils.AddNoRecurseFlag,
		cmdutils.AddTreeFlag,
		cmdutils.AddRpathFlag,
		cmdutils.AddPrefixFlag,
		cmdutils.AddLdConfFlag,
		cmdutils.AddVerboseFlag,
	)

	viper.SetEnvPrefix("XPLDD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return cmd
}

func (c *rootCmd) run(args []string) error {
	walker := ldd.NewWalker(c.opts)

	var done, failed int
	for _, name := range args {
		done++
		fmt.Fprintf(c.OutOrStdout(), "%s:\n", name)
		if !walker.Process(name) {
			failed++
		}

		root, present := walker.Registry[name]
		if !present {
			// The file couldn't even be opened, nothing to list.
			continue
		}
		if c.opts.Tree {
			ldd.RenderTree(c.OutOrStdout(), root, walker.Registry)
		} else {
			ldd.RenderFlat(c.OutOrStdout(), root, walker.Registry)
		}
	}

	switch failed {
	case 0:
		return nil
	case done:
		return cmdutils.ErrAllFailed
	default:
		return cmdutils.ErrSomeFailed
	}
}
