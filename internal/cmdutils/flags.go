package cmdutils

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xpldd/xpldd/pkg/log"
)

// AddFlags executes the given flag actions and returns a function which
// binds all the flags to viper keys. The returned function must not be
// called before the command runs (e.g. in PreRun), because binding a
// viper key to the flag of one command unbinds it from flags of other
// commands it was bound to before.
func AddFlags(cmd *cobra.Command, flags ...func(*cobra.Command) func()) func() {
	var binders []func()
	for _, flag := range flags {
		binders = append(binders, flag(cmd))
	}
	return func() {
		for _, bind := range binders {
			bind()
		}
	}
}

func bindViper(cmd *cobra.Command, name string) func() {
	return func() {
		err := viper.BindPFlag(name, cmd.Flags().Lookup(name))
		if err != nil {
			// Only happens when the flag doesn't exist, i.e. a
			// programming error.
			log.Errorf("failed to bind flag %s: %v", name, err)
		}
	}
}

func AddNoRecurseFlag(cmd *cobra.Command) func() {
	cmd.Flags().BoolP("no-recurse", "n", false,
		"Do not descend into the dependencies of dependencies")
	return bindViper(cmd, "no-recurse")
}

func AddTreeFlag(cmd *cobra.Command) func() {
	cmd.Flags().BoolP("tree", "t", false,
		"Print the dependency tree instead of a flat, deduplicated list")
	return bindViper(cmd, "tree")
}

func AddRpathFlag(cmd *cobra.Command) func() {
	cmd.Flags().StringArrayP("rpath", "R", nil,
		"Add a global library search path entry (repeatable, searched in order,\n"+
			"useful if binaries lack rpath entries of their own)")
	return bindViper(cmd, "rpath")
}

func AddPrefixFlag(cmd *cobra.Command) func() {
	cmd.Flags().StringP("prefix", "P", "",
		"String to prefix search paths with before resolution\n"+
			"(useful for inspecting chroots/sysroots from outside)")
	return bindViper(cmd, "prefix")
}

func AddLdConfFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("ld-conf", "",
		"Append search paths parsed from an ld.so.conf style file\n"+
			"(read underneath the prefix, include directives supported)")
	return bindViper(cmd, "ld-conf")
}

func AddVerboseFlag(cmd *cobra.Command) func() {
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")
	return func() {
		err := viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))
		if err != nil {
			log.Errorf("failed to bind flag verbose: %v", err)
		}
	}
}
