package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// log is the shared logger for every subcommand. Verbosity is raised
// by --verbose/--trace in PersistentPreRunE below; by default only
// warnings and errors reach stderr, so a clean run stays silent.
var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "arrsh",
	Short: "An interactive array shell",
	Long: `arrsh is an interactive shell whose values are arrays: every
line is a tiny rank-polymorphic expression that evaluates to an array,
a string, or a number, and bare identifiers that aren't a primitive
become external commands wired into a pipeline.

Run with no arguments for a REPL, or pass a script file to run it
line by line.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log each line evaluated at the REPL")
	rootCmd.PersistentFlags().Bool("trace", false, "log every evaluated line, script lines included")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		trace, err := cmd.Flags().GetBool("trace")
		if err != nil {
			return err
		}
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		switch {
		case trace:
			log.SetLevel(logrus.TraceLevel)
		case verbose:
			log.SetLevel(logrus.InfoLevel)
		}
		return nil
	}
}
