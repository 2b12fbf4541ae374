// Command lanenc builds recurrent expression encoders from a YAML config,
// encodes referring expressions and manages the word-vector tables they use.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.1.0-dev"

var (
	cfgFile string
	verbose bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lanenc",
		Short: "Recurrent language encoder for referring expressions",
		Long: `lanenc embeds referring expressions with pre-trained word vectors, runs
them through a (bi)directional GRU and pools the result into one vector per
expression.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
				log.SetPrefix("lanenc: ")
			}
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (defaults apply when empty)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(
		newVersionCmd(),
		newInspectCmd(),
		newEncodeCmd(),
		newHistoryCmd(),
		newConvertGloVeCmd(),
		newListEncodersCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lanenc %s\n", version)
		},
	}
}

// logf logs only with --verbose.
func logf(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
