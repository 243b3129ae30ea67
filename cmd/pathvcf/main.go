// Package main provides the pathvcf command-line tool.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/pathvcf/internal/chrom"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	logger  *zap.Logger
	verbose bool
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pathvcf",
		Short:   "Convert variant coordinates between linear and pangenome frames",
		Long: `pathvcf converts variant coordinates between a linear reference frame
(VCF CHROM/POS) and a graph pangenome frame (GFA path names), and makes the
result consumable by standard variant tooling via filtering, contig-name
canonicalization, sorting and header synthesis.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			initLogger()
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newAlignCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newHeaderCmd())
	cmd.AddCommand(newSortCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.pathvcf.yaml and environment overrides. Config keys
// provide defaults for flags the user did not set.
func initConfig() {
	viper.SetConfigName(".pathvcf")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("PATHVCF")
	viper.AutomaticEnv()

	viper.SetDefault("threads", 0)
	viper.SetDefault("ignore", int(chrom.DefaultLevel))

	// A missing config file is fine; anything else is worth a note.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

func initLogger() {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	logger = l
}

// configInt returns the flag value, falling back to the viper key when the
// flag was not set on the command line.
func configInt(cmd *cobra.Command, flag, key string, value int) int {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return viper.GetInt(key)
}

// applyThreads caps process parallelism for the pargo-backed stages, which
// size themselves from GOMAXPROCS.
func applyThreads(n int) {
	if n > 0 {
		runtime.GOMAXPROCS(n)
	}
}
