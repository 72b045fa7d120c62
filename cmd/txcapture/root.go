package main

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/willibrandon/txcapture/pkg/config"
	"github.com/willibrandon/txcapture/pkg/logging"
)

// app carries state shared by every subcommand
type app struct {
	configPath string
	logLevel   string
	logJSON    bool

	cfg    *config.Config
	logger log.Logger
	fs     billy.Filesystem
}

func newRootCmd() *cobra.Command {
	a := &app{fs: osfs.New("/")}

	rootCmd := &cobra.Command{
		Use:   "txcapture",
		Short: "Capture the inputs of a Solana transaction for offline debugging",
		Long: `txcapture saves the signer keypairs, the non-default accounts and the
instruction list of a transaction into debug_input/program_input_<N> so the
program it invokes can be replayed under a debugger.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(
		newCaptureCmd(a),
		newInspectCmd(a),
		newDiffCmd(a),
		newPackCmd(a),
		newUnpackCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}
	log.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

// path resolves a user supplied path against the working directory
func (a *app) path(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}
