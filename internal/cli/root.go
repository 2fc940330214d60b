// ABOUTME: Root cobra command for opusrec
// ABOUTME: Loads settings and the logger before any subcommand runs
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/oply/opusrec/internal/config"
	"github.com/oply/opusrec/internal/logging"
	"github.com/oply/opusrec/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries state shared by all subcommands
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings *config.Settings
	logger   *zap.Logger
	stdout   io.Writer
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: zap.NewNop(),
		stdout: os.Stdout,
	}

	root := &cobra.Command{
		Use:           "opusrec",
		Short:         "Record microphone audio to Ogg Opus",
		Long:          "opusrec captures 16 kHz mono audio and encodes it to Ogg Opus or WAV files, keeping a registry of finished recordings.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./opusrec.yaml or ~/.config/opusrec/opusrec.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "opusrec.log", "log file path (empty disables file logging)")
	flags.String("db", "opusrec.db", "track registry database")
	a.bind(root, "log.level", "log-level")
	a.bind(root, "log.file", "log-file")
	a.bind(root, "tracks.db", "db")

	root.PersistentPostRun = func(*cobra.Command, []string) {
		_ = a.logger.Sync()
	}

	root.AddCommand(
		newRecordCommand(a),
		newPlayCommand(a),
		newInfoCommand(a),
		newTracksCommand(a),
		newDevicesCommand(a),
		newVersionCommand(a),
	)
	return root
}

// bind maps a flag on cmd to a settings key
func (a *app) bind(cmd *cobra.Command, key, flag string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	if f == nil {
		panic("cli: unknown flag " + flag)
	}
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("cli: bind %s: %v", flag, err))
	}
}

// load reads settings and builds the logger. Console logging is only
// enabled for commands that do not own the terminal.
func (a *app) load(cmd *cobra.Command, console func(*config.Settings) bool) error {
	a.stdout = cmd.OutOrStdout()

	config.Setup(a.v, a.cfgFile)
	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings

	logger, err := logging.New(logging.Options{
		File:       settings.Log.File,
		Level:      settings.Log.Level,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		Console:    console != nil && console(settings),
		Stdout:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func withConsole(*config.Settings) bool { return true }
