package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orca-dev/orca-install/internal/buildinfo"
	"github.com/orca-dev/orca-install/internal/config"
	"github.com/orca-dev/orca-install/internal/errmsg"
	"github.com/orca-dev/orca-install/internal/install"
	"github.com/orca-dev/orca-install/internal/log"
	"github.com/orca-dev/orca-install/internal/platform"
	"github.com/orca-dev/orca-install/internal/userconfig"
)

var (
	flagBinDir  string
	flagTag     string
	flagRepo    string
	flagQuiet   bool
	flagVerbose bool
	flagDebug   bool
	flagTrace   bool
)

// usageError marks a command-line mistake so it exits with ExitUsage
// instead of the general error code.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

var rootCmd = &cobra.Command{
	Use:   "orca-install",
	Short: "Download and install the orca CLI",
	Long: `orca-install fetches an orca release from GitHub, verifies its
SHA-256 checksum against the published manifest, and installs the
binary for the current platform.

Examples:
  orca-install                       # install the latest release
  orca-install -t v1.2.3             # install a specific release
  orca-install -b /usr/local/bin     # install to a custom directory`,
	Version:       buildinfo.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		cfg, err := buildConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		inst := install.New(cfg)
		installedPath, err := inst.Run(ctx)
		if err != nil {
			return err
		}

		if !flagQuiet {
			fmt.Printf("Installed %s to %s\n", cfg.BinaryName, installedPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBinDir, "bin-dir", "b", "", "directory to install the binary into")
	rootCmd.PersistentFlags().StringVarP(&flagTag, "tag", "t", "", "release tag to install (default: latest)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show operational detail")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "show debug detail")
	rootCmd.PersistentFlags().BoolVarP(&flagTrace, "trace", "x", false, "show maximum detail, including asset URLs")
	rootCmd.PersistentFlags().StringVar(&flagRepo, "repo", "", "override the source repository (owner/repo)")
	_ = rootCmd.PersistentFlags().MarkHidden("repo")

	// Flag-parse failures are usage errors, not pipeline failures.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(platformsCmd)
}

// logLevel maps verbosity flags to a slog level. The most verbose flag
// set wins; quiet loses to any of them.
func logLevel(quiet, verbose, debug, trace bool) slog.Level {
	switch {
	case trace, debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func setupLogger() {
	lvl := logLevel(flagQuiet, flagVerbose, flagDebug, flagTrace)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	log.SetDefault(log.New(h))
}

// buildConfig assembles the effective configuration. Precedence, lowest
// to highest: built-in defaults, ~/.orca/config.toml, environment,
// command-line flags. Platform detection runs here so an unsupported
// host fails before any network activity.
func buildConfig() (config.Config, error) {
	cfg := config.Default()

	// Default() already applied the environment, so config file values
	// only fill slots the environment left alone.
	if uc, err := userconfig.Load(); err == nil && uc != nil {
		if uc.BinDir != "" && os.Getenv(config.EnvBinDir) == "" {
			cfg.BinDir = uc.BinDir
		}
		if uc.Tag != "" {
			cfg.Tag = uc.Tag
		}
	}

	if flagBinDir != "" {
		cfg.BinDir = flagBinDir
	}
	if flagTag != "" {
		cfg.Tag = flagTag
	}
	if flagRepo != "" {
		owner, repo, ok := strings.Cut(flagRepo, "/")
		if !ok || owner == "" || repo == "" {
			return config.Config{}, &usageError{err: fmt.Errorf("invalid --repo %q, expected owner/repo", flagRepo)}
		}
		cfg.Owner = owner
		cfg.Repo = repo
	}

	plat, err := platform.Detect()
	if err != nil {
		return config.Config{}, err
	}
	cfg.Platform = plat

	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errmsg.Format(err))
		os.Exit(exitCodeFor(err))
	}
}
