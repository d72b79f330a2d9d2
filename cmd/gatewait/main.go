package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// exitCode carries the process exit status out of cobra: the primary's own
// code, or 128+signal when supervision ended on a forwarded signal.
var exitCode int

// buildRoot creates the root command and wires the subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	runFlags := &RunFlags{}
	checkFlags := &CheckFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createRunCommand(globalFlags, runFlags),
		createCheckCommand(checkFlags),
		createVersionCommand(),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "gatewait",
		Short: "Dependency-gated process supervisor",
		Long: `Gatewait launches a workload only after its upstream dependencies are
reachable. It starts an optional auxiliary process immediately, polls each
dependency until it answers, then launches the primary process and forwards
termination signals to it.

Examples:
  gatewait run --config=gatewait.toml
  gatewait check tcp://db:5432 http://cache:8080/ping`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file")
	return root
}

func createRunCommand(globalFlags *GlobalFlags, runFlags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [config.toml]",
		Short: "Supervise the configured workload",
		Long: `Run the supervision lifecycle: start the auxiliary process, wait until
every hard dependency is reachable, start the primary process, and exit with
the primary's exit code.

Examples:
  gatewait run --config=gatewait.toml
  gatewait run gatewait.toml --poll-interval=500ms
  gatewait run gatewait.toml --journal-dsn=sqlite:///var/lib/gatewait/journal.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := globalFlags.ConfigPath
			if len(args) > 0 {
				configPath = args[0]
			}
			code, err := runSupervise(configPath, *runFlags)
			exitCode = code
			return err
		},
	}

	cmd.Flags().DurationVar(&runFlags.PollInterval, "poll-interval", 0, "interval between dependency probe attempts")
	cmd.Flags().DurationVar(&runFlags.ProbeTimeout, "probe-timeout", 0, "per-attempt probe timeout")
	cmd.Flags().DurationVar(&runFlags.StopWait, "stop-wait", 0, "grace period before SIGKILL on shutdown")
	cmd.Flags().StringVar(&runFlags.Listen, "listen", "", "status server listen address")
	cmd.Flags().StringVar(&runFlags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&runFlags.JournalDSN, "journal-dsn", "", "journal sink DSN (sqlite, postgres or clickhouse)")
	return cmd
}

func createCheckCommand(checkFlags *CheckFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check TARGET...",
		Short: "Probe dependency targets once",
		Long: `Probe each target a single time and report reachability. Exits non-zero
when any target is unreachable.

Examples:
  gatewait check tcp://db:5432
  gatewait check db:5432 http://cache:8080/ping "cmd:pg_isready -q"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, *checkFlags)
		},
	}
	cmd.Flags().DurationVar(&checkFlags.Timeout, "timeout", 3*time.Second, "per-target probe timeout")
	return cmd
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("gatewait %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}

// Populated via -ldflags at release time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)
