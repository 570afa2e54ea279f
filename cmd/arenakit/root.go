package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/internal/pflagx"
	"github.com/pavanmanishd/arenakit/memory"
)

const envPrefix = "ARENAKIT_"

var (
	// Global flags
	logLevel     *slog.LevelVar
	logJSON      bool
	permBudget   int
	tempBudget   int
	permFallback bool
	tempFallback bool
	lang         string

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "arenakit",
	Short: "Exercise budgeted arenas, arena-backed containers and the task queue",
	Long: `arenakit drives the memory manager and the containers built on it.
It can run a concurrent stress workload, open a command console and print
arena reports.

Every flag can also be set from the environment as ARENAKIT_<FLAG>, with
dashes written as underscores (ARENAKIT_LOG_LEVEL=debug).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := pflagx.FlagSetExt(cmd.Flags()).ParseEnv(envPrefix, os.Environ()); err != nil {
			return err
		}
		setupLogging(cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	fs := rootCmd.PersistentFlags()
	logLevel = pflagx.FlagSetExt(fs).LevelP("log-level", "L", slog.LevelInfo, "log level")
	fs.BoolVar(&logJSON, "log-json", false, "use json logs")
	def := memory.DefaultConfig()
	fs.IntVar(&permBudget, "perm-budget", def.PermanentBudget, "permanent arena budget in bytes")
	fs.IntVar(&tempBudget, "temp-budget", def.TemporaryBudget, "temporary stack budget per context in bytes")
	fs.BoolVar(&permFallback, "perm-fallback", false, "overflow an exhausted permanent arena to the heap")
	fs.BoolVar(&tempFallback, "temp-fallback", false, "overflow an exhausted temporary stack to the heap")
	fs.StringVar(&lang, "lang", "en", "language tag used to format reports")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer) {
	if logJSON {
		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: logLevel,
		}))
	} else {
		logger = slog.New(tint.NewHandler(w, &tint.Options{
			Level: logLevel,
		}))
	}
	slog.SetDefault(logger)
	assert.SetLogger(logger)
}

// newManager builds a manager from the global flags.
func newManager() (*memory.Manager, error) {
	return memory.NewManager(memory.Config{
		PermanentBudget:   permBudget,
		TemporaryBudget:   tempBudget,
		PermanentFallback: permFallback,
		TemporaryFallback: tempFallback,
		Logger:            logger,
	})
}

func reportTag() (language.Tag, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und, fmt.Errorf("invalid --lang %q: %w", lang, err)
	}
	return tag, nil
}
