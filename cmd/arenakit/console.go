package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/arenakit/console"
	"github.com/pavanmanishd/arenakit/memory"
	"github.com/pavanmanishd/arenakit/profiler"
)

func init() {
	rootCmd.AddCommand(newConsoleCmd())
}

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console [script...]",
		Short: "Run console commands from scripts and standard input",
		Long: `The console command executes each script, then reads commands from
standard input until end of input or "quit". Type "help" for the list of
commands and variables.

Example:
  arenakit console
  arenakit console setup.cfg < more.cfg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.InOrStdin(), cmd.OutOrStdout(), args)
		},
	}
}

func runConsole(in io.Reader, out io.Writer, scripts []string) (err error) {
	m, err := newManager()
	if err != nil {
		return err
	}
	mc := m.NewContext()
	r := console.New(mc, console.WithOutput(out), console.WithLogger(logger))
	defer func() {
		r.Release()
		if serr := m.Shutdown(); err == nil {
			err = serr
		}
	}()

	prof := profiler.New(profiler.WithLogger(logger))
	prof.RegisterCommands(r)
	quit := registerMemoryCommands(r, m, out)

	for _, name := range scripts {
		if err := r.ExecFile(name); err != nil {
			return err
		}
	}

	interactive := isTerminal(in)
	sc := bufio.NewScanner(in)
	for !*quit {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !sc.Scan() {
			break
		}
		s := prof.Begin("console", 0)
		if err := r.ExecLine(sc.Text()); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		s.End()
	}
	return sc.Err()
}

// registerMemoryCommands adds the manager commands and the report language
// variable. The returned flag is set by "quit".
func registerMemoryCommands(r *console.Registry, m *memory.Manager, out io.Writer) *bool {
	quit := new(bool)
	r.Func("quit", "ends the console", func(args []string) error {
		if len(args) != 0 {
			return console.ErrBadArgs
		}
		*quit = true
		return nil
	})
	r.Func("memReport", "prints the arena report", func(args []string) error {
		if len(args) != 0 {
			return console.ErrBadArgs
		}
		tag, err := reportTag()
		if err != nil {
			return err
		}
		return m.Report().Format(out, tag)
	})
	r.Func("memAllocations", "logs the live allocation count of each shared arena", func(args []string) error {
		if len(args) != 0 {
			return console.ErrBadArgs
		}
		fmt.Fprintln(out, m.AllocationCount())
		return nil
	})
	console.Var(r, "reportLang", &lang)
	return quit
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
