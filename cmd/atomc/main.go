// Command atomc is the AtomC compiler/VM CLI: `run` compiles and executes a
// source file, `build` compiles it and prints an instruction listing
// without executing anything. Built on cobra, replacing the prior
// flag-based main.go.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeassociates/atomc/internal/config"
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errs.Cause(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var trace bool

	root := &cobra.Command{
		Use:           "atomc",
		Short:         "AtomC compiler and stack-machine interpreter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&trace, "trace", false, "log one line per executed VM instruction")

	root.AddCommand(newRunCmd(&trace))
	root.AddCommand(newBuildCmd(&trace))
	return root
}

func newRunCmd(trace *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "compile and execute an AtomC source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(*trace, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer sess.Sync()

			prog, err := compileFile(sess, args[0])
			if err != nil {
				return err
			}
			return sess.Run(prog)
		},
	}
}

func newBuildCmd(trace *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "build <file>",
		Short: "compile an AtomC source file and print its instruction listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(*trace, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer sess.Sync()

			prog, err := compileFile(sess, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), prog.Code.Disassemble())
			return nil
		},
	}
}

func newSession(trace bool, out io.Writer) (*session.Session, error) {
	return session.New(config.WithTrace(trace), config.WithOutput(out))
}

func compileFile(sess *session.Session, path string) (*session.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return sess.Compile(string(src))
}
