// Command rcore is a small demonstration shell over the execution-time
// environment core: it wires a Runtime and exposes the demonstration
// workload, the profiler and the introspection REPL as cobra
// subcommands, with viper-backed configuration.
package main

import (
	"fmt"
	"os"

	"github.com/gostat/rcore/interp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile                 string
	searchPathForcePromises bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rcore",
		Short: "Execution-time environment core for the language runtime",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.rcore.yaml)")
	root.PersistentFlags().BoolVar(&searchPathForcePromises, "force-promises", false,
		"force promise bindings eagerly on multi-slot promotion")
	cobra.OnInitialize(initConfig)

	root.AddCommand(newReplCmd(), newRunCmd(), newProfileCmd())
	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".rcore")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME")
	}
	viper.SetEnvPrefix("RCORE")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
	if viper.IsSet("force_promises") {
		searchPathForcePromises = viper.GetBool("force_promises")
	}
}

func newRuntime() *interp.Runtime {
	return interp.New(interp.Options{
		SearchPathForcePromises: searchPathForcePromises,
		Logger:                  interp.NewLogger(),
	})
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive introspection console",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := newRuntime()
			interp.REPL(rt, os.Stdin, os.Stdout, os.Stderr)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bundled demonstration workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := newRuntime()
			return runDemoWorkload(rt, cmd.OutOrStdout())
		},
	}
}

func newProfileCmd() *cobra.Command {
	var (
		out      string
		interval float64
		mem      bool
		line     bool
	)
	c := &cobra.Command{
		Use:   "profile",
		Short: "Run the demonstration workload under the sampling profiler",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := newRuntime()
			if err := rt.Profiler().Start(out, interval, mem, line); err != nil {
				return err
			}
			if err := runDemoWorkload(rt, cmd.OutOrStdout()); err != nil {
				return err
			}
			return rt.Profiler().Stop()
		},
	}
	c.Flags().StringVar(&out, "out", "rcore.prof", "profile output path")
	c.Flags().Float64Var(&interval, "interval", 0.02, "sampling interval in seconds")
	c.Flags().BoolVar(&mem, "mem", false, "enable allocation accounting")
	c.Flags().BoolVar(&line, "line", false, "enable source line capture")
	return c
}
