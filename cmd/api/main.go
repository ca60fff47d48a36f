package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "scheduler",
		Short:         "Front-desk appointment schedule viewer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: config.yml in ., ./config or /app/config)")

	rootCmd.AddCommand(serveCmd(&configFile))
	rootCmd.AddCommand(showCmd(&configFile))
	rootCmd.AddCommand(doctorsCmd(&configFile))
	rootCmd.AddCommand(watchCmd(&configFile))
	rootCmd.AddCommand(prefetchCmd(&configFile))

	return rootCmd
}
