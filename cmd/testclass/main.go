package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/freemyipod/testclass/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "testclass",
	Short: "testclass checks a USB device stack against the test class firmware",
	Long: `Runs conformance cases against a device running the test class firmware:
string descriptors, vendor control requests, bulk and interrupt loopback at
packet boundary lengths, and bulk throughput benchmarks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verboseLog {
			flag.Set("logtostderr", "true")
			flag.Set("v", "1")
		}
		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

var (
	verboseLog bool
	configPath string
	cfg        *config.Config
)

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	runCmd.Flags().BoolVarP(&runEmulate, "emulate", "e", false, "Run against the built-in device emulator instead of real hardware")
	runCmd.Flags().BoolVarP(&runSave, "save", "s", false, "Save the run to the report history (overrides report.save)")
	runCmd.Flags().StringVarP(&runMetricsFile, "metrics-file", "m", "", "Write Prometheus textfile metrics to this path (overrides report.metrics_file)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verboseLog, "verbose", "V", false, "Enable verbose transfer logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: XDG config directory)")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}
