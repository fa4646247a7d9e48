package main

import (
	"fmt"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/freemyipod/testclass/pkg/report"
)

var historyCmd = &cobra.Command{
	Use:   "history [n]",
	Short: "Show saved runs",
	Long:  "Show the last n saved runs (default 10), newest first.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 10
		if len(args) == 1 {
			var err error
			n, err = strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
		}

		store := &report.Store{Dir: cfg.ReportDir()}
		reports, err := store.List(n)
		if err != nil {
			glog.Warningf("Some reports could not be read: %v", err)
		}
		if len(reports) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No saved runs in %s\n", store.Dir)
			return nil
		}
		report.WriteHistory(cmd.OutOrStdout(), reports)
		return nil
	},
}
