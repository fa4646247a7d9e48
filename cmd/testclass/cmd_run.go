package main

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/freemyipod/testclass/pkg/report"
	"github.com/freemyipod/testclass/pkg/suite"
)

var (
	runEmulate     bool
	runSave        bool
	runMetricsFile string
)

var runCmd = &cobra.Command{
	Use:   "run [test...]",
	Short: "Run test cases",
	Long:  "Run the named test cases, or all of them, against the connected device. Exits non-zero if any case fails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tests, err := suite.Select(args)
		if err != nil {
			return err
		}

		app, err := newApp(cfg, runEmulate)
		if err != nil {
			return err
		}
		defer app.Close()

		w := cmd.OutOrStdout()
		started := time.Now()
		results, runErr := suite.Run(app.Device, tests, func(res *suite.Result) {
			fmt.Fprintf(w, "%s: ", res.Name)
			if res.Passed() {
				fmt.Fprintln(w, "ok")
			} else {
				fmt.Fprintf(w, "FAILED: %v\n", res.Err)
			}
			if res.Output != "" {
				fmt.Fprint(w, res.Output)
			}
		})

		r := report.New(started, app.Name, results)
		fmt.Fprintln(w)
		report.WriteTable(w, r)

		if runSave || cfg.Report.Save {
			store := &report.Store{Dir: cfg.ReportDir()}
			if _, err := store.Save(r); err != nil {
				glog.Errorf("Could not save report: %v", err)
			}
		}
		metricsFile := cfg.Report.MetricsFile
		if runMetricsFile != "" {
			metricsFile = runMetricsFile
		}
		if metricsFile != "" {
			if err := report.WriteMetrics(metricsFile, r); err != nil {
				glog.Errorf("Could not write metrics: %v", err)
			}
		}

		if runErr != nil {
			_, failed := r.Counts()
			return fmt.Errorf("%d of %d test cases failed", failed, len(results))
		}
		return nil
	},
}
