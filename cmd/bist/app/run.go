// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironcore-dev/board-bist/internal/bench"
	"github.com/ironcore-dev/board-bist/internal/config"
	"github.com/ironcore-dev/board-bist/internal/metrics"
	"github.com/ironcore-dev/board-bist/internal/probe"
	"github.com/ironcore-dev/board-bist/internal/report"
	"github.com/ironcore-dev/board-bist/internal/runner"
)

// ErrTestsFailed is returned when at least one test case did not pass.
var ErrTestsFailed = errors.New("storage self-test failed")

type runOptions struct {
	*options
	benchOpts     bench.Options
	metricsFile   string
	reportURL     string
	reportBackoff time.Duration

	// newBenchmark is replaced in tests.
	newBenchmark func(o *runOptions) runner.CaseRunner
}

func NewRunCommand(o *options) *cobra.Command {
	r := &runOptions{
		options:      o,
		newBenchmark: hostBenchmark,
	}
	cmd := &cobra.Command{
		Use:   "run [label...]",
		Short: "Run the storage tests of the board",
		Long:  "Run the storage tests of the board, or only the ones whose labels are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args)
		},
	}
	cmd.Flags().StringVar(&r.benchOpts.MountRoot, "mount-root", bench.DefaultMountRoot,
		"Directory below which disks under test are mounted.")
	cmd.Flags().StringVar(&r.benchOpts.TempDir, "temp-dir", os.TempDir(), "Directory for test payloads.")
	cmd.Flags().DurationVar(&r.benchOpts.StreamTimeout, "stream-timeout", bench.DefaultStreamTimeout,
		"Timeout of a single read or write transfer.")
	cmd.Flags().StringVar(&r.metricsFile, "metrics-file", "",
		"Write results to this file in the node-exporter textfile format.")
	cmd.Flags().StringVar(&r.reportURL, "report-url", "", "URL the results are posted to as JSON.")
	cmd.Flags().DurationVar(&r.reportBackoff, "report-backoff", report.DefaultDuration,
		"Initial backoff between attempts to post the results.")
	return cmd
}

func hostBenchmark(r *runOptions) runner.CaseRunner {
	opts := r.benchOpts
	opts.DescribeDisk = probe.DescribeDisk
	return bench.New(r.log().WithName("bench"), opts)
}

func (r *runOptions) run(cmd *cobra.Command, labels []string) error {
	ctx := cmd.Context()
	log := r.log()

	boards, err := r.boards()
	if err != nil {
		return err
	}
	board, err := r.selectBoard(boards)
	if err != nil {
		return err
	}
	cases, err := board.TestCases()
	if err != nil {
		return err
	}
	if cases, err = config.Filter(cases, labels); err != nil {
		return err
	}

	collector := metrics.NewResultCollector(board.Name)
	summary, runErr := runner.New(log.WithName("runner"), r.newBenchmark(r), collector).Run(ctx, board.Name, cases)
	printSummary(cmd.OutOrStdout(), summary)

	if r.metricsFile != "" {
		if err := collector.WriteTextfile(r.metricsFile); err != nil {
			log.Error(err, "failed to write metrics file", "file", r.metricsFile)
		}
	}
	if r.reportURL != "" {
		hostname, _ := os.Hostname()
		rep := report.Payload{Hostname: hostname, Finished: time.Now(), Summary: summary}
		if err := report.NewPublisher(log.WithName("report"), r.reportURL, r.reportBackoff).Publish(ctx, rep); err != nil {
			log.Error(err, "failed to publish results")
		}
	}

	if runErr != nil {
		return runErr
	}
	if !summary.Success() {
		return fmt.Errorf("%w: %d of %d tests failed", ErrTestsFailed, summary.Failed, len(summary.Results))
	}
	return nil
}

func printSummary(w io.Writer, summary runner.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LABEL\tPORT\tDEVICE\tCLASS\tWRITE\tREAD\tRESULT")
	for _, res := range summary.Results {
		device, class := "-", "-"
		if res.Device != nil {
			device, class = res.Device.DevicePath, string(res.Device.SpeedClass)
		}
		result := "PASS"
		if !res.Passed {
			result = "FAIL (" + string(res.FailedStage) + ")"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			res.Label, res.Port, device, class, rate(res.WriteMBps), rate(res.ReadMBps), result)
	}
	_ = tw.Flush()
}

func rate(mbps *float64) string {
	if mbps == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f MB/s", *mbps)
}
