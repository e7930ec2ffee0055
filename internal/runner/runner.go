// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
)

// CaseRunner runs a single test case to completion.
type CaseRunner interface {
	Run(ctx context.Context, tc bist.TestCase) bist.Result
}

// Observer is notified of every finished test case.
type Observer interface {
	Observe(res bist.Result)
}

// Summary is the outcome of a suite.
type Summary struct {
	Board   string        `json:"board"`
	Results []bist.Result `json:"results"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
	Skipped int           `json:"skipped,omitempty"`
}

// Success reports whether every test case ran and passed.
func (s Summary) Success() bool {
	return s.Failed == 0 && s.Skipped == 0
}

// Runner executes test cases one after another.
type Runner struct {
	log       logr.Logger
	bench     CaseRunner
	observers []Observer
}

func New(log logr.Logger, bench CaseRunner, observers ...Observer) *Runner {
	return &Runner{
		log:       log,
		bench:     bench,
		observers: observers,
	}
}

// Run executes cases in order. A cancelled context stops the suite before the next
// test case; the remaining ones are counted as skipped.
func (r *Runner) Run(ctx context.Context, board string, cases []bist.TestCase) (Summary, error) {
	summary := Summary{Board: board}
	started := time.Now()
	r.log.Info("Starting storage self-test", "board", board, "tests", len(cases))

	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			summary.Skipped = len(cases) - i
			r.log.Info("Storage self-test interrupted", "skipped", summary.Skipped)
			return summary, err
		}

		log := r.log.WithValues("label", tc.Label)
		log.Info("Start of test", "port", tc.Port, "mode", tc.Request.Mode)
		res := r.bench.Run(ctx, tc)
		if res.Passed {
			summary.Passed++
			log.Info("Test passed", "duration", res.Duration)
		} else {
			summary.Failed++
			log.Info("Test failed", "stage", res.FailedStage, "reason", res.FailureReason)
		}
		log.Info("End of test")

		summary.Results = append(summary.Results, res)
		for _, o := range r.observers {
			o.Observe(res)
		}
	}

	r.log.Info("Storage self-test finished", "board", board, "passed", summary.Passed,
		"failed", summary.Failed, "duration", time.Since(started).Round(time.Millisecond))
	return summary, nil
}
