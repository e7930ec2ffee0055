// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/ironcore-dev/board-bist/internal/runner"
)

const (
	DefaultDuration = time.Second
	DefaultSteps    = 5
)

// Payload is the document posted after a suite.
type Payload struct {
	Hostname string    `json:"hostname,omitempty"`
	Finished time.Time `json:"finished"`
	runner.Summary
}

// Publisher posts reports to a collector endpoint.
type Publisher struct {
	URL      string
	Duration time.Duration
	Steps    int
	client   *http.Client
	log      logr.Logger
}

// NewPublisher creates a Publisher posting to url, retrying with exponential backoff
// starting at duration.
func NewPublisher(log logr.Logger, url string, duration time.Duration) *Publisher {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Publisher{
		URL:      url,
		Duration: duration,
		Steps:    DefaultSteps,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// Publish posts r. Server errors and connection failures are retried, a rejected
// report is not.
func (p *Publisher) Publish(ctx context.Context, r Payload) error {
	jsonData, err := json.Marshal(r)
	if err != nil {
		return err
	}

	var rejected error
	err = wait.ExponentialBackoffWithContext(
		ctx,
		wait.Backoff{
			Steps:    p.Steps,
			Duration: p.Duration,
			Factor:   2.0,
			Jitter:   0.1,
		},
		func(ctx context.Context) (bool, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(jsonData))
			if err != nil {
				return false, err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := p.client.Do(req)
			if err != nil {
				p.log.Error(err, "failed to post results", "url", p.URL)
				return false, nil
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					p.log.Error(err, "failed to close response body")
				}
			}()

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return true, nil
			case resp.StatusCode >= 400 && resp.StatusCode < 500:
				rejected = fmt.Errorf("results rejected by %s: %s", p.URL, resp.Status)
				return false, rejected
			}
			p.log.Info("Result collector unavailable, retrying", "url", p.URL, "status", resp.Status)
			return false, nil
		},
	)
	if rejected != nil {
		return rejected
	}
	if err != nil {
		return fmt.Errorf("failed to publish results to %s: %w", p.URL, err)
	}
	p.log.Info("Results published", "url", p.URL)
	return nil
}
