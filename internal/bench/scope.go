// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"

	"github.com/go-logr/logr"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

type release struct {
	name string
	fn   func() error
}

// Scope owns the resources acquired during one benchmark run and releases them in
// reverse order of acquisition.
type Scope struct {
	log      logr.Logger
	releases []release
}

func NewScope(log logr.Logger) *Scope {
	return &Scope{log: log}
}

// Defer registers fn to run when the scope is closed.
func (s *Scope) Defer(name string, fn func() error) {
	s.releases = append(s.releases, release{name: name, fn: fn})
}

// Close runs every release, even when earlier ones fail. Closing twice is a no-op.
func (s *Scope) Close() error {
	var errs []error
	for i := len(s.releases) - 1; i >= 0; i-- {
		r := s.releases[i]
		if err := r.fn(); err != nil {
			s.log.Error(err, "Cleanup step failed", "step", r.name)
			errs = append(errs, fmt.Errorf("%s: %w", r.name, err))
			continue
		}
		s.log.V(1).Info("Cleanup step done", "step", r.name)
	}
	s.releases = nil
	return utilerrors.NewAggregate(errs)
}
