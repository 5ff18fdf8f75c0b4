/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: composite.go
Description: Composite mutation strategy for the instrumentation-verification
harness. Chains multiple mutators into one, concatenating deterministic
enumeration and sampling randomized stages, so callers can treat a whole
mutation pipeline as a single Mutator.
*/

package strategies

import (
	"fmt"
	"strings"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// CompositeMutator runs a list of mutators in order and concatenates
// their variants.
type CompositeMutator struct {
	mutators []interfaces.Mutator
}

// NewCompositeMutator creates a composite over the given mutators.
func NewCompositeMutator(mutators []interfaces.Mutator) *CompositeMutator {
	return &CompositeMutator{mutators: mutators}
}

// Mutate collects the variants of every member mutator.
func (m *CompositeMutator) Mutate(testCase *interfaces.TestCase) ([]*interfaces.TestCase, error) {
	var variants []*interfaces.TestCase
	for _, mutator := range m.mutators {
		out, err := mutator.Mutate(testCase)
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w", mutator.Name(), err)
		}
		variants = append(variants, out...)
	}
	return variants, nil
}

// Name returns the name of this mutator.
func (m *CompositeMutator) Name() string { return "CompositeMutator" }

// Description lists the member mutators.
func (m *CompositeMutator) Description() string {
	names := make([]string, 0, len(m.mutators))
	for _, mutator := range m.mutators {
		names = append(names, mutator.Name())
	}
	return "Chains mutators: " + strings.Join(names, ", ")
}

// Deterministic reports true only when every member is deterministic.
func (m *CompositeMutator) Deterministic() bool {
	for _, mutator := range m.mutators {
		if !mutator.Deterministic() {
			return false
		}
	}
	return true
}
