/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities_test.go
Description: Unit tests for the utility commands. Checks the mutator listing
covers the full strategies surface, including the composite.
*/

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAvailableMutatorsListsFullSurface tests that every mutator the
// strategies package exposes appears in the listing
func TestAvailableMutatorsListsFullSurface(t *testing.T) {
	names := make(map[string]bool)
	for _, mutator := range availableMutators() {
		names[mutator.Name()] = true
	}

	for _, want := range []string{
		"BitFlipMutator",
		"ArithmeticMutator",
		"InterestingValuesMutator",
		"ByteSubstitutionMutator",
		"HavocMutator",
		"SpliceMutator",
		"CompositeMutator",
	} {
		assert.True(t, names[want], "listing is missing %s", want)
	}
}

// TestAvailableMutatorsCompositeIsDeterministic tests that the listed
// composite batches only the deterministic stage
func TestAvailableMutatorsCompositeIsDeterministic(t *testing.T) {
	for _, mutator := range availableMutators() {
		if mutator.Name() == "CompositeMutator" {
			assert.True(t, mutator.Deterministic())
			return
		}
	}
	t.Fatal("no composite in the listing")
}
