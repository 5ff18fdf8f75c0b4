/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mutators.go
Description: Mutation strategies for the instrumentation-verification harness.
Implements the deterministic stage (bit flips, byte substitution, arithmetic
deltas, interesting values) and the randomized havoc stage used to explore the
canary's input space. Deterministic mutators enumerate a bounded set of
variants; havoc applies stacked random edits.
*/

package strategies

import (
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// child derives a new test case from a parent with mutated data.
func child(parent *interfaces.TestCase, data []byte, mutator string) *interfaces.TestCase {
	tc := &interfaces.TestCase{
		ID:         uuid.New().String(),
		Data:       data,
		ParentID:   parent.ID,
		Generation: parent.Generation + 1,
		CreatedAt:  time.Now(),
		Energy:     1,
		Metadata:   map[string]interface{}{"mutator": mutator},
	}
	return tc
}

// BitFlipMutator flips individual bits, one variant per flipped bit.
// Only the leading maxBits bits are considered to bound the output.
type BitFlipMutator struct {
	maxBits int
}

// NewBitFlipMutator creates a new bit flip mutator.
func NewBitFlipMutator(maxBits int) *BitFlipMutator {
	if maxBits <= 0 {
		maxBits = 64
	}
	return &BitFlipMutator{maxBits: maxBits}
}

// Mutate produces one variant per flipped bit.
func (m *BitFlipMutator) Mutate(testCase *interfaces.TestCase) ([]*interfaces.TestCase, error) {
	if len(testCase.Data) == 0 {
		return nil, nil
	}

	limit := len(testCase.Data) * 8
	if limit > m.maxBits {
		limit = m.maxBits
	}

	variants := make([]*interfaces.TestCase, 0, limit)
	for bit := 0; bit < limit; bit++ {
		data := make([]byte, len(testCase.Data))
		copy(data, testCase.Data)
		data[bit/8] ^= 1 << (bit % 8)
		variants = append(variants, child(testCase, data, m.Name()))
	}
	return variants, nil
}

// Name returns the name of this mutator.
func (m *BitFlipMutator) Name() string { return "BitFlipMutator" }

// Description returns a description of this mutator.
func (m *BitFlipMutator) Description() string {
	return "Flips individual bits in test case data for fine-grained mutations"
}

// Deterministic reports that this mutator enumerates a fixed variant set.
func (m *BitFlipMutator) Deterministic() bool { return true }

// ByteSubstitutionMutator replaces bytes with random values.
type ByteSubstitutionMutator struct {
	mutationRate float64
}

// NewByteSubstitutionMutator creates a new byte substitution mutator.
func NewByteSubstitutionMutator(mutationRate float64) *ByteSubstitutionMutator {
	return &ByteSubstitutionMutator{mutationRate: mutationRate}
}

// Mutate produces a single variant with randomly substituted bytes. At
// least one byte is always rewritten, even at a zero mutation rate.
func (m *ByteSubstitutionMutator) Mutate(testCase *interfaces.TestCase) ([]*interfaces.TestCase, error) {
	if len(testCase.Data) == 0 {
		return nil, nil
	}

	data := make([]byte, len(testCase.Data))
	copy(data, testCase.Data)

	changed := false
	for i := range data {
		if rand.Float64() < m.mutationRate {
			data[i] = byte(rand.Intn(256))
			changed = true
		}
	}
	if !changed {
		data[rand.Intn(len(data))] = byte(rand.Intn(256))
	}

	return []*interfaces.TestCase{child(testCase, data, m.Name())}, nil
}

// Name returns the name of this mutator.
func (m *ByteSubstitutionMutator) Name() string { return "ByteSubstitutionMutator" }

// Description returns a description of this mutator.
func (m *ByteSubstitutionMutator) Description() string {
	return "Substitutes bytes with random values for coarse-grained mutations"
}

// Deterministic reports that this mutator is randomized.
func (m *ByteSubstitutionMutator) Deterministic() bool { return false }

// ArithmeticMutator applies small additive deltas to 1-, 2-, and 4-byte
// little-endian words, one variant per position and delta.
type ArithmeticMutator struct {
	maxPositions int
}

// arithDeltas are the increments applied near each word position.
var arithDeltas = []int64{1, -1, 2, -2, 8, -8, 16, -16}

// NewArithmeticMutator creates a new arithmetic mutator.
func NewArithmeticMutator(maxPositions int) *ArithmeticMutator {
	if maxPositions <= 0 {
		maxPositions = 32
	}
	return &ArithmeticMutator{maxPositions: maxPositions}
}

// Mutate enumerates delta applications over the leading positions.
func (m *ArithmeticMutator) Mutate(testCase *interfaces.TestCase) ([]*interfaces.TestCase, error) {
	if len(testCase.Data) == 0 {
		return nil, nil
	}

	var variants []*interfaces.TestCase
	for _, size := range []int{1, 2, 4} {
		for pos := 0; pos+size <= len(testCase.Data) && pos < m.maxPositions; pos++ {
			for _, delta := range arithDeltas {
				data := make([]byte, len(testCase.Data))
				copy(data, testCase.Data)
				applyDelta(data, pos, size, delta)
				variants = append(variants, child(testCase, data, m.Name()))
			}
		}
	}
	return variants, nil
}

// applyDelta adds delta to the little-endian word of the given width at
// pos, wrapping at the word's bit width.
func applyDelta(data []byte, pos, size int, delta int64) {
	switch size {
	case 1:
		data[pos] = byte(int64(data[pos]) + delta)
	case 2:
		v := binary.LittleEndian.Uint16(data[pos:])
		binary.LittleEndian.PutUint16(data[pos:], uint16(int64(v)+delta))
	case 4:
		v := binary.LittleEndian.Uint32(data[pos:])
		binary.LittleEndian.PutUint32(data[pos:], uint32(int64(v)+delta))
	}
}

// Name returns the name of this mutator.
func (m *ArithmeticMutator) Name() string { return "ArithmeticMutator" }

// Description returns a description of this mutator.
func (m *ArithmeticMutator) Description() string {
	return "Applies small arithmetic deltas to numeric words in test cases"
}

// Deterministic reports that this mutator enumerates a fixed variant set.
func (m *ArithmeticMutator) Deterministic() bool { return true }

// InterestingValuesMutator overwrites words with boundary constants that
// commonly trigger edge conditions.
type InterestingValuesMutator struct {
	maxPositions int
}

// Interesting value sets per word width.
var (
	interesting8  = []uint64{0, 1, 0x7f, 0x80, 0xff}
	interesting16 = []uint64{0, 1, 0x7fff, 0x8000, 0xffff}
	interesting32 = []uint64{0, 1, 0x7fffffff, 0x80000000, 0xffffffff}
)

// NewInterestingValuesMutator creates a new interesting-values mutator.
func NewInterestingValuesMutator(maxPositions int) *InterestingValuesMutator {
	if maxPositions <= 0 {
		maxPositions = 32
	}
	return &InterestingValuesMutator{maxPositions: maxPositions}
}

// Mutate enumerates boundary-value substitutions over leading positions.
func (m *InterestingValuesMutator) Mutate(testCase *interfaces.TestCase) ([]*interfaces.TestCase, error) {
	if len(testCase.Data) == 0 {
		return nil, nil
	}

	var variants []*interfaces.TestCase
	widths := []struct {
		size   int
		values []uint64
	}{
		{1, interesting8},
		{2, interesting16},
		{4, interesting32},
	}

	for _, w := range widths {
		for pos := 0; pos+w.size <= len(testCase.Data) && pos < m.maxPositions; pos++ {
			for _, v := range w.values {
				data := make([]byte, len(testCase.Data))
				copy(data, testCase.Data)
				switch w.size {
				case 1:
					data[pos] = byte(v)
				case 2:
					binary.LittleEndian.PutUint16(data[pos:], uint16(v))
				case 4:
					binary.LittleEndian.PutUint32(data[pos:], uint32(v))
				}
				variants = append(variants, child(testCase, data, m.Name()))
			}
		}
	}
	return variants, nil
}

// Name returns the name of this mutator.
func (m *InterestingValuesMutator) Name() string { return "InterestingValuesMutator" }

// Description returns a description of this mutator.
func (m *InterestingValuesMutator) Description() string {
	return "Overwrites words with boundary constants (0, 1, max, sign-flip values)"
}

// Deterministic reports that this mutator enumerates a fixed variant set.
func (m *InterestingValuesMutator) Deterministic() bool { return true }

// HavocMutator stacks several random edits (flip, xor, set, insert,
// delete) per round to produce strongly perturbed variants.
type HavocMutator struct {
	rounds     int
	maxChanges int
}

// NewHavocMutator creates a new havoc mutator.
func NewHavocMutator(rounds, maxChanges int) *HavocMutator {
	if rounds <= 0 {
		rounds = 20
	}
	if maxChanges <= 0 {
		maxChanges = 8
	}
	return &HavocMutator{rounds: rounds, maxChanges: maxChanges}
}

// Mutate produces one variant per round, each with 1..maxChanges stacked
// random edits.
func (m *HavocMutator) Mutate(testCase *interfaces.TestCase) ([]*interfaces.TestCase, error) {
	variants := make([]*interfaces.TestCase, 0, m.rounds)
	for round := 0; round < m.rounds; round++ {
		data := make([]byte, len(testCase.Data))
		copy(data, testCase.Data)

		changes := 1 + rand.Intn(m.maxChanges)
		for i := 0; i < changes; i++ {
			data = randomEdit(data)
		}
		variants = append(variants, child(testCase, data, m.Name()))
	}
	return variants, nil
}

// randomEdit applies one random edit and returns the (possibly resized)
// data.
func randomEdit(data []byte) []byte {
	switch rand.Intn(5) {
	case 0: // flip a bit
		if len(data) == 0 {
			return data
		}
		data[rand.Intn(len(data))] ^= 1 << rand.Intn(8)
	case 1: // xor with a random non-zero byte
		if len(data) == 0 {
			return data
		}
		data[rand.Intn(len(data))] ^= byte(1 + rand.Intn(255))
	case 2: // set to a random value
		if len(data) == 0 {
			return data
		}
		data[rand.Intn(len(data))] = byte(rand.Intn(256))
	case 3: // insert a random byte
		idx := 0
		if len(data) > 0 {
			idx = rand.Intn(len(data) + 1)
		}
		out := make([]byte, 0, len(data)+1)
		out = append(out, data[:idx]...)
		out = append(out, byte(rand.Intn(256)))
		out = append(out, data[idx:]...)
		return out
	case 4: // delete a byte
		if len(data) == 0 {
			return data
		}
		idx := rand.Intn(len(data))
		out := make([]byte, 0, len(data)-1)
		out = append(out, data[:idx]...)
		out = append(out, data[idx+1:]...)
		return out
	}
	return data
}

// Name returns the name of this mutator.
func (m *HavocMutator) Name() string { return "HavocMutator" }

// Description returns a description of this mutator.
func (m *HavocMutator) Description() string {
	return "Stacks random flips, writes, inserts, and deletes for large perturbations"
}

// Deterministic reports that this mutator is randomized.
func (m *HavocMutator) Deterministic() bool { return false }
