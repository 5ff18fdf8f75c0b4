/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dispatcher_test.go
Description: Unit tests for the input dispatcher. Covers source resolution for
every argument shape, bounded acquisition from all three sources, first-byte
classification, the debug echo, and the exit code of every terminal state.
*/

package dispatcher_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yae-miko-0627/fuzz-project/pkg/dispatcher"
)

func newTestDispatcher(stdin string) (*dispatcher.Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	d := &dispatcher.Dispatcher{
		Stdin:  strings.NewReader(stdin),
		Stdout: stdout,
		Stderr: stderr,
		Exit:   dispatcher.ReturnStrategy{},
	}
	return d, stdout, stderr
}

// TestResolveSource tests the argument-shape to input-source mapping
func TestResolveSource(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantKind  dispatcher.SourceKind
		wantValue string
	}{
		{"no arguments", nil, dispatcher.SourceStdin, ""},
		{"single argument", []string{"0abc"}, dispatcher.SourceArgument, "0abc"},
		{"single empty argument", []string{""}, dispatcher.SourceArgument, ""},
		{"file flag", []string{"-f", "input.bin"}, dispatcher.SourceFile, "input.bin"},
		{"file flag with extras", []string{"-f", "input.bin", "junk"}, dispatcher.SourceFile, "input.bin"},
		{"two arguments without flag", []string{"a", "b"}, dispatcher.SourceStdin, ""},
		{"flag in wrong position", []string{"a", "-f"}, dispatcher.SourceStdin, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := dispatcher.ResolveSource(tt.args)
			assert.Equal(t, tt.wantKind, source.Kind)
			assert.Equal(t, tt.wantValue, source.Value)
		})
	}
}

// TestClassifyFirstByte tests the total first-byte classification
func TestClassifyFirstByte(t *testing.T) {
	d, _, _ := newTestDispatcher("")

	cases := map[string]dispatcher.Classification{
		"0":        dispatcher.Zero,
		"0remains": dispatcher.Zero,
		"1":        dispatcher.One,
		"10":       dispatcher.One,
		"x":        dispatcher.Other,
		" 0":       dispatcher.Other,
		"\x00":     dispatcher.Other,
		"\xff":     dispatcher.Other,
	}

	for input, want := range cases {
		buf, err := d.AcquireBytes(dispatcher.InputSource{
			Kind:  dispatcher.SourceArgument,
			Value: input,
		})
		require.NoError(t, err)
		assert.Equal(t, want, dispatcher.Classify(buf), "input %q", input)
	}
}

// TestClassifyEmptyArgument tests that an empty literal lands in Other
func TestClassifyEmptyArgument(t *testing.T) {
	d, _, _ := newTestDispatcher("")

	buf, err := d.AcquireBytes(dispatcher.InputSource{Kind: dispatcher.SourceArgument})
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, byte(0), buf.First())
	assert.Equal(t, dispatcher.Other, dispatcher.Classify(buf))
}

// TestArgumentAliasesLiteral tests that the argument path keeps the whole
// literal, even past the stream buffer size
func TestArgumentAliasesLiteral(t *testing.T) {
	d, _, _ := newTestDispatcher("")
	long := strings.Repeat("0", 64)

	buf, err := d.AcquireBytes(dispatcher.InputSource{
		Kind:  dispatcher.SourceArgument,
		Value: long,
	})
	require.NoError(t, err)
	assert.Equal(t, 64, buf.Len())
	assert.Equal(t, long, buf.Text())
}

// TestStdinReadIsBounded tests that stream acquisition stops one byte short
// of the buffer capacity
func TestStdinReadIsBounded(t *testing.T) {
	d, _, _ := newTestDispatcher("0123456789")

	buf, err := d.AcquireBytes(dispatcher.InputSource{Kind: dispatcher.SourceStdin})
	require.NoError(t, err)
	assert.Equal(t, dispatcher.BufferCapacity-1, buf.Len())
	assert.Equal(t, "0123456", buf.Text())
}

// TestEmptyStdin tests that an empty stream surfaces ErrNoInput
func TestEmptyStdin(t *testing.T) {
	d, _, _ := newTestDispatcher("")

	buf, err := d.AcquireBytes(dispatcher.InputSource{Kind: dispatcher.SourceStdin})
	assert.Nil(t, buf)
	assert.ErrorIs(t, err, dispatcher.ErrNoInput)
}

// TestFileAcquisition tests reading from a named file
func TestFileAcquisition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, []byte("1abcdefgh"), 0644))

	d, _, _ := newTestDispatcher("")
	buf, err := d.AcquireBytes(dispatcher.InputSource{
		Kind:  dispatcher.SourceFile,
		Value: path,
	})
	require.NoError(t, err)
	assert.Equal(t, "1abcdef", buf.Text())
	assert.Equal(t, dispatcher.One, dispatcher.Classify(buf))
}

// TestMissingFile tests that an unopenable path surfaces ErrSourceUnavailable
// without attempting a read
func TestMissingFile(t *testing.T) {
	d, _, _ := newTestDispatcher("")

	buf, err := d.AcquireBytes(dispatcher.InputSource{
		Kind:  dispatcher.SourceFile,
		Value: filepath.Join(t.TempDir(), "does-not-exist"),
	})
	assert.Nil(t, buf)
	assert.ErrorIs(t, err, dispatcher.ErrSourceUnavailable)
}

// TestRunArgument tests a full pass over the argument source
func TestRunArgument(t *testing.T) {
	tests := []struct {
		arg      string
		wantLine string
	}{
		{"0abc", dispatcher.MessageZero},
		{"1", dispatcher.MessageOne},
		{"x1", dispatcher.MessageOther},
		{"", dispatcher.MessageOther},
	}

	for _, tt := range tests {
		d, stdout, stderr := newTestDispatcher("")
		code := d.Run([]string{tt.arg})
		assert.Equal(t, dispatcher.ExitSuccess, code)
		assert.Equal(t, tt.wantLine+"\n", stdout.String())
		assert.Empty(t, stderr.String())
	}
}

// TestRunStdin tests a full pass over the stdin source
func TestRunStdin(t *testing.T) {
	d, stdout, _ := newTestDispatcher("1abc")
	code := d.Run(nil)
	assert.Equal(t, dispatcher.ExitSuccess, code)
	assert.Equal(t, dispatcher.MessageOne+"\n", stdout.String())
}

// TestRunEmptyStream tests the no-input terminal state
func TestRunEmptyStream(t *testing.T) {
	d, stdout, stderr := newTestDispatcher("")
	code := d.Run(nil)
	assert.Equal(t, dispatcher.ExitNoInput, code)
	assert.Equal(t, dispatcher.MessageNoInput+"\n", stdout.String())
	assert.Empty(t, stderr.String())
}

// TestRunOpenFailure tests the open-failure terminal state
func TestRunOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bin")
	d, stdout, stderr := newTestDispatcher("")

	code := d.Run([]string{"-f", path})
	assert.Equal(t, dispatcher.ExitOpenFailure, code)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Error: unable to open "+path+"\n", stderr.String())
}

// TestRunMalformedShapeFallsBackToStdin tests that unresolvable argument
// shapes read from standard input
func TestRunMalformedShapeFallsBackToStdin(t *testing.T) {
	d, stdout, _ := newTestDispatcher("1")
	code := d.Run([]string{"--bogus", "extra"})
	assert.Equal(t, dispatcher.ExitSuccess, code)
	assert.Equal(t, dispatcher.MessageOne+"\n", stdout.String())
}

// TestDebugEcho tests the presence-gated diagnostic echo
func TestDebugEcho(t *testing.T) {
	d, stdout, stderr := newTestDispatcher("")
	d.Debug = true

	code := d.Run([]string{"0abc"})
	assert.Equal(t, dispatcher.ExitSuccess, code)
	assert.Equal(t, "test-instr: 0abc\n", stderr.String())
	assert.Equal(t, dispatcher.MessageZero+"\n", stdout.String())
}

// TestDebugEchoFileSource tests the diagnostic echo on the file source
func TestDebugEchoFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, []byte("1file"), 0644))

	d, stdout, stderr := newTestDispatcher("")
	d.Debug = true

	code := d.Run([]string{"-f", path})
	assert.Equal(t, dispatcher.ExitSuccess, code)
	assert.Equal(t, "test-instr: 1file\n", stderr.String())
	assert.Equal(t, dispatcher.MessageOne+"\n", stdout.String())
}

// TestDebugEchoTruncatesStream tests that the echo shows only the consumed
// prefix for stream sources
func TestDebugEchoTruncatesStream(t *testing.T) {
	d, _, stderr := newTestDispatcher("0123456789")
	d.Debug = true

	d.Run(nil)
	assert.Equal(t, "test-instr: 0123456\n", stderr.String())
}

// TestDebugEchoDisabled tests that stderr stays silent without the flag
func TestDebugEchoDisabled(t *testing.T) {
	d, _, stderr := newTestDispatcher("0abc")
	d.Run(nil)
	assert.Empty(t, stderr.String())
}

// TestDebuggingEnvPresence tests that presence alone enables debugging
func TestDebuggingEnvPresence(t *testing.T) {
	t.Setenv(dispatcher.DebugEnvVar, "")
	assert.True(t, dispatcher.Debugging())

	t.Setenv(dispatcher.DebugEnvVar, "1")
	assert.True(t, dispatcher.Debugging())
}

// TestOpenFileInjection tests the injectable open hook
func TestOpenFileInjection(t *testing.T) {
	opened := ""
	d, _, _ := newTestDispatcher("")
	d.OpenFile = func(path string) (*os.File, error) {
		opened = path
		return nil, os.ErrNotExist
	}

	code := d.Run([]string{"-f", "virtual.bin"})
	assert.Equal(t, dispatcher.ExitOpenFailure, code)
	assert.Equal(t, "virtual.bin", opened)
}

// TestClassificationStrings tests the display names and fixed lines
func TestClassificationStrings(t *testing.T) {
	assert.Equal(t, "zero", dispatcher.Zero.String())
	assert.Equal(t, "one", dispatcher.One.String())
	assert.Equal(t, "other", dispatcher.Other.String())

	assert.Equal(t, dispatcher.MessageZero, dispatcher.Zero.Message())
	assert.Equal(t, dispatcher.MessageOne, dispatcher.One.Message())
	assert.Equal(t, dispatcher.MessageOther, dispatcher.Other.Message())
}

// TestReturnStrategy tests that the return strategy passes codes through
func TestReturnStrategy(t *testing.T) {
	var strategy dispatcher.ExitStrategy = dispatcher.ReturnStrategy{}
	assert.Equal(t, 0, strategy.Terminate(0))
	assert.Equal(t, 255, strategy.Terminate(255))
}
