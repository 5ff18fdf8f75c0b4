/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dispatcher.go
Description: Input dispatcher for the instrumentation canary. Resolves the active
input source (literal argument, named file, or standard input), acquires a small
bounded buffer, classifies its first byte, and renders exactly one output line.
This is the entire behavior of the test-instr target; the harness drives it to
confirm that distinct input classes reach distinct code paths.
*/

package dispatcher

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// BufferCapacity is the fixed capacity of the acquired input buffer.
// One byte is reserved for the display terminator, so stream reads
// consume at most BufferCapacity-1 bytes.
const BufferCapacity = 8

// Exit codes for the three terminal states of a run.
const (
	ExitSuccess     = 0
	ExitNoInput     = 1
	ExitOpenFailure = 255 // -1 mapped onto the unsigned exit-code range
)

// The four fixed output lines. These are load-bearing: coverage tooling
// distinguishes code paths by which line a run produces.
const (
	MessageZero    = "Looks like a zero to me!"
	MessageOne     = "Pretty sure that is a one!"
	MessageOther   = "Neither one or zero? How quaint!"
	MessageNoInput = "Hum?"
)

// DebugEnvVar gates the diagnostic echo of the acquired text. Only
// presence matters; the value is ignored.
const DebugEnvVar = "AFL_DEBUG"

// Error taxonomy for the acquisition step. Both are fatal: each run
// performs exactly one acquisition attempt, with no retry path.
var (
	// ErrNoInput indicates fewer than one byte was obtained from the
	// active source.
	ErrNoInput = errors.New("no input acquired")

	// ErrSourceUnavailable indicates the requested file path could not
	// be opened. No read is attempted after this error.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Classification is the outcome of dispatching on the first input byte.
// The mapping is total: every byte value lands in exactly one variant.
type Classification int

const (
	// Zero means the first byte was '0'.
	Zero Classification = iota
	// One means the first byte was '1'.
	One
	// Other covers every remaining byte value.
	Other
)

// String returns a human-readable name for the classification.
func (c Classification) String() string {
	switch c {
	case Zero:
		return "zero"
	case One:
		return "one"
	default:
		return "other"
	}
}

// Message returns the fixed output line for this classification.
func (c Classification) Message() string {
	switch c {
	case Zero:
		return MessageZero
	case One:
		return MessageOne
	default:
		return MessageOther
	}
}

// SourceKind identifies which of the three input sources is active.
type SourceKind int

const (
	// SourceArgument takes the input from a literal command-line argument.
	SourceArgument SourceKind = iota
	// SourceFile reads the input from a named file.
	SourceFile
	// SourceStdin reads the input from standard input.
	SourceStdin
)

// String returns a human-readable name for the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceArgument:
		return "argument"
	case SourceFile:
		return "file"
	default:
		return "stdin"
	}
}

// InputSource is the resolved input selection for one run. Exactly one
// source is active; Value carries the literal text for SourceArgument
// and the path for SourceFile.
type InputSource struct {
	Kind  SourceKind
	Value string
}

// ResolveSource maps the argument list (program name excluded) onto an
// InputSource. Exactly one argument selects that argument's literal text.
// Two or more arguments where the first is "-f" select the second as a
// file path. Every other shape, including zero arguments, falls through
// to standard input. This never fails: unresolvable shapes are stdin.
func ResolveSource(args []string) InputSource {
	if len(args) == 1 {
		return InputSource{Kind: SourceArgument, Value: args[0]}
	}
	if len(args) >= 2 && args[0] == "-f" {
		return InputSource{Kind: SourceFile, Value: args[1]}
	}
	return InputSource{Kind: SourceStdin}
}

// InputBuffer holds the acquired input for one run. For stream sources
// the backing storage has BufferCapacity bytes and at most
// BufferCapacity-1 are consumed, with a terminator appended after the
// last consumed byte. The argument source aliases the literal's bytes
// whole, so no length check is performed on that path.
type InputBuffer struct {
	data []byte
	n    int
}

// Len returns the number of valid input bytes.
func (b *InputBuffer) Len() int { return b.n }

// First returns the byte classification dispatches on. An empty buffer
// yields the terminator byte, so an empty argument string classifies as
// Other rather than failing.
func (b *InputBuffer) First() byte {
	if b.n == 0 {
		return 0
	}
	return b.data[0]
}

// Text returns the acquired input as text for diagnostic display.
func (b *InputBuffer) Text() string { return string(b.data[:b.n]) }

// ExitStrategy is the single configurable exit capability of the
// dispatcher. Immediate process exit and return-based signaling must
// produce identical externally observed exit codes, so the difference is
// isolated behind this interface.
type ExitStrategy interface {
	// Terminate ends the run with the given status code. ReturnStrategy
	// hands the code back to the caller; ImmediateStrategy never returns.
	Terminate(code int) int
}

// ReturnStrategy signals the exit code back to the caller.
type ReturnStrategy struct{}

// Terminate returns the code unchanged.
func (ReturnStrategy) Terminate(code int) int { return code }

// ImmediateStrategy terminates the process at the exit point.
type ImmediateStrategy struct{}

// Terminate calls os.Exit and never returns.
func (ImmediateStrategy) Terminate(code int) int {
	os.Exit(code)
	return code // unreachable
}

// Dispatcher performs one linear pass: resolve, acquire, classify,
// render, terminate. Every collaborator is injectable so the full state
// machine is testable in-process.
type Dispatcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Debug enables the diagnostic echo of the acquired text. It is read
	// once at startup from the presence of DebugEnvVar and passed in as
	// plain configuration, not consulted as global state.
	Debug bool

	// Exit decides how terminal states are signaled.
	Exit ExitStrategy

	// OpenFile opens the file source read-only. Defaults to os.Open.
	OpenFile func(path string) (*os.File, error)
}

// New creates a dispatcher wired to the real process environment.
func New() *Dispatcher {
	return &Dispatcher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Debug:  Debugging(),
		Exit:   ReturnStrategy{},
	}
}

// Debugging reports whether the debug environment variable is present.
// Any value counts, including the empty string.
func Debugging() bool {
	_, present := os.LookupEnv(DebugEnvVar)
	return present
}

// AcquireBytes fills the buffer from the resolved source. The argument
// source aliases the literal directly. File and stdin sources perform a
// single bounded read of at most BufferCapacity-1 bytes; fewer than one
// byte is ErrNoInput. An unopenable file is ErrSourceUnavailable and no
// read is attempted. An opened file is closed before returning on every
// path.
func (d *Dispatcher) AcquireBytes(source InputSource) (*InputBuffer, error) {
	if source.Kind == SourceArgument {
		return &InputBuffer{data: []byte(source.Value), n: len(source.Value)}, nil
	}

	reader := d.Stdin
	if source.Kind == SourceFile {
		open := d.OpenFile
		if open == nil {
			open = os.Open
		}
		f, err := open(source.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, source.Value)
		}
		defer f.Close()
		reader = f
	}

	buf := make([]byte, BufferCapacity)
	n, err := reader.Read(buf[:BufferCapacity-1])
	if n < 1 {
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
		}
		return nil, ErrNoInput
	}
	buf[n] = 0 // terminator, display only
	return &InputBuffer{data: buf[:n], n: n}, nil
}

// Classify maps the buffer's first byte onto a Classification. Pure and
// total: it cannot fail for any byte value.
func Classify(buf *InputBuffer) Classification {
	switch buf.First() {
	case '0':
		return Zero
	case '1':
		return One
	default:
		return Other
	}
}

// Render emits the single fixed output line for the classification.
func (d *Dispatcher) Render(c Classification) {
	fmt.Fprintln(d.Stdout, c.Message())
}

// Diagnose echoes the acquired text to the error stream. It runs before
// classification, has no effect on the classification or the exit
// status, and is skipped entirely unless Debug is set.
func (d *Dispatcher) Diagnose(buf *InputBuffer) {
	if !d.Debug {
		return
	}
	fmt.Fprintf(d.Stderr, "test-instr: %s\n", buf.Text())
}

// Run performs one complete pass and returns the exit code chosen by the
// configured exit strategy. There is exactly one exit per run: success
// after rendering, ExitNoInput after an empty read, or ExitOpenFailure
// after a failed open (reported on stderr with the offending path).
func (d *Dispatcher) Run(args []string) int {
	source := ResolveSource(args)

	buf, err := d.AcquireBytes(source)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			fmt.Fprintf(d.Stderr, "Error: unable to open %s\n", source.Value)
			return d.Exit.Terminate(ExitOpenFailure)
		}
		fmt.Fprintln(d.Stdout, MessageNoInput)
		return d.Exit.Terminate(ExitNoInput)
	}

	d.Diagnose(buf)
	d.Render(Classify(buf))
	return d.Exit.Terminate(ExitSuccess)
}
