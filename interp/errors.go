package interp

import "fmt"

// attributeCaller implements the §7 propagation policy: a user error
// carries the best-available caller activation, found by walking up
// from the failing activation to the nearest one with a valid syntax
// node.
func attributeCaller(c *RCaller) *RCaller {
	for c != nil {
		uc := UnwrapPromiseCaller(c)
		if uc.Valid() {
			return uc
		}
		c = uc.previous
	}
	return nil
}

// NotThatManyFramesError is raised by decode_frame_number (§4.5) when a
// requested frame number is out of range of the current dynamic stack.
type NotThatManyFramesError struct {
	Requested int
	Caller    *RCaller
}

func (e *NotThatManyFramesError) Error() string {
	return fmt.Sprintf("not that many frames on the call stack (requested %d)", e.Requested)
}

// InvalidArgumentError is a generic user-facing argument validation
// failure.
type InvalidArgumentError struct {
	Msg    string
	Caller *RCaller
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Msg }

// InvalidModeError reports an unsupported profiler or connection mode
// string.
type InvalidModeError struct {
	Mode   string
	Caller *RCaller
}

func (e *InvalidModeError) Error() string { return "invalid mode: " + e.Mode }

// MustBeEnvironError reports that an operation required an environment
// value and didn't get one.
type MustBeEnvironError struct {
	Got    ValueTag
	Caller *RCaller
}

func (e *MustBeEnvironError) Error() string {
	return fmt.Sprintf("argument must be an environment, got tag %d", e.Got)
}

// RecursivePromiseError is a fatal runtime-invariant violation (§7):
// a promise was entered for forcing while already forcing.
type RecursivePromiseError struct {
	Caller *RCaller
}

func (e *RecursivePromiseError) Error() string {
	return "promise already under evaluation: recursive default argument reference"
}

// InvalidCallError is a fatal runtime-invariant violation raised when
// the caller-chain or frame-descriptor bookkeeping is found internally
// inconsistent (should never happen outside of a programming error in
// this module itself).
type InvalidCallError struct{ Msg string }

func (e *InvalidCallError) Error() string { return "invalid call: " + e.Msg }

// InvalidAssumptionError is internal; it is only ever re-raised to a
// caller in a deoptimization path, never surfaced as an ordinary user
// error.
type InvalidAssumptionError struct{ Msg string }

func (e *InvalidAssumptionError) Error() string { return "invalid assumption: " + e.Msg }

// IOError wraps a profile-file open/close failure as a user error
// reported from the initiating call only; it never kills the
// interpreter (§7).
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
