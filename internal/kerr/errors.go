// Package kerr is the kernel's error taxonomy: a single typed error
// carrying an ErrorKind, so callers across the handler/kernel boundary
// can branch on *what kind* of failure happened instead of matching
// strings.
package kerr

import "fmt"

// ErrorKind categorizes a kernel-level failure.
type ErrorKind int

const (
	// KindAlreadyInited: handler Ready/SetEngine called after the
	// handler already holds a UnitId.
	KindAlreadyInited ErrorKind = iota
	// KindUninited: a handler operation that requires Ready was called
	// before Ready().
	KindUninited
	// KindGhostUnit: a UnitId no longer present in the registry, either
	// at call time or at commit-apply time.
	KindGhostUnit
	// KindAlreadyUnitHere: AddUnit targeted an occupied position.
	KindAlreadyUnitHere
	// KindModBusy: an action was requested while the module is Busy.
	KindModBusy
	// KindModOffline: an action, or a completion, was requested while
	// the module is Offline.
	KindModOffline
	// KindMissingUnitPart: the unit has no module registered under the
	// requested kind.
	KindMissingUnitPart
	// KindMissingUnitMod: the kernel has no registered module kind
	// matching the request at all (unknown plug-in kind).
	KindMissingUnitMod
	// KindWrongUnitArgs: the action payload's type does not match what
	// the targeted module's kind expects.
	KindWrongUnitArgs
	// KindScriptError: wraps a failure raised by the embedding script
	// host, not by the kernel itself.
	KindScriptError
)

func (k ErrorKind) String() string {
	switch k {
	case KindAlreadyInited:
		return "AlreadyInited"
	case KindUninited:
		return "Uninited"
	case KindGhostUnit:
		return "GhostUnit"
	case KindAlreadyUnitHere:
		return "AlreadyUnitHere"
	case KindModBusy:
		return "ModBusy"
	case KindModOffline:
		return "ModOffline"
	case KindMissingUnitPart:
		return "MissingUnitPart"
	case KindMissingUnitMod:
		return "MissingUnitMod"
	case KindWrongUnitArgs:
		return "WrongUnitArgs"
	case KindScriptError:
		return "ScriptError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the kernel's single error type. Kind is always set;
// ModKind is populated for the kinds that are parameterized by a
// module-kind tag (MissingUnitPart, MissingUnitMod, WrongUnitArgs);
// Cause carries a wrapped underlying error for KindScriptError.
type Error struct {
	Kind    ErrorKind
	ModKind string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.ModKind != "" {
		msg = fmt.Sprintf("%s(%s)", msg, e.ModKind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

func NewWithKind(kind ErrorKind, modKind string) *Error {
	return &Error{Kind: kind, ModKind: modKind}
}

// WrapScriptError wraps an error raised by the embedding script host.
func WrapScriptError(cause error) *Error {
	return &Error{Kind: KindScriptError, Cause: cause}
}

var (
	ErrAlreadyInited   = New(KindAlreadyInited)
	ErrUninited        = New(KindUninited)
	ErrGhostUnit       = New(KindGhostUnit)
	ErrAlreadyUnitHere = New(KindAlreadyUnitHere)
	ErrModBusy         = New(KindModBusy)
	ErrModOffline      = New(KindModOffline)
)

// MissingUnitPart reports that the unit has no module of the given kind.
func MissingUnitPart(kind string) *Error {
	return NewWithKind(KindMissingUnitPart, kind)
}

// MissingUnitMod reports that kind names no registered module at all.
func MissingUnitMod(kind string) *Error {
	return NewWithKind(KindMissingUnitMod, kind)
}

// WrongUnitArgs reports an action payload that doesn't match what the
// module registered under kind expects.
func WrongUnitArgs(kind string) *Error {
	return NewWithKind(KindWrongUnitArgs, kind)
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	ke, ok := err.(*Error)
	if !ok {
		return false
	}
	return ke.Kind == kind
}
