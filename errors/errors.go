// Package errors contains the error handling used by the task backend. It
// follows the upspin.io/errors design: errors carry an Op, a Kind and the
// user the operation ran for, and nest to build a trace of what failed.
package errors

import (
	"bytes"
	"fmt"
	"log"
	"runtime"

	todocal "github.com/Binwin6724/todo-calender-be"
)

// Error is a domain error. Any of its fields may be left unset.
type Error struct {
	// UserID is the user the operation was performed for.
	UserID todocal.UserID
	// Op is the operation being performed, usually the name of the method
	// being invoked, eg. "Service.TaskCreate".
	Op Op
	// Kind is the class of error, or Other if its class is unknown or
	// irrelevant.
	Kind Kind
	// Err is the underlying error that triggered this one, if any.
	Err error
}

func (e *Error) isZero() bool {
	return e.UserID == "" && e.Op == "" && e.Kind == 0 && e.Err == nil
}

// Unwrap returns the underlying error so the standard library's errors.Is and
// errors.As can look through an *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an error value from its arguments.
// There must be at least one argument or E panics.
// The type of each argument determines its meaning.
// If more than one argument of a given type is presented,
// only the last one is recorded.
//
// If Kind is not specified or Other, it's pulled up from the underlying error.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("call to errors.E with no arguments")
	}
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case todocal.UserID:
			e.UserID = arg
		case Op:
			e.Op = arg
		case string:
			e.Err = Str(arg)
		case Kind:
			e.Kind = arg
		case *Error:
			copy := *arg
			e.Err = &copy
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Printf("errors.E: bad call from %s:%d: %v", file, line, args)
			return Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	// The previous error was also one of ours. Suppress duplications so the
	// message won't contain the same kind or user twice.
	if prev.UserID == e.UserID {
		prev.UserID = ""
	}
	if prev.Kind == e.Kind {
		prev.Kind = Other
	}
	if e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}
	return e
}

func pad(b *bytes.Buffer, str string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(str)
}

func (e *Error) Error() string {
	b := new(bytes.Buffer)
	if e.Op != "" {
		b.WriteString(string(e.Op))
	}
	if e.UserID != "" {
		pad(b, ", ")
		b.WriteString("user ")
		b.WriteString(string(e.UserID))
	}
	if e.Kind != 0 {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if prevErr, ok := e.Err.(*Error); ok {
			if !prevErr.isZero() {
				pad(b, ":\n\t")
				b.WriteString(e.Err.Error())
			}
		} else {
			pad(b, ": ")
			b.WriteString(e.Err.Error())
		}
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

// Op describes an operation, eg. "TaskStore.Delete".
type Op string

// Kind is the class of an error. It decides the HTTP status the error is
// reported with.
type Kind int

const (
	Other       Kind = iota // Unclassified error. This value is not printed in the error message.
	Invalid                 // Missing or malformed request fields.
	NotLoggedIn             // No credentials were sent.
	Permission              // Credentials were rejected.
	NotExist                // Task, profile or image does not exist.
	Exist                   // Item already exists.
	Internal                // Store failure or internal inconsistency.
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Invalid:
		return "invalid request"
	case NotLoggedIn:
		return "not logged in"
	case Permission:
		return "permission denied"
	case NotExist:
		return "item does not exist"
	case Exist:
		return "item already exists"
	case Internal:
		return "internal error"
	}
	return "unknown error kind"
}

// Str returns an error that formats as the given text. It is intended to
// be used as the error-typed argument to the E function.
func Str(text string) error {
	return &errorString{text}
}

type errorString struct {
	s string
}

func (e *errorString) Error() string {
	return e.s
}

// Errorf is equivalent to fmt.Errorf, but allows clients to import only this
// package for all error handling.
func Errorf(format string, args ...interface{}) error {
	return &errorString{fmt.Sprintf(format, args...)}
}

// Is reports whether err is an *Error of the given Kind.
// If err is nil then Is returns false.
func Is(kind Kind, err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		return Is(kind, e.Err)
	}
	return false
}

// Match compares its two error arguments. It can be used to check
// for expected errors in tests. Both arguments must have underlying
// type *Error or Match will return false. Otherwise it returns true
// iff every non-zero element of the first error is equal to the
// corresponding element of the second.
// If the Err field is a *Error, Match recurs on that field;
// otherwise it compares the strings returned by the Error methods.
func Match(err1, err2 error) bool {
	e1, ok := err1.(*Error)
	if !ok {
		return false
	}
	e2, ok := err2.(*Error)
	if !ok {
		return false
	}
	if e1.UserID != "" && e2.UserID != e1.UserID {
		return false
	}
	if e1.Op != "" && e2.Op != e1.Op {
		return false
	}
	if e1.Kind != Other && e2.Kind != e1.Kind {
		return false
	}
	if e1.Err != nil {
		if _, ok := e1.Err.(*Error); ok {
			return Match(e1.Err, e2.Err)
		}
		if e2.Err == nil || e2.Err.Error() != e1.Err.Error() {
			return false
		}
	}
	return true
}
