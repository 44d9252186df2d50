package entities

import (
	"github.com/pkg/errors"
)

// Kind classifies every failure a client can return.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidArgument means the caller passed input the client refuses to send.
	KindInvalidArgument
	// KindTransport means the HTTP exchange could not complete.
	KindTransport
	// KindDecode means the body did not parse into the expected shape.
	KindDecode
	// KindUpstream means the service answered but reported a failure.
	KindUpstream
)

func (k Kind) String() string {
	names := [...]string{"unknown", "invalid argument", "transport", "decode", "upstream"}
	if k < 0 || int(k) >= len(names) {
		return names[KindUnknown]
	}
	return names[k]
}

var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrTransport       = &Error{Kind: KindTransport}
	ErrDecode          = &Error{Kind: KindDecode}
	ErrUpstream        = &Error{Kind: KindUpstream}
)

// Error is the only error type returned by the API clients.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
