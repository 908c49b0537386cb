// Package status provides a closed error-kind taxonomy and a status value
// that carries a kind, an optional numeric code, and an optional
// description, implementing the standard error interface.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package status

import "fmt"

// Kind categorizes a Status. The zero value is Ok.
type Kind int

const (
	Ok Kind = iota
	Err
	IOErr
	RuntimeErr
	NetErr
	RpcErr
	TimeoutErr
	Invalid
	System
	NotImplemented
	Unsupported
)

// Unspecified is the sentinel code value used when no code was given.
const Unspecified int = -1

func (k Kind) String() string {
	switch k {
	case Ok:
		return "Success"
	case Err:
		return "Generic"
	case IOErr:
		return "IO"
	case RuntimeErr:
		return "Runtime"
	case NetErr:
		return "Network"
	case RpcErr:
		return "Rpc"
	case TimeoutErr:
		return "Timeout"
	case Invalid:
		return "Invalid"
	case System:
		return "System"
	case NotImplemented:
		return "NotImplemented"
	case Unsupported:
		return "Unsupported"
	default:
		return "Unspecified"
	}
}

// Status is the result of an operation: a Kind plus an optional code and
// description. The zero Status is Ok and therefore a valid, non-nil error
// value whose Error() method formats as "[Success]" — callers that care
// about success/failure must use Ok(), not a nil check.
type Status struct {
	kind    Kind
	code    int
	desc    string
	hasCode bool
	hasDesc bool
}

// New constructs an Ok status.
func New() Status {
	return Status{kind: Ok}
}

// FromKind constructs a status of the given kind with an unspecified code.
func FromKind(kind Kind) Status {
	return Status{kind: kind, code: Unspecified, hasCode: true}
}

// FromDesc constructs an error status (kind defaults to Err) carrying a
// description.
func FromDesc(desc string, kind ...Kind) Status {
	k := Err
	if len(kind) > 0 {
		k = kind[0]
	}
	return Status{kind: k, code: Unspecified, hasCode: true, desc: desc, hasDesc: true}
}

// FromCode constructs an error status (kind defaults to Err) carrying a code.
func FromCode(code int, kind ...Kind) Status {
	k := Err
	if len(kind) > 0 {
		k = kind[0]
	}
	return Status{kind: k, code: code, hasCode: true}
}

// FromCodeDesc constructs an error status (kind defaults to Err) carrying
// both a code and a description.
func FromCodeDesc(code int, desc string, kind ...Kind) Status {
	k := Err
	if len(kind) > 0 {
		k = kind[0]
	}
	return Status{kind: k, code: code, hasCode: true, desc: desc, hasDesc: true}
}

func (s Status) Kind() Kind { return s.kind }

// Ok reports whether the status represents success.
func (s Status) Ok() bool { return s.kind == Ok }

// Code returns the status code, or Unspecified if none was set.
func (s Status) Code() int {
	if !s.hasCode {
		return Unspecified
	}
	return s.code
}

// Desc returns the status description, or "" if none was set.
func (s Status) Desc() string { return s.desc }

// String formats the status as "[KindName] Code=N Desc=\"...\"", omitting
// the Code/Desc suffix entirely when the status is Ok.
func (s Status) String() string {
	if s.Ok() {
		return "[" + s.kind.String() + "]"
	}
	code := s.code
	if !s.hasCode {
		code = Unspecified
	}
	return fmt.Sprintf("[%s] Code=%d Desc=%q", s.kind, code, s.desc)
}

// Error implements the error interface so a Status can be returned and
// compared anywhere an error is expected.
func (s Status) Error() string { return s.String() }
