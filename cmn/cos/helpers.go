// Package cos provides common low-level types and utilities shared across
// the actor/worker runtime, the NetData codec, and the socket transport.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"io"
)

// Plural returns "s" unless n == 1, for error messages like "(and 3 more errors)".
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// IsEOF reports whether err is (or wraps) io.EOF / io.ErrUnexpectedEOF, the
// two ways a short framed read surfaces on a closed peer connection.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
