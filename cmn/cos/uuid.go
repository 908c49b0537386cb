// Package cos provides common low-level types and utilities shared across
// the actor/worker runtime, the NetData codec, and the socket transport.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"strconv"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

// Alphabet for generating connection/session IDs, akin to shortid.DEFAULT_ABC.
const idABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const LenShortID = 9 // matches https://github.com/teris-io/shortid#id-length

var (
	sidOnce sync.Once
	sid     *shortid.Shortid
)

func initSid() {
	sid = shortid.MustNew(4 /*worker*/, idABC, uint64(time.Now().UnixNano()))
}

// GenUUID returns a short, URL-safe, globally-unique-enough identifier.
// socket.Server uses one to name its housekeeping callback, which also
// tags that server's periodic stats log lines.
func GenUUID() string {
	sidOnce.Do(initSid)
	return sid.MustGenerate()
}

// seed for HashID; arbitrary but fixed so the same input always hashes the same.
const hashSeed = 0x4a11c5

// HashID folds an arbitrary string (e.g. a peer address) down to a stable
// 64-bit tag, for callers that want a numeric rather than textual
// correlation id.
func HashID(s string) uint64 {
	return xxhash.Checksum64S([]byte(s), hashSeed)
}

func IsValidUUID(uuid string) bool { return len(uuid) >= LenShortID }

// FormatID renders a uint64 tag compactly for log lines.
func FormatID(v uint64) string { return strconv.FormatUint(v, 36) }
