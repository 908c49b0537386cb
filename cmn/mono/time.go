//go:build !mono

// Package mono provides low-level monotonic time.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// Fallback for builds without the `mono` tag: runtime.nanotime is not
// linked in, so NanoTime degrades to time.Now().UnixNano(), a wall-clock
// reading that is not monotonic.
func NanoTime() int64 { return time.Now().UnixNano() }
