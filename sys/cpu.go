// Package sys provides methods to read system information
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package sys

import (
	"os"
	"runtime"

	"github.com/NVIDIA/aisnet/cmn/nlog"
)

const maxProcsEnvVar = "GOMAXPROCS"

type LoadAvg struct {
	One, Five, Fifteen float64
}

// NumCPU returns the number of logical CPUs usable by the process. It is
// the default for SocketServerParams.ThreadPoolSize / SocketThreadPool sizing
// when the caller does not override it.
func NumCPU() int { return runtime.NumCPU() }

// SetMaxProcs sets GOMAXPROCS = NumCPU unless already overridden via Go environment
func SetMaxProcs() {
	if val, exists := os.LookupEnv(maxProcsEnvVar); exists {
		nlog.Warningf("GOMAXPROCS is set via Go environment %q: %q", maxProcsEnvVar, val)
		return
	}
	maxprocs := runtime.GOMAXPROCS(0)
	ncpu := NumCPU()
	if maxprocs > ncpu {
		nlog.Warningf("Reducing GOMAXPROCS (%d) to %d (num CPUs)", maxprocs, ncpu)
		runtime.GOMAXPROCS(ncpu)
	}
}
