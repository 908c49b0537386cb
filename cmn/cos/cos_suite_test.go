// Package cos provides common low-level types and utilities shared across
// the actor/worker runtime, the NetData codec, and the socket transport.
/*
 * Copyright (c) 2018-2022, NVIDIA CORPORATION. All rights reserved.
 */
package cos_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestCos(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}
