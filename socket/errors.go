package socket

import (
	"fmt"
	"net"

	"github.com/NVIDIA/aisnet/cmn/cos"
	"github.com/NVIDIA/aisnet/status"
)

// classifyIOErr turns a low-level net.Conn read/write error into a
// status.Kind: a clean peer close is IOErr, a timed-out deadline is
// TimeoutErr, a reset/refused/broken-pipe is NetErr (retriable), and
// anything else defaults to NetErr as well.
func classifyIOErr(err error) status.Kind {
	switch {
	case cos.IsEOF(err):
		return status.IOErr
	case isTimeout(err):
		return status.TimeoutErr
	case cos.IsRetriableConnErr(err):
		return status.NetErr
	default:
		return status.NetErr
	}
}

func isTimeout(err error) bool {
	nerr, ok := err.(net.Error)
	return ok && nerr.Timeout()
}

// wrapIOErr builds a Status for an I/O failure on op, classifying err with
// classifyIOErr.
func wrapIOErr(op string, err error) status.Status {
	return status.FromDesc(fmt.Sprintf("socket: %s: %v", op, err), classifyIOErr(err))
}
