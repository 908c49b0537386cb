package socket

import "time"

const (
	defaultConnectTimeout  = 5 * time.Second
	defaultCloseTimeout    = 10 * time.Second
	defaultStartTimeout    = 5 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

func nonZeroDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
