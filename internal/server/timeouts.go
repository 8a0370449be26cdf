package server

import "time"

const defaultShutdown = 30 * time.Second

// Timeouts bound request handling and shutdown.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}
