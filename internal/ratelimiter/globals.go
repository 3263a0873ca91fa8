package ratelimiter

import (
	"time"
)

const (
	defaultBurst = 1
	slowWaitLog  = time.Second
)
