package usage

import "errors"

// ErrLimitReached indicates the user exhausted today's free generations.
var ErrLimitReached = errors.New("limit reached")
