package source

import "errors"

var (
	ErrNotConnected = errors.New("feed is not connected")
	ErrMissingID    = errors.New("frame has no message id")
	ErrUnknownFrame = errors.New("unknown frame type")
)
