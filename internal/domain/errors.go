package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrBookUnavailable = errors.New("orderbook unavailable")
	ErrEmptyBook       = errors.New("orderbook side empty")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrRateLimited     = errors.New("rate limited")
	ErrAlreadyRunning  = errors.New("already running")
	ErrWSDisconnect    = errors.New("websocket disconnected")
)
