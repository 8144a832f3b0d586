package types

import "github.com/pkg/errors"

var (
	// ErrTransport means that connection or stream failed.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedMessage means that received bytes are not a valid message.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrMessageTooLarge means that message exceeds the max size limit.
	ErrMessageTooLarge = errors.New("message exceeds the max size limit")

	// ErrProtocolViolation means that peer sent unexpected message or operation was called in wrong state.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrStoreFull means that message has not been stored because store reached its capacity.
	ErrStoreFull = errors.New("store full")

	// ErrTimeout is a general error meaning that exchange has not been completed in time.
	ErrTimeout = errors.New("timeout")

	// ErrHandshakeTimeout means that hello has not been exchanged before timeout.
	ErrHandshakeTimeout = errors.Wrap(ErrTimeout, "handshake timeout")

	// ErrRequestTimeout means that request and reply have not been exchanged before timeout.
	ErrRequestTimeout = errors.Wrap(ErrTimeout, "request timeout")
)
