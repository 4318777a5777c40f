package wire

import "errors"

// Fatal framing errors. Any of these tears down the connection engine. The
// only one also reported to the supervisor is the protocol violation of a
// second Function arriving mid-flight, sent as a Failure frame with code
// "ProtocolViolation"; the others are never surfaced as a Failure frame.
var (
	// ErrUnsupportedVersion is returned when a header's version byte is not
	// the single protocol version this runtime speaks.
	ErrUnsupportedVersion = errors.New("wire: unsupported protocol version")

	// ErrUnknownAction is returned when a header's action byte does not
	// decode to one of the seven defined message kinds.
	ErrUnknownAction = errors.New("wire: unknown action")

	// ErrTruncated is returned when the peer closes or the stream ends
	// before a header or body has been read in full.
	ErrTruncated = errors.New("wire: truncated frame")

	// ErrProtocolViolation is returned when an inbound frame carries an
	// action this side never expects to receive (Register, Progress,
	// Result, Failure, Pong) or when a second Function arrives while one
	// is already in flight.
	ErrProtocolViolation = errors.New("wire: protocol violation")
)
