package r12

import "errors"

// Session and discovery errors. Transport failures are wrapped around these or
// propagated as-is; test with errors.Is.
var (
	// ErrNoResponse means a matching USB adapter is attached but no candidate
	// port answered the probe. The controller is most likely powered off.
	ErrNoResponse = errors.New("arm connection found, but it is not responsive; is the controller powered on?")

	ErrArmNotFound      = errors.New("arm connection not found")
	ErrOpenFailed       = errors.New("failed to open serial port")
	ErrNotConnected     = errors.New("arm is not connected")
	ErrAlreadyConnected = errors.New("arm is already connected")

	ErrUnknownFramingPolicy = errors.New("unknown framing policy")
	ErrUnknownDriver        = errors.New("unknown transport driver")
	ErrInvalidOption        = errors.New("invalid session option")
)
