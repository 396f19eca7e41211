package types

import "errors"

var (
	ErrNoCredential       = errors.New("session credential is missing")
	ErrCredentialExpired  = errors.New("session credential is expired")
	ErrMalformedMessage   = errors.New("malformed push message")
	ErrForeignEntity      = errors.New("message addressed to another device")
	ErrUnknownMessageType = errors.New("unknown push message type")
	ErrBootstrapFailed    = errors.New("initial tracking fetch failed")
	ErrEngineStopped      = errors.New("tracking engine stopped")
	ErrNoAddress          = errors.New("provider returned no address")
	ErrNoRoute            = errors.New("routing service returned no route")
	ErrMaxRetries         = errors.New("push reconnect attempts exhausted")
)
