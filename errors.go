// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsrecv

import "fmt"

// ProtocolError is returned for frames that violate RFC 6455 framing rules.
// It carries close code 1002.
type ProtocolError string

func (e ProtocolError) Error() string { return "wsrecv: protocol error: " + string(e) }

// Code reports the close status code that this error should be reported
// under.
func (e ProtocolError) Code() StatusCode { return StatusProtocolError }

// InvalidDataError is returned for text payloads or close reasons that are
// not valid UTF-8. It carries close code 1007.
type InvalidDataError string

func (e InvalidDataError) Error() string { return "wsrecv: invalid data: " + string(e) }

func (e InvalidDataError) Code() StatusCode { return StatusInvalidFramePayloadData }

// MessageTooBigError is returned when a message's cumulative payload exceeds
// the configured MaxPayload. It carries close code 1009.
type MessageTooBigError string

func (e MessageTooBigError) Error() string { return "wsrecv: message too big: " + string(e) }

func (e MessageTooBigError) Code() StatusCode { return StatusMessageTooBig }

// codedError is satisfied by every error kind this package and recv raise;
// it lets a generic handler recover the close code a caller should report.
type codedError interface {
	error
	Code() StatusCode
}

var (
	_ codedError = ProtocolError("")
	_ codedError = InvalidDataError("")
	_ codedError = MessageTooBigError("")
)

// ErrInvalidUTF8 is the specific InvalidDataError reported for a text
// message or a close frame reason that is not valid UTF-8.
var ErrInvalidUTF8 = InvalidDataError("invalid utf8 payload")

// ClosedError is both an error value and the parsed body of a close frame:
// the code and optional reason the peer sent (or the synthetic 1005 "no
// status received" when the close body was empty).
type ClosedError struct {
	Code   StatusCode
	Reason string
}

func (e ClosedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("wsrecv: closed: %d", e.Code)
	}
	return fmt.Sprintf("wsrecv: closed: %d %s", e.Code, e.Reason)
}
