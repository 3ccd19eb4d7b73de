// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package recv

import "github.com/cmacro/wsrecv"

// validateHeader enforces the frame-level rules from spec.md §4.2. It is
// pure: every fact it needs about receiver state is passed in explicitly,
// so it can be exercised directly from tests without constructing a
// Receiver.
func validateHeader(h wsrecv.Header, hasExtension, msgInFlight bool) error {
	if h.Rsv2 || h.Rsv3 {
		return wsrecv.ProtocolError("rsv2/rsv3 must not be set")
	}
	if h.Rsv1 {
		if !hasExtension {
			return wsrecv.ProtocolError("rsv1 set without a negotiated extension")
		}
		if h.OpCode == wsrecv.OpContinuation {
			return wsrecv.ProtocolError("rsv1 set on a continuation frame")
		}
	}
	if h.OpCode.IsReserved() {
		return wsrecv.ProtocolError("reserved opcode")
	}
	if h.OpCode.IsControl() {
		if !h.Fin {
			return wsrecv.ProtocolError("control frame must not be fragmented")
		}
		if h.Length > 125 {
			return wsrecv.ProtocolError("control frame payload too large")
		}
		return nil
	}
	// Data frame.
	if h.OpCode == wsrecv.OpContinuation && !msgInFlight {
		return wsrecv.ProtocolError("continuation frame with no message in flight")
	}
	if h.OpCode != wsrecv.OpContinuation && msgInFlight {
		return wsrecv.ProtocolError("new data frame while a message is already in flight")
	}
	return nil
}
