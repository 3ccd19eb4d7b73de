// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package recv

import "github.com/cmacro/wsrecv"

// Extension is the pluggable collaborator behind permessage-deflate (RFC
// 7692). The receiver never implements decompression itself; a negotiated
// Extension is injected through New's extensions map and driven entirely
// through this interface. See package wsflate for the concrete
// implementation.
type Extension interface {
	// Decompress streams one compressed frame fragment through the
	// extension's inflater. fin must be true on the last fragment of a
	// message; the extension appends the permessage-deflate tail bytes
	// and resets its per-message dictionary at that point. cb is invoked
	// exactly once, synchronously or later, with the decompressed bytes
	// produced so far or an error.
	Decompress(chunk []byte, fin bool, cb func([]byte, error))

	// Cleanup releases the extension's inflater/deflater state. It is
	// called exactly once, when the owning Receiver dies: on an error, on a
	// close frame, or on Cleanup, whichever comes first.
	Cleanup()
}

// ExtensionError wraps an error reported by an Extension so the receiver
// can recover the close code to report through on_error, per SPEC_FULL.md
// §8 (ExtensionError passes a deflate failure through as 1007 or 1009).
type ExtensionError struct {
	Err  error
	code wsrecv.StatusCode
}

func (e ExtensionError) Error() string { return e.Err.Error() }

func (e ExtensionError) Unwrap() error { return e.Err }

func (e ExtensionError) Code() wsrecv.StatusCode { return e.code }

// NewExtensionError wraps err to report under code when surfaced through
// on_error.
func NewExtensionError(err error, code wsrecv.StatusCode) ExtensionError {
	return ExtensionError{Err: err, code: code}
}
