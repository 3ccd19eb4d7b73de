// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package msutil

import (
	"io"

	ms "github.com/cmacro/wsrecv"
	"github.com/cmacro/wsrecv/recv"
)

// Message is one fully reassembled WebSocket message.
type Message struct {
	OpCode  ms.OpCode
	Payload []byte
}

// ReadMessage drains src through a recv.Receiver until src reports an error
// and returns every message reassembled along the way. If the receiver fails
// first, it stops there and returns the receiver's error; a non-EOF error
// from src is returned as is.
//
// Like io.ReadFull, the returned error distinguishes where EOF landed: io.EOF
// if src yielded nothing at all, io.ErrUnexpectedEOF if it stopped mid-frame,
// and nil if it stopped cleanly on a frame boundary (including a close
// frame, after which the receiver is Dead).
func ReadMessage(src io.Reader, maxPayload uint64, extensions map[string]recv.Extension) ([]Message, error) {
	r := recv.New(extensions, maxPayload)
	defer r.Cleanup()

	var (
		messages    []Message
		callbackErr error
	)
	r.OnText = func(s string) {
		messages = append(messages, Message{ms.OpText, []byte(s)})
	}
	r.OnBinary = func(b []byte) {
		messages = append(messages, Message{ms.OpBinary, append([]byte(nil), b...)})
	}
	r.OnError = func(err error, _ uint16) {
		callbackErr = err
	}

	var totalRead int
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			totalRead += n
			r.Add(buf[:n])
		}
		if callbackErr != nil {
			return messages, callbackErr
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			return messages, err
		}
		if totalRead == 0 {
			return messages, io.EOF
		}
		if r.Idle() {
			return messages, nil
		}
		return messages, io.ErrUnexpectedEOF
	}
}
