// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package msutil

import (
	"bytes"
	"io"
	"testing"

	ms "github.com/cmacro/wsrecv"
)

var eofReader = bytes.NewReader(nil)

func TestReadMessageEOF(t *testing.T) {
	for _, test := range []struct {
		name     string
		source   func() io.Reader
		messages []Message
		err      error
	}{
		{
			name:   "immediate eof",
			source: func() io.Reader { return eofReader },
			err:    io.EOF,
		},
		{
			name: "eof mid frame",
			source: func() io.Reader {
				var buf bytes.Buffer
				f := ms.NewTextFrame([]byte("this part will be lost"))
				if err := ms.WriteHeader(&buf, f.Header); err != nil {
					panic(err)
				}
				return &buf
			},
			err: io.ErrUnexpectedEOF,
		},
		{
			name: "clean eof after fragmented message",
			source: func() io.Reader {
				var buf bytes.Buffer
				fs := []ms.Frame{
					ms.NewFrame(ms.OpText, false, []byte("fragment1")),
					ms.NewFrame(ms.OpContinuation, false, []byte(",")),
					ms.NewFrame(ms.OpContinuation, true, []byte("fragment2")),
				}
				for _, f := range fs {
					if err := ms.WriteFrame(&buf, f); err != nil {
						panic(err)
					}
				}
				return &buf
			},
			messages: []Message{
				{OpCode: ms.OpText, Payload: []byte("fragment1,fragment2")},
			},
		},
		{
			name: "clean eof after close frame",
			source: func() io.Reader {
				var buf bytes.Buffer
				if err := ms.WriteFrame(&buf, ms.NewCloseFrame(nil)); err != nil {
					panic(err)
				}
				return &buf
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := ReadMessage(test.source(), 0, nil)
			if err != test.err {
				t.Errorf("unexpected error: %v; want %v", err, test.err)
			}
			if n := len(got); n != len(test.messages) {
				t.Fatalf("unexpected number of read messages: %d; want %d", n, len(test.messages))
			}
			for i, exp := range test.messages {
				act := got[i]
				if act.OpCode != exp.OpCode {
					t.Errorf("unexpected #%d message op code: %v; want %v", i, act.OpCode, exp.OpCode)
				}
				if !bytes.Equal(act.Payload, exp.Payload) {
					t.Errorf("unexpected #%d message payload: %q; want %q", i, act.Payload, exp.Payload)
				}
			}
		})
	}
}
