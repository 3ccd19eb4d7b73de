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

// chopReader feeds its source through Read one sz-byte piece at a time,
// exercising ReadMessage against arbitrarily chopped input.
type chopReader struct {
	src io.Reader
	sz  int
}

func (c chopReader) Read(p []byte) (n int, err error) {
	sz := c.sz
	if sz == 0 {
		sz = 1
	}
	if sz > len(p) {
		sz = len(p)
	}
	return c.src.Read(p[:sz])
}

func TestReadMessageAcrossChopSizes(t *testing.T) {
	for _, test := range []struct {
		name string
		seq  []ms.Frame
		exp  []byte
	}{
		{
			name: "single",
			seq:  []ms.Frame{ms.NewTextFrame([]byte("Привет, Мир!"))},
			exp:  []byte("Привет, Мир!"),
		},
		{
			name: "single_masked",
			seq:  []ms.Frame{ms.MaskFrame(ms.NewTextFrame([]byte("Привет, Мир!")))},
			exp:  []byte("Привет, Мир!"),
		},
		{
			name: "fragmented",
			seq: []ms.Frame{
				ms.NewFrame(ms.OpText, false, []byte("Привет,")),
				ms.NewFrame(ms.OpContinuation, false, []byte(" о дивный,")),
				ms.NewFrame(ms.OpContinuation, false, []byte(" новый ")),
				ms.NewFrame(ms.OpContinuation, true, []byte("Мир!")),
			},
			exp: []byte("Привет, о дивный, новый Мир!"),
		},
		{
			name: "fragmented_masked",
			seq: []ms.Frame{
				ms.MaskFrame(ms.NewFrame(ms.OpText, false, []byte("Привет,"))),
				ms.MaskFrame(ms.NewFrame(ms.OpContinuation, false, []byte(" о дивный,"))),
				ms.MaskFrame(ms.NewFrame(ms.OpContinuation, false, []byte(" новый "))),
				ms.MaskFrame(ms.NewFrame(ms.OpContinuation, true, []byte("Мир!"))),
			},
			exp: []byte("Привет, о дивный, новый Мир!"),
		},
		{
			name: "fragmented_and_control",
			seq: []ms.Frame{
				ms.NewFrame(ms.OpText, false, []byte("Привет,")),
				ms.NewFrame(ms.OpPing, true, nil),
				ms.NewFrame(ms.OpContinuation, false, []byte(" о дивный,")),
				ms.NewFrame(ms.OpPing, true, nil),
				ms.NewFrame(ms.OpContinuation, false, []byte(" новый ")),
				ms.NewFrame(ms.OpPing, true, []byte("ping info")),
				ms.NewFrame(ms.OpContinuation, true, []byte("Мир!")),
			},
			exp: []byte("Привет, о дивный, новый Мир!"),
		},
	} {
		for _, chop := range []int{0, 1, 2, 3, 7, 64} {
			t.Run(test.name, func(t *testing.T) {
				buf := &bytes.Buffer{}
				for _, f := range test.seq {
					if err := ms.WriteFrame(buf, f); err != nil {
						t.Fatal(err)
					}
				}

				src := chopReader{src: bytes.NewReader(buf.Bytes()), sz: chop}

				got, err := ReadMessage(src, 0, nil)
				if err != nil {
					t.Fatalf("ReadMessage() error = %v", err)
				}
				if len(got) != 1 {
					t.Fatalf("unexpected number of messages: %d", len(got))
				}
				if !bytes.Equal(got[0].Payload, test.exp) {
					t.Errorf("payload = %q; want %q", got[0].Payload, test.exp)
				}
			})
		}
	}
}

func TestReadMessageEmptySourceIsEOF(t *testing.T) {
	_, err := ReadMessage(bytes.NewReader(nil), 0, nil)
	if err != io.EOF {
		t.Errorf("ReadMessage() error = %v; want io.EOF", err)
	}
}
