// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package msutil

import (
	"bytes"
	"context"
	"io"

	ms "github.com/cmacro/wsrecv"
	"github.com/cmacro/wsrecv/recv"
)

// readBufferSize is the chunk size Connecter and Client read from the
// transport before handing bytes to the receiver; it has no bearing on the
// size of the WebSocket frames that chunk happens to straddle.
const readBufferSize = 4096

// NewConnecter returns a Connecter that accepts permessage-deflate offers up
// to maxPayload bytes of decompressed payload per message; maxPayload of 0
// leaves the decompressed size unchecked.
func NewConnecter(sections ms.SessionsHandler, log ms.Logger, maxPayload uint64) *Connecter {
	return &Connecter{
		log:             log,
		maxPayload:      maxPayload,
		SessionsHandler: sections,
	}
}

// Connecter adapts a SessionsHandler to ms.ConnectHandler, driving frame
// parsing for one accepted connection through a recv.Receiver and pumping
// raw bytes off conn until it errs, the session cancels, or a close frame
// arrives.
type Connecter struct {
	log        ms.Logger
	maxPayload uint64
	ms.SessionsHandler
}

var _ ms.ConnectHandler = (*Connecter)(nil)

func (c *Connecter) Run(ctx context.Context, conn io.ReadWriter) {
	sectionCtx, sectionCancel := context.WithCancel(ctx)

	state := ms.StateServerSide

	extensions := map[string]recv.Extension{}
	upgrader := ms.Upgrader{Extensions: negotiateServerExtensions(c.maxPayload, extensions)}
	if _, err := upgrader.Upgrade(conn); err != nil {
		c.log.Error("handshake", err)
		sectionCancel()
		return
	}

	r := recv.New(extensions, c.maxPayload)

	w := NewWriter(conn, state, 0)
	wh := func(src io.Reader, isText bool) error {
		opcode := ms.OpText
		if !isText {
			opcode = ms.OpBinary
		}
		w.Reset(conn, state, opcode)
		_, err := io.Copy(w, src)
		if err == nil {
			err = w.Flush()
		}
		if err != nil {
			c.log.Error("connect writer", err)
			sectionCancel()
		}
		return err
	}

	section, err := c.SessionsHandler.Connect(sectionCtx, wh, sectionCancel)
	if err != nil {
		c.log.Info("connection refused", err)
		return
	}
	defer func() {
		c.SessionsHandler.Close(section)
		sectionCancel()
	}()

	r.OnText = func(s string) {
		if err := section.ReadDump(bytes.NewReader([]byte(s)), true); err != nil {
			c.log.Info("read dump", err)
			sectionCancel()
		}
	}
	r.OnBinary = func(b []byte) {
		if err := section.ReadDump(bytes.NewReader(b), false); err != nil {
			c.log.Info("read dump", err)
			sectionCancel()
		}
	}
	r.OnPing = func(payload []byte) {
		if err := WriteControl(conn, state, ms.OpPong, payload); err != nil {
			c.log.Error("pong", err)
			sectionCancel()
		}
	}
	r.OnClose = func(code uint16, reason string) {
		c.log.Debug("closed", section.GetId(), ms.ClosedError{Code: ms.StatusCode(code), Reason: reason})
		sectionCancel()
	}
	r.OnError = func(err error, code uint16) {
		c.log.Error("frame error", err, code)
		sectionCancel()
	}
	defer r.Cleanup()

	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-sectionCtx.Done():
			return
		default:
		}

		n, err := conn.Read(buf)
		if n > 0 {
			r.Add(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				c.log.Info("closed", section.GetId())
			} else {
				c.log.Error("read error", err)
			}
			return
		}
	}
}
