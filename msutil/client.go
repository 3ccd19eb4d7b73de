// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package msutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	ms "github.com/cmacro/wsrecv"
	"github.com/cmacro/wsrecv/recv"
	"github.com/cmacro/wsrecv/wsflate"
)

// NewClient returns a Client that offers permessage-deflate on every dial
// and accepts up to maxPayload bytes of decompressed payload per message;
// maxPayload of 0 leaves the decompressed size unchecked.
func NewClient(section ms.ClientHandler, addr string, log ms.Logger, maxPayload uint64) *Client {
	return &Client{
		addr:       addr,
		log:        log,
		section:    section,
		maxPayload: maxPayload,
	}
}

var (
	ErrNoURL            = errors.New("frame socket is no url config")
	ErrAlreadyConnected = errors.New("frame socket is already open")
)

type Client struct {
	addr       string
	log        ms.Logger
	section    ms.ClientHandler
	maxPayload uint64

	conn net.Conn
}

// NewAutoConnectClient returns a ClientAutoConnect that reconnects with a
// linearly growing backoff whenever Run's connection attempt or read loop
// fails, until ctx is done.
func NewAutoConnectClient(section ms.ClientHandler, addr string, log ms.Logger, maxPayload uint64) *ClientAutoConnect {
	return &ClientAutoConnect{Client: Client{addr: addr, log: log, section: section, maxPayload: maxPayload}}
}

type ClientAutoConnect struct {
	Client
	ctx                 context.Context
	AutoReconnectErrors int
}

func (c *ClientAutoConnect) connect() error {
	if c.conn != nil {
		return ErrAlreadyConnected
	}
	if c.addr == "" {
		return ErrNoURL
	}
	c.Client.Run(c.ctx)
	return nil
}

// Run dials addr and drives the connection until ctx is done, reconnecting
// with a growing backoff each time the connection drops on its own.
func (c *ClientAutoConnect) Run(ctx context.Context, cancel context.CancelFunc) {
	c.ctx = ctx
	c.Client.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.autoReconnect()
	}
}

func (c *ClientAutoConnect) autoReconnect() {
	for {
		autoReconnectDelay := time.Duration(c.AutoReconnectErrors) * 2 * time.Second
		c.log.Debugf("Automatically reconnecting after %v", autoReconnectDelay)
		c.AutoReconnectErrors++
		time.Sleep(autoReconnectDelay)
		err := c.connect()
		if errors.Is(err, ErrAlreadyConnected) {
			c.log.Debugf("Connect() said we're already connected after autoreconnect sleep")
			return
		} else if errors.Is(err, ErrNoURL) {
			c.log.Debugf("Connect() is no url config")
			return
		} else if err != nil {
			c.log.Errorf("Error reconnecting after autoreconnect sleep: %v", err)
		} else {
			return
		}
	}
}

// Run dials addr, then drives frame parsing over the connection through a
// recv.Receiver until ctx is cancelled or the connection closes.
func (c *Client) Run(ctx context.Context) {
	u, err := ms.ParserAddr(c.addr)
	if err != nil {
		c.log.Error("parse addr", err)
		return
	}
	conn, err := net.Dial(u.Network, u.Address)
	if err != nil {
		c.log.Error("connect", err)
		return
	}
	c.conn = conn
	c.log.Debug("client dial", c.addr)
	defer func() {
		c.log.Debug("client closed.")
		if err := conn.Close(); err != nil {
			c.log.Error("close connection", err)
		}
		c.conn = nil
	}()

	state := ms.StateClientSide

	dialer := ms.Dialer{Host: u.Address, ExtensionsOffer: (wsflate.Parameters{}).String()}
	hs, err := dialer.Upgrade(conn)
	if err != nil {
		c.log.Error("handshake", err)
		return
	}
	extensions := map[string]recv.Extension{}
	acceptClientExtensions(hs.Extensions, c.maxPayload, extensions)

	r := recv.New(extensions, c.maxPayload)
	defer r.Cleanup()

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
		}
		return err
	}

	sctx, scancel := context.WithCancel(ctx)
	if err := c.section.Connect(sctx, wh, scancel); err != nil {
		c.log.Error("failed open section", err)
		return
	}
	defer c.section.Close()

	r.OnText = func(s string) {
		if err := c.section.ReadPump(bytes.NewReader([]byte(s)), int64(len(s)), true); err != nil {
			c.log.Info("read pump", err)
			scancel()
		}
	}
	r.OnBinary = func(b []byte) {
		if err := c.section.ReadPump(bytes.NewReader(b), int64(len(b)), false); err != nil {
			c.log.Info("read pump", err)
			scancel()
		}
	}
	r.OnPing = func(payload []byte) {
		if err := WriteControl(conn, state, ms.OpPong, payload); err != nil {
			c.log.Error("pong", err)
			scancel()
		}
	}
	r.OnClose = func(code uint16, reason string) {
		c.log.Info("socket closed.", ms.ClosedError{Code: ms.StatusCode(code), Reason: reason})
		scancel()
	}
	r.OnError = func(err error, code uint16) {
		c.log.Error("next frame error", err, code)
		scancel()
	}

	go func() {
		defer scancel()
		buf := make([]byte, readBufferSize)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				r.Add(buf[:n])
			}
			if err != nil {
				if err == io.EOF {
					c.log.Info("socket closed.")
				} else {
					c.log.Error("read error", err)
				}
				return
			}
		}
	}()

	<-sctx.Done()
}
