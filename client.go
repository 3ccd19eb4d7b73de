// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsrecv

import (
	"context"
	"net"
	"sync"
)

// NewClient builds a Client that dials addr (in the same "scheme://path"
// form Server.Run accepts) and hands the resulting connection to handler.
func NewClient(addr string, handler ConnectHandler, log Logger) *Client {
	return &Client{
		addr:    addr,
		log:     log,
		handler: handler,
	}
}

type Client struct {
	addr    string
	log     Logger
	handler ConnectHandler
	mu      sync.Mutex
	conn    net.Conn
}

// Run dials addr and drives the connection through handler.Run until ctx is
// done or the connection closes.
func (c *Client) Run(ctx context.Context) {
	u, err := ParserAddr(c.addr)
	if err != nil {
		c.log.Error("client parser addr", err)
		return
	}
	conn, err := net.Dial(u.Data())
	if err != nil {
		c.log.Error("client dial connect", err)
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	defer func() {
		if err := conn.Close(); err != nil {
			c.log.Error("client close connection", err)
		} else {
			c.log.Info("client closed", c.addr)
		}
	}()

	c.handler.Run(ctx, conn)
}
