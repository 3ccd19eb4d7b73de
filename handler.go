// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsrecv

import (
	"context"
	"io"
)

// ConnectHandler drives one accepted connection for the lifetime of ctx.
// Server hands every accepted net.Conn to a ConnectHandler's Run.
type ConnectHandler interface {
	Run(ctx context.Context, conn io.ReadWriter)
}

// SendFunc writes one message (text if isText, binary otherwise) read from
// src to the peer.
type SendFunc func(src io.Reader, isText bool) error

// SessionHandler is one connected peer's application-level session, as
// seen from the server side.
type SessionHandler interface {
	// GetId returns an identifier stable for the life of the session.
	GetId() int64
	// ReadDump delivers one fully reassembled message's payload.
	ReadDump(r io.Reader, isText bool) error
	// Close releases any resources held for this session.
	Close()
}

// SessionsHandler accepts and tracks SessionHandlers for a server.
type SessionsHandler interface {
	// Connect registers a new session able to send via w and cancel the
	// connection via c, returning the SessionHandler that will receive its
	// messages.
	Connect(ctx context.Context, w SendFunc, c func()) (SessionHandler, error)
	// Close unregisters a session previously returned by Connect.
	Close(s SessionHandler) error
}

// ClientHandler is the client-side counterpart of SessionHandler: a single
// outbound connection's application logic.
type ClientHandler interface {
	// Connect is called once the connection is established, with w able to
	// send messages and c able to cancel the connection.
	Connect(ctx context.Context, w SendFunc, c func()) error
	// ReadPump delivers one fully reassembled message's payload of the
	// given length.
	ReadPump(r io.Reader, length int64, isText bool) error
	// Close releases any resources held for this connection.
	Close()
}
