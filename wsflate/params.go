// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

// Package wsflate implements the permessage-deflate extension (RFC 7692):
// offer negotiation and the compress/flate-backed collaborator that package
// recv drives through its Extension interface. The collaborator buffers a
// message's compressed fragments and inflates them once, at the final one.
package wsflate

import (
	"strconv"

	"github.com/gobwas/httphead"
)

// extensionToken is the permessage-deflate extension name as it appears in
// a Sec-WebSocket-Extensions header.
const extensionToken = "permessage-deflate"

// WindowBits is an LZ77 sliding window size exponent, as negotiated by the
// *_max_window_bits extension parameters. RFC 7692 allows 8 through 15; 0
// means "not specified", letting the peer assume the default of 15.
type WindowBits byte

// Parameters holds one side's permessage-deflate negotiation outcome. Its
// field names mirror the extension parameter names from RFC 7692 section 7.1.
type Parameters struct {
	ServerNoContextTakeover bool
	ClientNoContextTakeover bool
	ServerMaxWindowBits     WindowBits
	ClientMaxWindowBits     WindowBits
}

// Parse fills p from opt's parameters, which must already be known to carry
// the permessage-deflate name. It returns false when a parameter name is
// unrecognized or a *_max_window_bits value does not parse, in which case
// the offer should be rejected rather than partially honored.
func (p *Parameters) Parse(opt httphead.Option) bool {
	ok := true
	opt.Parameters.ForEach(func(key, value []byte) bool {
		switch string(key) {
		case "server_no_context_takeover":
			p.ServerNoContextTakeover = true
		case "client_no_context_takeover":
			p.ClientNoContextTakeover = true
		case "server_max_window_bits":
			bits, valid := parseWindowBits(value)
			if !valid {
				ok = false
				return false
			}
			p.ServerMaxWindowBits = bits
		case "client_max_window_bits":
			bits, valid := parseWindowBits(value)
			if !valid {
				ok = false
				return false
			}
			p.ClientMaxWindowBits = bits
		default:
			ok = false
			return false
		}
		return true
	})
	return ok
}

// Options renders p back into an httphead.Option suitable for a
// Sec-WebSocket-Extensions response header.
func (p Parameters) Options() httphead.Option {
	opt := httphead.Option{Name: []byte(extensionToken)}
	if p.ServerNoContextTakeover {
		opt.Parameters.Set([]byte("server_no_context_takeover"), nil)
	}
	if p.ClientNoContextTakeover {
		opt.Parameters.Set([]byte("client_no_context_takeover"), nil)
	}
	if p.ServerMaxWindowBits > 0 {
		opt.Parameters.Set([]byte("server_max_window_bits"), []byte(strconv.Itoa(int(p.ServerMaxWindowBits))))
	}
	if p.ClientMaxWindowBits > 0 {
		opt.Parameters.Set([]byte("client_max_window_bits"), []byte(strconv.Itoa(int(p.ClientMaxWindowBits))))
	}
	return opt
}

// String renders p as a Sec-WebSocket-Extensions header value, suitable for
// both a client's offer and a server's accepted response.
func (p Parameters) String() string {
	s := extensionToken
	if p.ServerNoContextTakeover {
		s += "; server_no_context_takeover"
	}
	if p.ClientNoContextTakeover {
		s += "; client_no_context_takeover"
	}
	if p.ServerMaxWindowBits > 0 {
		s += "; server_max_window_bits=" + strconv.Itoa(int(p.ServerMaxWindowBits))
	}
	if p.ClientMaxWindowBits > 0 {
		s += "; client_max_window_bits=" + strconv.Itoa(int(p.ClientMaxWindowBits))
	}
	return s
}

func parseWindowBits(v []byte) (WindowBits, bool) {
	if len(v) == 0 {
		return 15, true
	}
	n, err := strconv.Atoi(string(v))
	if err != nil || n < 8 || n > 15 {
		return 0, false
	}
	return WindowBits(n), true
}
