// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package msutil

import (
	"github.com/cmacro/wsrecv/recv"
	"github.com/cmacro/wsrecv/wsflate"
)

// deflateName is the extensions-map key recv.New expects a negotiated
// permessage-deflate collaborator under.
const deflateName = "permessage-deflate"

// negotiateServerExtensions returns an ms.Upgrader.Extensions callback that
// accepts a permessage-deflate offer, stores the resulting collaborator
// into extensions under deflateName, and returns the response header value
// to echo back. An empty or unrecognized offer is rejected (return "")
// without touching extensions.
func negotiateServerExtensions(maxPayload uint64, extensions map[string]recv.Extension) func(string) string {
	return func(offer string) string {
		if offer == "" {
			return ""
		}
		params, ok := wsflate.Accept([]byte(offer))
		if !ok {
			return ""
		}
		extensions[deflateName] = &wsflate.Extension{Parameters: params, MaxPayload: maxPayload}
		return params.String()
	}
}

// acceptClientExtensions parses a server's negotiated Sec-WebSocket-Extensions
// response and, if it offers permessage-deflate, stores the matching
// collaborator into extensions under deflateName.
func acceptClientExtensions(negotiated []string, maxPayload uint64, extensions map[string]recv.Extension) {
	for _, offer := range negotiated {
		params, ok := wsflate.Accept([]byte(offer))
		if !ok {
			continue
		}
		extensions[deflateName] = &wsflate.Extension{Parameters: params, MaxPayload: maxPayload}
		return
	}
}
