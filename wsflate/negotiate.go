// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsflate

import "github.com/gobwas/httphead"

// Accept parses the raw value of a Sec-WebSocket-Extensions request header
// and reports whether it offers permessage-deflate, along with the
// Parameters of the first such offer whose parameters all parse. Offers
// with an unknown parameter or a bad window size are skipped; offers after
// the first accepted one are ignored, matching the common server policy of
// accepting the client's preferred configuration as-is.
func Accept(offers []byte) (Parameters, bool) {
	options, ok := httphead.ParseOptions(offers, nil)
	if !ok {
		return Parameters{}, false
	}
	for _, opt := range options {
		if string(opt.Name) != extensionToken {
			continue
		}
		var params Parameters
		if params.Parse(opt) {
			return params, true
		}
	}
	return Parameters{}, false
}
