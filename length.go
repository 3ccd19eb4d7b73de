// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsrecv

import "encoding/binary"

// DecodeLen16 decodes the 2-byte big-endian extended length field used when
// the 7-bit length in byte 1 of the header equals 126.
func DecodeLen16(b []byte) uint64 {
	return uint64(binary.BigEndian.Uint16(b))
}

// DecodeLen64 decodes the 8-byte big-endian extended length field used when
// the 7-bit length in byte 1 of the header equals 127. It fails if the high
// bit is set, per RFC 6455 section 5.2: the most significant bit must be 0.
func DecodeLen64(b []byte) (uint64, error) {
	n := binary.BigEndian.Uint64(b)
	if n&(1<<63) != 0 {
		return 0, ProtocolError("64-bit payload length has high bit set")
	}
	return n, nil
}

// EncodeLen16 writes n as a 2-byte big-endian extended length field.
func EncodeLen16(dst []byte, n uint64) {
	binary.BigEndian.PutUint16(dst, uint16(n))
}

// EncodeLen64 writes n as an 8-byte big-endian extended length field.
func EncodeLen64(dst []byte, n uint64) {
	binary.BigEndian.PutUint64(dst, n)
}
