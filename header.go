// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsrecv

import (
	"io"
)

// Header is a frame header as defined in RFC 6455, section 5.2.
type Header struct {
	Fin    bool
	Rsv1   bool
	Rsv2   bool
	Rsv3   bool
	OpCode OpCode
	Masked bool
	Length uint64
	Mask   [4]byte
}

// Rsv packs the three reserved bits into a single byte at bit6/5/4, their
// position in byte 0 of a frame header. RsvBits takes the same bits shifted
// down by 4.
func Rsv(r1, r2, r3 bool) (rsv byte) {
	if r1 {
		rsv |= 1 << 2
	}
	if r2 {
		rsv |= 1 << 1
	}
	if r3 {
		rsv |= 1
	}
	return rsv << 4
}

// RsvBits unpacks the rsv1/rsv2/rsv3 bits from bit2/1/0 of rsv, i.e. from
// byte 0 of a frame header (or the byte produced by Rsv) shifted down by 4.
func RsvBits(rsv byte) (r1, r2, r3 bool) {
	return rsv&0x4 != 0, rsv&0x2 != 0, rsv&0x1 != 0
}

// headerLen returns the number of bytes that follow the fixed 2-byte
// header for the given 7-bit length field and masked bit: the extended
// length field (0, 2 or 8 bytes) plus the mask key (0 or 4 bytes).
func headerLen(len7 byte, masked bool) int {
	n := 0
	switch len7 {
	case 126:
		n += 2
	case 127:
		n += 8
	}
	if masked {
		n += 4
	}
	return n
}

// WriteHeader writes h to w in the 2-to-14-byte wire format from RFC 6455
// section 5.2.
func WriteHeader(w io.Writer, h Header) error {
	var buf [14]byte

	buf[0] = byte(h.OpCode) & 0x0f
	if h.Fin {
		buf[0] |= 1 << 7
	}
	buf[0] |= Rsv(h.Rsv1, h.Rsv2, h.Rsv3)

	n := 2
	switch {
	case h.Length <= 125:
		buf[1] = byte(h.Length)
	case h.Length <= 0xffff:
		buf[1] = 126
		EncodeLen16(buf[2:4], h.Length)
		n += 2
	default:
		buf[1] = 127
		EncodeLen64(buf[2:10], h.Length)
		n += 8
	}
	if h.Masked {
		buf[1] |= 1 << 7
		copy(buf[n:n+4], h.Mask[:])
		n += 4
	}

	_, err := w.Write(buf[:n])
	return err
}

// ReadHeader blocks reading a full Header (2 to 14 bytes) from r. It is used
// by writer-side helpers and tests; the push-driven receiver in package recv
// parses headers incrementally instead and does not call this function.
func ReadHeader(r io.Reader) (h Header, err error) {
	var b [2]byte
	if _, err = io.ReadFull(r, b[:]); err != nil {
		return h, err
	}

	h.Fin = b[0]&(1<<7) != 0
	h.Rsv1, h.Rsv2, h.Rsv3 = RsvBits((b[0] >> 4) & 0x7)
	h.OpCode = OpCode(b[0] & 0x0f)

	h.Masked = b[1]&(1<<7) != 0
	len7 := b[1] & 0x7f

	switch len7 {
	case 126:
		var ext [2]byte
		if _, err = io.ReadFull(r, ext[:]); err != nil {
			return h, err
		}
		h.Length = DecodeLen16(ext[:])
	case 127:
		var ext [8]byte
		if _, err = io.ReadFull(r, ext[:]); err != nil {
			return h, err
		}
		if h.Length, err = DecodeLen64(ext[:]); err != nil {
			return h, err
		}
	default:
		h.Length = uint64(len7)
	}

	if h.Masked {
		if _, err = io.ReadFull(r, h.Mask[:]); err != nil {
			return h, err
		}
	}

	return h, nil
}
