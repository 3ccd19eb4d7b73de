// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsrecv

// NewMask fills a fresh 4-byte masking key from src, which must yield at
// least 4 bytes (e.g. crypto/rand.Reader).
func NewMask(src interface {
	Read([]byte) (int, error)
}) (key [4]byte, err error) {
	_, err = src.Read(key[:])
	return key, err
}

// Cipher XORs p in place with key, starting at mask position 0.
func Cipher(p []byte, key [4]byte) {
	for i := range p {
		p[i] ^= key[i%4]
	}
}
