// Package auth holds session token primitives: the 128-bit token, its
// textual and database encodings, a seedable generator, the cookie
// contract, and the Identity value handed to request handlers.
package auth

import (
	"errors"
	"math/big"
)

// TokenSize is the token length in bytes.
const TokenSize = 16

// maxDigits is len("340282366920938463463374607431768211455").
const maxDigits = 39

var ErrMalformedToken = errors.New("malformed session token")

// SessionToken is an opaque 128-bit session identifier. Bytes are little
// endian: the textual form is the decimal value of the bytes read as an
// unsigned 128-bit integer, and the database stores the bytes as is.
type SessionToken [TokenSize]byte

// String renders the token as an unsigned decimal integer.
func (t SessionToken) String() string {
	return t.bigInt().String()
}

// Bytes returns a copy of the raw token for storage.
func (t SessionToken) Bytes() []byte {
	b := make([]byte, TokenSize)
	copy(b, t[:])
	return b
}

func (t SessionToken) bigInt() *big.Int {
	var be [TokenSize]byte
	for i := range t {
		be[TokenSize-1-i] = t[i]
	}
	return new(big.Int).SetBytes(be[:])
}

// ParseSessionToken parses the decimal form produced by String. Only ASCII
// digits are accepted and the value must fit in 128 bits.
func ParseSessionToken(s string) (SessionToken, error) {
	var t SessionToken

	if len(s) == 0 || len(s) > maxDigits {
		return t, ErrMalformedToken
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return t, ErrMalformedToken
		}
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.BitLen() > TokenSize*8 {
		return t, ErrMalformedToken
	}

	var be [TokenSize]byte
	v.FillBytes(be[:])
	for i := range be {
		t[TokenSize-1-i] = be[i]
	}
	return t, nil
}

// SessionTokenFromBytes converts a stored token back.
func SessionTokenFromBytes(b []byte) (SessionToken, error) {
	var t SessionToken
	if len(b) != TokenSize {
		return t, ErrMalformedToken
	}
	copy(t[:], b)
	return t, nil
}
