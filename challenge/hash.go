package challenge

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// HexUTF16 encodes every UTF-16 code unit of s as four lowercase hex digits.
// Characters outside the BMP contribute two code units (their surrogate
// pair), matching what a browser's charCodeAt produces. The fixed width keeps
// the encoding reversible.
func HexUTF16(s string) string {
	units := utf16.Encode([]rune(s))

	var b strings.Builder
	b.Grow(len(units) * 4)
	for _, u := range units {
		fmt.Fprintf(&b, "%04x", u)
	}
	return b.String()
}

// DecodeHexUTF16 reverses HexUTF16.
func DecodeHexUTF16(s string) (string, error) {
	if len(s)%4 != 0 {
		return "", ErrMalformed
	}

	units := make([]uint16, 0, len(s)/4)
	for i := 0; i < len(s); i += 4 {
		n, err := strconv.ParseUint(s[i:i+4], 16, 16)
		if err != nil {
			return "", ErrMalformed
		}
		units = append(units, uint16(n))
	}
	return string(utf16.Decode(units)), nil
}

// Digest computes the challenge digest for an already hex-encoded credential
// pair and a Unix-seconds timestamp. The result is lowercase hex, identical
// to what the login page's client-side code produces.
func Digest(hexUser, hexPass string, timestamp int64) string {
	msg := hexUser + hexPass + strconv.FormatInt(timestamp, 10)
	sum := sha512.Sum512([]byte(msg))
	return hex.EncodeToString(sum[:])
}
