package challenge

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// Challenge is the one-time credential payload carried by a sign-in request.
type Challenge struct {
	// HexUser is the HexUTF16 encoding of the username.
	HexUser string

	// Digest is the lowercase-hex SHA-512 digest computed by the client.
	Digest string

	// Timestamp is the Unix-seconds timestamp the digest was computed with.
	Timestamp int64
}

// Encode packages a challenge as the bearer token wire format:
// base64 of "hexUser,digest,timestamp".
func Encode(ch Challenge) string {
	payload := ch.HexUser + "," + ch.Digest + "," + strconv.FormatInt(ch.Timestamp, 10)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// Decode reverses Encode. It returns ErrMalformed when the token is not valid
// base64, carries fewer than three comma-separated fields, or has a
// non-numeric timestamp.
func Decode(token string) (Challenge, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return Challenge{}, ErrMalformed
	}

	parts := strings.SplitN(string(raw), ",", 3)
	if len(parts) < 3 {
		return Challenge{}, ErrMalformed
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return Challenge{}, ErrMalformed
	}

	return Challenge{
		HexUser:   parts[0],
		Digest:    parts[1],
		Timestamp: ts,
	}, nil
}
