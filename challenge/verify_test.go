package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ts int64) func() time.Time {
	return func() time.Time { return time.Unix(ts, 0).UTC() }
}

func makeChallenge(user, pass string, ts int64) Challenge {
	hexUser := HexUTF16(user)
	return Challenge{
		HexUser:   hexUser,
		Digest:    Digest(hexUser, HexUTF16(pass), ts),
		Timestamp: ts,
	}
}

func TestVerify_OK(t *testing.T) {
	const now = int64(1700000000)
	v := Verifier{Window: 30 * time.Second, Now: fixedClock(now)}

	require.NoError(t, v.Verify(makeChallenge("admin", "s3cret", now), "admin", "s3cret"))
}

func TestVerify_SingleFieldMutationsFail(t *testing.T) {
	const now = int64(1700000000)
	v := Verifier{Window: 30 * time.Second, Now: fixedClock(now)}

	good := makeChallenge("admin", "s3cret", now)

	// Digest computed with the wrong password.
	badPass := makeChallenge("admin", "s3creT", now)
	assert.ErrorIs(t, v.Verify(badPass, "admin", "s3cret"), ErrInvalidCredentials)

	// Digest computed with the wrong username.
	badUser := makeChallenge("admim", "s3cret", now)
	assert.ErrorIs(t, v.Verify(badUser, "admin", "s3cret"), ErrInvalidCredentials)

	// Timestamp shifted by one second after signing: digest no longer matches.
	shifted := good
	shifted.Timestamp = now + 1
	assert.ErrorIs(t, v.Verify(shifted, "admin", "s3cret"), ErrInvalidCredentials)

	// Single hex character flipped in the digest.
	tampered := good
	if tampered.Digest[0] == '0' {
		tampered.Digest = "1" + tampered.Digest[1:]
	} else {
		tampered.Digest = "0" + tampered.Digest[1:]
	}
	assert.ErrorIs(t, v.Verify(tampered, "admin", "s3cret"), ErrInvalidCredentials)
}

func TestVerify_WindowBoundary(t *testing.T) {
	const signed = int64(1700000000)
	window := 30 * time.Second

	cases := []struct {
		name string
		now  int64
		want error
	}{
		{name: "fresh", now: signed, want: nil},
		{name: "exactly at window", now: signed + 30, want: nil},
		{name: "one second past window", now: signed + 31, want: ErrExpired},
		{name: "exactly at window in the past", now: signed - 30, want: nil},
		{name: "one second before window", now: signed - 31, want: ErrExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Verifier{Window: window, Now: fixedClock(tc.now)}
			err := v.Verify(makeChallenge("admin", "s3cret", signed), "admin", "s3cret")
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestVerify_StaleAndWrongReportsInvalidCredentials(t *testing.T) {
	// A wrong digest on a stale challenge is a credential failure, not expiry.
	const signed = int64(1700000000)
	v := Verifier{Window: 30 * time.Second, Now: fixedClock(signed + 120)}

	ch := makeChallenge("admin", "wrong", signed)
	assert.ErrorIs(t, v.Verify(ch, "admin", "s3cret"), ErrInvalidCredentials)
}

func TestVerify_DefaultWindow(t *testing.T) {
	const signed = int64(1700000000)

	v := Verifier{Now: fixedClock(signed + int64(DefaultWindow/time.Second))}
	assert.NoError(t, v.Verify(makeChallenge("admin", "s3cret", signed), "admin", "s3cret"))

	v = Verifier{Now: fixedClock(signed + int64(DefaultWindow/time.Second) + 1)}
	assert.ErrorIs(t, v.Verify(makeChallenge("admin", "s3cret", signed), "admin", "s3cret"), ErrExpired)
}
