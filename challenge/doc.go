// Package challenge implements the credential challenge protocol used by the
// route guard.
//
// A signing client hex-encodes the UTF-16 code units of its username and
// password, concatenates them with a Unix-seconds timestamp, and takes the
// SHA-512 of that string. The resulting digest travels as a bearer token
// (see Encode) and is recomputed server-side from the configured credential
// (see Verifier).
//
// The digest is not a MAC: there is no secret beyond the password itself.
// Security rests on transport confidentiality and on the timestamp freshness
// window enforced by the Verifier.
package challenge
