// Package credential abstracts where the guarded credential pair comes from.
//
// The route guard performs a single admit/deny decision against one
// configured pair; Source keeps that lookup behind an interface so a
// deployment can swap the static pair for an OS keyring entry (or, later, a
// multi-user backend) without touching the guard.
package credential
