package credential

import "context"

// StaticSource holds the single fixed pair supplied by the integrator.
type StaticSource struct {
	cred Credential
}

// NewStaticSource returns a source backed by one fixed credential pair.
func NewStaticSource(username, password string) *StaticSource {
	return &StaticSource{cred: Credential{Username: username, Password: password}}
}

// Lookup returns the configured pair when username matches, ErrUnknownUser
// otherwise.
func (s *StaticSource) Lookup(_ context.Context, username string) (Credential, error) {
	if s == nil || username != s.cred.Username {
		return Credential{}, ErrUnknownUser
	}
	return s.cred, nil
}
