package models

import "time"

// Credential holds one principal's OAuth access credential. Read by every
// work item executor before an authenticated call; mutated only by the
// credential lifecycle manager. Deleted outright when renewal permanently
// fails, which forces dependent jobs to fail.
type Credential struct {
	PrincipalID  string    `json:"principal_id" badgerhold:"key"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FreshWithin reports whether the credential's expiry is more than the given
// safety margin in the future. A credential that is not fresh must be renewed
// before use; no call is ever issued inside the margin.
func (c *Credential) FreshWithin(margin time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Until(c.Expiry) > margin
}
