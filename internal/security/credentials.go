package security

// Verifier checks the ingestion shared secret and the dashboard password.
// Both checks fail closed: an unconfigured secret never matches.
type Verifier struct {
	apiKey       string
	password     string
	passwordHash string
	hasher       *Hasher
}

// NewVerifier returns a Verifier. When passwordHash is non-empty it is a bcrypt hash
// and takes precedence over the plaintext password. hasher may be nil when passwordHash is empty.
func NewVerifier(apiKey, password, passwordHash string, hasher *Hasher) *Verifier {
	if hasher == nil {
		hasher = NewHasher(0)
	}
	return &Verifier{
		apiKey:       apiKey,
		password:     password,
		passwordHash: passwordHash,
		hasher:       hasher,
	}
}

// VerifyServiceKey reports whether provided equals the configured API key.
func (v *Verifier) VerifyServiceKey(provided string) bool {
	if v == nil {
		return false
	}
	return TokenEqual(v.apiKey, provided)
}

// VerifyDashboardPassword reports whether provided is the dashboard password.
func (v *Verifier) VerifyDashboardPassword(provided string) bool {
	if v == nil || provided == "" {
		return false
	}
	if v.passwordHash != "" {
		return v.hasher.Compare(v.passwordHash, []byte(provided)) == nil
	}
	return TokenEqual(v.password, provided)
}

// DashboardPasswordConfigured reports whether any dashboard credential is set.
func (v *Verifier) DashboardPasswordConfigured() bool {
	return v != nil && (v.password != "" || v.passwordHash != "")
}
