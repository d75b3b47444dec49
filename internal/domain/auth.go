package domain

// PayloadKind identifies which credential an AuthorizationPayload carries
type PayloadKind int

const (
	// PayloadAccessToken is an access token previously issued by the social provider
	PayloadAccessToken PayloadKind = iota
	// PayloadAuthorizationCode is a short-lived OAuth2 authorization code from the social provider
	PayloadAuthorizationCode
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadAccessToken:
		return "access_token"
	case PayloadAuthorizationCode:
		return "authorization_code"
	default:
		return "unknown"
	}
}

// AuthorizationPayload holds exactly one provider credential.  The kind and value are fixed when the payload is
// created and cannot be changed afterwards.
type AuthorizationPayload struct {
	kind  PayloadKind
	value string
}

// AccessToken creates a payload carrying a provider access token
func AccessToken(token string) AuthorizationPayload {
	return AuthorizationPayload{kind: PayloadAccessToken, value: token}
}

// AuthorizationCode creates a payload carrying a provider authorization code
func AuthorizationCode(code string) AuthorizationPayload {
	return AuthorizationPayload{kind: PayloadAuthorizationCode, value: code}
}

func (p AuthorizationPayload) Kind() PayloadKind {
	return p.kind
}

func (p AuthorizationPayload) Value() string {
	return p.value
}

// FieldName returns the key the credential is sent under inside providerData
func (p AuthorizationPayload) FieldName() string {
	if p.kind == PayloadAuthorizationCode {
		return "code"
	}
	return "accessToken"
}

// LoginResult is the outcome of a social login attempt.  AccessToken is set if and only if Err is nil.  RefreshToken
// may be empty even when the login succeeded.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Err          error
}

// Succeeded reports whether the login produced an access token
func (r LoginResult) Succeeded() bool {
	return r.Err == nil && r.AccessToken != ""
}
