package model

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CheckRequest struct {
	Token string `json:"token"`
}

// SessionInfo is the login response body. PwdExpirationDate is a Unix
// timestamp or null.
type SessionInfo struct {
	Token             string        `json:"token"`
	Username          string        `json:"username"`
	Permissions       PermissionMap `json:"permissions"`
	PwdExpirationDate *int64        `json:"pwdExpirationDate"`
	SSO               bool          `json:"sso"`
	PwdUpdateRequired bool          `json:"pwdUpdateRequired"`
}

// SessionStatus is the check response for a live token. It deliberately
// carries neither the token nor the password expiration date.
type SessionStatus struct {
	Username          string        `json:"username"`
	Permissions       PermissionMap `json:"permissions"`
	SSO               bool          `json:"sso"`
	PwdUpdateRequired bool          `json:"pwdUpdateRequired"`
}

// LoginPrompt is returned by check when no live session exists.
type LoginPrompt struct {
	LoginURL string `json:"login_url"`
}

type LogoutResponse struct {
	RedirectURL string `json:"redirect_url"`
}
