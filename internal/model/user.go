package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PermissionMap maps a security scope (e.g. "pool", "osd") to the verbs the
// user may apply to it.
type PermissionMap map[string][]string

func (p PermissionMap) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *PermissionMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported permission map type %T", src)
	}
}

// User is a credential-store record. Enabled is flipped off by the lockout
// policy once the failed-attempt threshold is exceeded; only an administrator
// re-enables the account.
type User struct {
	Username          string        `db:"username" json:"username"`
	PasswordHash      string        `db:"password_hash" json:"-"`
	Enabled           bool          `db:"enabled" json:"enabled"`
	Permissions       PermissionMap `db:"permissions" json:"permissions"`
	PwdExpirationDate *time.Time    `db:"pwd_expiration_date" json:"pwdExpirationDate,omitempty"`
	PwdUpdateRequired bool          `db:"pwd_update_required" json:"pwdUpdateRequired"`
	CreatedAt         time.Time     `db:"created_at" json:"-"`
	UpdatedAt         time.Time     `db:"updated_at" json:"-"`
}
