package models

import (
	"slices"
	"strings"
	"time"
)

const (
	PermissionUpdate = "update"
	PermissionDelete = "delete"
)

type UserRecord struct {
	Email            string `gorm:"primaryKey;size:255"`
	Admin            bool   `gorm:"not null;default:false"`
	SubscriptionEnds *time.Time
}

func (UserRecord) TableName() string { return "users" }

type UserPermission struct {
	UserEmail  string `gorm:"primaryKey;size:255"`
	Permission string `gorm:"primaryKey;size:32"`
}

func (UserPermission) TableName() string { return "user_permissions" }

// User — пользователь для API. Devices == nil означает «ещё не загружены»
// (их подтягивает GraphQL-слой через loader).
type User struct {
	Email                 string    `json:"email"`
	IsAdmin               bool      `json:"isAdmin"`
	IsSubscriptionExpired bool      `json:"isSubscriptionExpired"`
	Permissions           []string  `json:"permissions"`
	Devices               []*Device `json:"devices,omitempty"`
}

func (u *User) HasPermission(p string) bool {
	return u != nil && slices.Contains(u.Permissions, p)
}

// CanPerformUpdates не хранится в БД.
func (u *User) CanPerformUpdates() bool {
	return u != nil && (u.IsAdmin || u.HasPermission(PermissionUpdate))
}

// DecodedJwt: claims проверенного токена; Exp/Iat в секундах, как в самом токене.
type DecodedJwt struct {
	Iss string `json:"iss,omitempty"`
	Aud string `json:"aud,omitempty"`
	Sub string `json:"sub,omitempty"`
	Exp *int64 `json:"exp,omitempty"`
	Iat *int64 `json:"iat,omitempty"`
}

func NewDecodedJwt(claims map[string]any) *DecodedJwt {
	d := &DecodedJwt{
		Iss: stringClaim(claims["iss"]),
		Sub: stringClaim(claims["sub"]),
		Exp: numericClaim(claims["exp"]),
		Iat: numericClaim(claims["iat"]),
	}
	switch aud := claims["aud"].(type) {
	case string:
		d.Aud = aud
	case []string:
		d.Aud = strings.Join(aud, " ")
	case []any:
		parts := make([]string, 0, len(aud))
		for _, a := range aud {
			if s, ok := a.(string); ok {
				parts = append(parts, s)
			}
		}
		d.Aud = strings.Join(parts, " ")
	}
	return d
}

func stringClaim(v any) string {
	s, _ := v.(string)
	return s
}

func numericClaim(v any) *int64 {
	var n int64
	switch x := v.(type) {
	case float64:
		n = int64(x)
	case int64:
		n = x
	case int:
		n = int64(x)
	default:
		return nil
	}
	return &n
}
