package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role string is not one of the known roles
var ErrUnknownRole = errors.New("unknown role")

// Role is the closed set of account roles known to the storefront.
// The zero value means "no role" and is what an unauthenticated session carries.
type Role uint8

const (
	RoleNone Role = iota
	RoleUser
	RoleAdmin
)

// ParseRole maps a wire value onto a Role. An empty string is RoleNone.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RoleNone, nil
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// User is the account record returned by the backend
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// FullName returns "Name Lastname", trimmed
func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Lastname)
}

// IsAdmin reports whether the user carries the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
