package models

import "encoding/json"

// SessionUser is the cached user record kept next to the auth token under
// supplier_user or admin_user.
type SessionUser struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	BusinessName string   `json:"business_name,omitempty"`
	Role         string   `json:"role,omitempty"`
	Type         UserType `json:"-"`
}

// DecodeSessionUser reads the raw user object from an auth response.
func DecodeSessionUser(raw json.RawMessage, userType UserType) (*SessionUser, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var u SessionUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	u.Type = userType
	return &u, nil
}
