package dto

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// FlexibleID decodes an identifier sent either as a JSON number or as a
// numeric string. Missing or null values decode to zero.
type FlexibleID uint

// UnmarshalJSON implements json.Unmarshaler
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*id = 0
			return nil
		}
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return errors.New("expected a positive integer id")
	}
	*id = FlexibleID(n)
	return nil
}

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token for refresh and logout
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// CreateRoomRequest is the body of POST /api/chats/rooms/create
type CreateRoomRequest struct {
	Property FlexibleID `json:"property"`
}

// SendMessageRequest is the body of POST /api/chats/messages/send
type SendMessageRequest struct {
	Chatroom FlexibleID `json:"chatroom"`
	Message  string     `json:"message"`
}

// WishlistAddRequest is the body of POST /api/properties/wishlist/add
type WishlistAddRequest struct {
	Property FlexibleID `json:"property"`
}
