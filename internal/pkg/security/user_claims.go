package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// ChatClaims 聊天 token 中的身份
type ChatClaims struct {
	UserID   uint64 `json:"user_id"`
	UserRole string `json:"user_role"`
	jwt.RegisteredClaims
}

// Matches 加入房间的身份必须与 token 一致
func (c *ChatClaims) Matches(userID uint64, role string) bool {
	return c.UserID == userID && c.UserRole == role
}
