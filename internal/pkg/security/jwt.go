package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"GymChat/internal/api/config"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token 无效或已过期")

// 允许客户端与中继之间少量时钟偏差
const clockLeeway = 30 * time.Second

// Signer 按配置签发与校验 token
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSigner(cfg config.AuthConfig) *Signer {
	ttl := time.Duration(cfg.TTL) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl}
}

// GenerateToken 生成一个新的 JWT Token
func (s *Signer) GenerateToken(userID uint64, role string) (string, error) {
	now := time.Now()
	claims := &ChatClaims{
		UserID:   userID,
		UserRole: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   role + ":" + strconv.FormatUint(userID, 10),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("签名 Token 失败: %w", err)
	}
	return tokenString, nil
}

// ValidateToken 验证 Token 字符串并解析出 Claims
func (s *Signer) ValidateToken(tokenString string) (*ChatClaims, error) {
	claims := &ChatClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
