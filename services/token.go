package services

import (
	"time"

	"synca/errors"
	"synca/models"

	"github.com/dgrijalva/jwt-go"
)

type UserInfo struct {
	UserId uint   `json:"userid"`
	Role   string `json:"role"`
}

type Claims struct {
	UserInfo UserInfo `json:"userinfo"`
	jwt.StandardClaims
}

// TokenManager ký và kiểm tra access token HS256
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) GenerateToken(userInfo UserInfo) (string, error) {
	now := m.now()
	claims := &Claims{
		UserInfo: userInfo,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken kiểm tra chữ ký, hạn dùng và trả về Actor
func (m *TokenManager) ParseToken(tokenString string) (*Actor, error) {
	if tokenString == "" {
		return nil, errors.Unauthorized(errors.ErrCodeMissingToken, "Authentication required.", nil)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized(errors.ErrCodeInvalidToken, "Unexpected signing method.", nil)
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized(errors.ErrCodeInvalidToken, "Invalid or expired token.", err)
	}
	if claims.UserInfo.UserId == 0 {
		return nil, errors.Unauthorized(errors.ErrCodeInvalidToken, "Token does not carry a user.", nil)
	}
	role, ok := models.ParseRole(claims.UserInfo.Role)
	if !ok {
		return nil, errors.Unauthorized(errors.ErrCodeInvalidRole, "Token carries an unknown role.", nil)
	}
	return &Actor{ID: claims.UserInfo.UserId, Role: role}, nil
}
