package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager menerbitkan dan memvalidasi token, plus blacklist untuk logout.
type JWTManager struct {
	secret []byte
	ttl    time.Duration

	blacklistMutex sync.RWMutex
	blacklisted    map[string]time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{
		secret:      []byte(secret),
		ttl:         ttl,
		blacklisted: make(map[string]time.Time),
	}
}

func (m *JWTManager) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "CoHeeApp",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		ErrorLogger.Printf("Error generating token: %v", err)
		return "", err
	}
	return tokenString, nil
}

func (m *JWTManager) ParseToken(tokenString string) (*CustomClaims, error) {
	if m.IsTokenBlacklisted(tokenString) {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *JWTManager) BlacklistToken(token string) {
	m.blacklistMutex.Lock()
	defer m.blacklistMutex.Unlock()

	now := time.Now()
	for t, expiry := range m.blacklisted {
		if now.After(expiry) {
			delete(m.blacklisted, t)
		}
	}
	m.blacklisted[token] = now.Add(m.ttl)
}

func (m *JWTManager) IsTokenBlacklisted(token string) bool {
	m.blacklistMutex.RLock()
	defer m.blacklistMutex.RUnlock()

	expiry, exists := m.blacklisted[token]
	return exists && time.Now().Before(expiry)
}
