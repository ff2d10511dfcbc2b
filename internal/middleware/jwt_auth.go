package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== Claims 定义 ====================

// UserClaims 用户声明，Subject 为用户 ID
type UserClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ==================== JWT 校验器 ====================

// JWTVerifier 共享密钥 HS256 校验
type JWTVerifier struct {
	secret []byte
	issuer string
}

var _ IdentityVerifier = (*JWTVerifier)(nil)

// NewJWTVerifier 创建 JWT 校验器，issuer 为空时不校验签发者
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify 解析 Token
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}

	return &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// ==================== Token 生成 ====================

// GenerateAccessToken 签发 Access Token（本地联调与测试用）
func GenerateAccessToken(secret, issuer string, identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ==================== 辅助函数 ====================

// Context Keys
const (
	ContextKeyIdentity = "identity"
)

// SetIdentity 注入身份到 gin Context
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(ContextKeyIdentity, identity)
}

// GetIdentity 从 Context 获取身份
func GetIdentity(c *gin.Context) (Identity, bool) {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(Identity); ok {
			return identity, true
		}
	}
	return Identity{}, false
}

// GetUserID 从 Context 获取用户 ID
func GetUserID(c *gin.Context) string {
	identity, _ := GetIdentity(c)
	return identity.UserID
}
