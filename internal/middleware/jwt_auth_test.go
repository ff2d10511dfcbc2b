package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	identity := Identity{UserID: "u-42", Email: "a@example.com", Role: "owner"}
	token, err := GenerateAccessToken("secret", "catalog-gateway", identity, time.Hour)
	require.NoError(t, err)

	v := NewJWTVerifier("secret", "catalog-gateway")
	got, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, identity, *got)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	identity := Identity{UserID: "u-42"}
	ctx := context.Background()

	wrongSecret, _ := GenerateAccessToken("other", "catalog-gateway", identity, time.Hour)
	_, err := NewJWTVerifier("secret", "catalog-gateway").Verify(ctx, wrongSecret)
	assert.Error(t, err, "密钥不一致应失败")

	wrongIssuer, _ := GenerateAccessToken("secret", "someone-else", identity, time.Hour)
	_, err = NewJWTVerifier("secret", "catalog-gateway").Verify(ctx, wrongIssuer)
	assert.Error(t, err, "签发者不一致应失败")

	expired, _ := GenerateAccessToken("secret", "catalog-gateway", identity, -time.Minute)
	_, err = NewJWTVerifier("secret", "catalog-gateway").Verify(ctx, expired)
	assert.Error(t, err, "过期 token 应失败")

	noSubject, _ := GenerateAccessToken("secret", "catalog-gateway", Identity{}, time.Hour)
	_, err = NewJWTVerifier("secret", "catalog-gateway").Verify(ctx, noSubject)
	assert.Error(t, err, "缺少 subject 应失败")

	_, err = NewJWTVerifier("secret", "").Verify(ctx, "not-a-jwt")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v, want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
