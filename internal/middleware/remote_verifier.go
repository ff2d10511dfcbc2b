package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"catalog_gateway/pkg/utils"
)

// RemoteVerifier 调用身份服务 GET {baseURL}/user 校验凭证
type RemoteVerifier struct {
	client *resty.Client
}

var _ IdentityVerifier = (*RemoteVerifier)(nil)

type remoteUserResp struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewRemoteVerifier 创建远程校验器
func NewRemoteVerifier(baseURL, apiKey string, timeout time.Duration) *RemoteVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := utils.NewRestyClient(baseURL, timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("apikey", apiKey)
	}
	return &RemoteVerifier{client: client}
}

// Verify 远程校验，非 2xx 视为无效凭证
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	var user remoteUserResp
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("identity service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity service returned %d", resp.StatusCode())
	}
	if user.ID == "" {
		return nil, errors.New("identity service returned empty user")
	}

	return &Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}
