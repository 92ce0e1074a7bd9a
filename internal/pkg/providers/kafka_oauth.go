package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go/sasl"
)

const (
	oauthHTTPTimeout = 5 * time.Second

	// 令牌提前刷新的时间。
	oauthRefreshMargin = time.Minute
)

var ErrOAuthTokenRequest = errors.New("failed to request oauth token")

var _ sasl.Mechanism = (*KafkaOAuthMechanism)(nil)

// KafkaOAuthMechanism 为 SASL/OAUTHBEARER 认证，使用 client credentials 获取访问令牌并缓存。
type KafkaOAuthMechanism struct {
	endpoint     string
	clientID     string
	clientSecret string

	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func (m *KafkaOAuthMechanism) Name() string {
	return "OAUTHBEARER"
}

func (m *KafkaOAuthMechanism) Start(ctx context.Context) (sasl.StateMachine, []byte, error) {
	token, err := m.token(ctx)
	if err != nil {
		return nil, nil, err
	}

	// RFC 7628 初始响应：n,,\x01auth=Bearer <token>\x01\x01
	// authzid 留空，由 broker 从 token 的 sub 中解析 principal。
	ir := fmt.Sprintf("n,,\x01auth=Bearer %s\x01\x01", token)
	return oauthBearerSession{}, []byte(ir), nil
}

// token 返回缓存的访问令牌，过期 ( 或即将过期 ) 时重新获取。
func (m *KafkaOAuthMechanism) token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.accessToken != "" && m.now().Before(m.expiresAt) {
		return m.accessToken, nil
	}

	token, expiresIn, err := m.requestToken(ctx)
	if err != nil {
		return "", err
	}

	m.accessToken = token
	m.expiresAt = m.now().Add(expiresIn - oauthRefreshMargin)
	return token, nil
}

func (m *KafkaOAuthMechanism) requestToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrOAuthTokenRequest, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrOAuthTokenRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrOAuthTokenRequest, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("%w: status [ %d ], body: %s", ErrOAuthTokenRequest, resp.StatusCode, string(body))
	}

	var tokenRes struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err = json.Unmarshal(body, &tokenRes); err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrOAuthTokenRequest, err)
	}
	if tokenRes.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: empty access token", ErrOAuthTokenRequest)
	}

	return tokenRes.AccessToken, time.Duration(tokenRes.ExpiresIn) * time.Second, nil
}

func NewKafkaOAuthMechanism(endpoint, clientID, clientSecret string) *KafkaOAuthMechanism {
	return &KafkaOAuthMechanism{
		endpoint:     endpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: oauthHTTPTimeout},
		now:          time.Now,
	}
}

var _ sasl.StateMachine = oauthBearerSession{}

// oauthBearerSession 为单次往返的 SASL 会话，broker 的首个响应即表示认证完成。
type oauthBearerSession struct{}

func (oauthBearerSession) Next(_ context.Context, _ []byte) (bool, []byte, error) {
	return true, nil, nil
}
