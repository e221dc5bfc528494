package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteVerifier resolves tokens by calling the identity provider's
// user-info endpoint. Every call hits the provider; nothing is cached.
type RemoteVerifier struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewRemoteVerifier creates a verifier against the identity provider at
// baseURL. serviceKey is the provider's service-role credential, sent on
// every request.
func NewRemoteVerifier(baseURL, serviceKey string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type userInfoResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify calls the provider's user endpoint with the caller's token. Any
// non-200 answer, transport failure, or undecodable body is an invalid
// token from the gateway's point of view.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Subject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Subject{}, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.serviceKey != "" {
		req.Header.Set("apikey", v.serviceKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Subject{}, ErrInvalidToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Subject{}, ErrInvalidToken
	}

	var user userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Subject{}, ErrInvalidToken
	}
	if user.ID == "" {
		return Subject{}, ErrInvalidToken
	}

	return Subject{ID: user.ID, Email: user.Email}, nil
}
