package ringcentral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"rc-analytics/internal/apperr"
)

const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// ErrCredentialExpired means the configured user JWT is past its exp claim.
var ErrCredentialExpired = errors.New("ringcentral: user JWT credential has expired")

// jwtBearerSource exchanges the user JWT credential for an access token.
// Wrap it with oauth2.ReuseTokenSource so the exchange happens once per token lifetime.
type jwtBearerSource struct {
	ctx          context.Context
	tokenURL     string
	clientID     string
	clientSecret string
	assertion    string
	hc           *http.Client
	now          func() time.Time
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

func (s *jwtBearerSource) Token() (*oauth2.Token, error) {
	const op = "ringcentral.token"

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {s.assertion},
	}
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperr.UpstreamAuth(op, err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.hc.Do(req)
	if err != nil {
		observe("token", 0, start)
		return nil, apperr.UpstreamAuth(op, err)
	}
	defer resp.Body.Close()
	observe("token", resp.StatusCode, start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.UpstreamAuth(op, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, apperr.UpstreamAuth(op, &StatusError{Status: resp.StatusCode, Body: excerpt(body)})
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, apperr.UpstreamAuth(op, fmt.Errorf("decode token response: %w", err))
	}
	if tr.AccessToken == "" {
		return nil, apperr.UpstreamAuth(op, errors.New("token response has no access_token"))
	}

	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = s.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// inspectCredential parses the user JWT without verifying it and rejects an expired one.
// The signature belongs to the vendor; only the claims are useful here.
func inspectCredential(raw string, now time.Time) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return fmt.Errorf("ringcentral: user JWT is malformed: %w", err)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return ErrCredentialExpired
	}
	return nil
}
