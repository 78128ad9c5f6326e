package vonage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/sms-rce/internal/domain"
)

const (
	cibaGrantType = "urn:openid:params:grant-type:ciba"
	simSwapScope  = "dpv:FraudPreventionAndDetection#check-sim-swap"
)

var ErrNetworkAuthTimeout = errors.New("timed out waiting for network authorization")

type bcAuthorizeResponse struct {
	AuthReqID string `json:"auth_req_id"`
	ExpiresIn int64  `json:"expires_in"`
	Interval  int64  `json:"interval"`
}

type networkTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// networkToken runs the back-channel flow for sender and returns an access
// token limited to scope.
func (c *Client) networkToken(ctx context.Context, sender domain.Sender, scope string) (string, error) {
	if !c.creds.HasApplication() {
		return "", fmt.Errorf("network authorization: %w", ErrApplicationCredentialsRequired)
	}

	endpoint, err := buildAPIURL(c.opts.NetworkBaseURL, "/oauth2/bc-authorize")
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("login_hint", "tel:"+sender.E164())
	values.Set("scope", scope)

	var auth bcAuthorizeResponse
	if err := c.postForm(ctx, "network authorization", endpoint, values, c.applicationAuth, &auth); err != nil {
		return "", err
	}
	if auth.AuthReqID == "" {
		return "", errors.New("network authorization: response missing auth_req_id")
	}

	interval := c.opts.PollInterval
	if auth.Interval > 0 {
		interval = time.Duration(auth.Interval) * time.Second
	}
	expiresIn := 2 * time.Minute
	if auth.ExpiresIn > 0 {
		expiresIn = time.Duration(auth.ExpiresIn) * time.Second
	}

	return c.pollNetworkToken(ctx, auth.AuthReqID, interval, time.Now().Add(expiresIn))
}

func (c *Client) pollNetworkToken(ctx context.Context, authReqID string, interval time.Duration, deadline time.Time) (string, error) {
	endpoint, err := buildAPIURL(c.opts.NetworkBaseURL, "/oauth2/token")
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("grant_type", cibaGrantType)
	values.Set("auth_req_id", authReqID)

	for {
		if time.Now().After(deadline) {
			return "", ErrNetworkAuthTimeout
		}

		var token networkTokenResponse
		err := c.postForm(ctx, "network token", endpoint, values, c.applicationAuth, &token)

		var apiErr *APIError
		switch {
		case err == nil:
			if token.AccessToken == "" {
				return "", errors.New("network token: response missing access_token")
			}
			return token.AccessToken, nil
		case errors.As(err, &apiErr) && apiErr.Title == "authorization_pending":
		case errors.As(err, &apiErr) && apiErr.Title == "slow_down":
			interval += 5 * time.Second
		default:
			return "", err
		}

		if time.Now().Add(interval).After(deadline) {
			return "", ErrNetworkAuthTimeout
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) applicationAuth(req *http.Request) error {
	return c.creds.authorize(req, authApplication, c.now())
}
