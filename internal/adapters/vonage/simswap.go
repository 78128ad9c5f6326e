package vonage

import (
	"context"
	"errors"
	"net/http"

	"github.com/bnema/sms-rce/internal/domain"
)

// simSwapMaxAgeHours is the look-back window for a recent SIM change.
const simSwapMaxAgeHours = 240

type simSwapRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	MaxAge      int    `json:"maxAge"`
}

type simSwapResponse struct {
	Swapped *bool `json:"swapped"`
}

func (c *Client) CheckSimSwap(ctx context.Context, sender domain.Sender) (bool, error) {
	token, err := c.networkToken(ctx, sender, simSwapScope)
	if err != nil {
		return false, err
	}

	endpoint, err := buildAPIURL(c.opts.NetworkBaseURL, "/camara/sim-swap/v040/check")
	if err != nil {
		return false, err
	}

	body := simSwapRequest{PhoneNumber: sender.E164(), MaxAge: simSwapMaxAgeHours}
	payload, err := jsonReader(body)
	if err != nil {
		return false, err
	}

	var resp simSwapResponse
	err = c.do(ctx, "check sim swap", endpoint, payload, "application/json", func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}, &resp)
	if err != nil {
		return false, err
	}
	if resp.Swapped == nil {
		return false, errors.New("check sim swap: response missing swapped")
	}
	return *resp.Swapped, nil
}
