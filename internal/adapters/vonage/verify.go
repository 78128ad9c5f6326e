package vonage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/sms-rce/internal/domain"
)

type verifyWorkflow struct {
	Channel     string `json:"channel"`
	To          string `json:"to"`
	Sandbox     *bool  `json:"sandbox,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type verifyRequest struct {
	Brand    string           `json:"brand"`
	Workflow []verifyWorkflow `json:"workflow"`
}

type verifyStartResponse struct {
	RequestID string `json:"request_id"`
	CheckURL  string `json:"check_url"`
}

type verifyCheckRequest struct {
	Code string `json:"code"`
}

type verifyCheckResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

func (c *Client) StartVerification(ctx context.Context, req domain.VerificationRequest) (domain.VerificationStart, error) {
	if len(req.Workflows) == 0 {
		return domain.VerificationStart{}, errors.New("start verification: at least one workflow is required")
	}

	body := verifyRequest{Brand: req.Brand, Workflow: make([]verifyWorkflow, 0, len(req.Workflows))}
	for _, workflow := range req.Workflows {
		switch w := workflow.(type) {
		case domain.SilentAuthWorkflow:
			sandbox := w.Sandbox
			body.Workflow = append(body.Workflow, verifyWorkflow{
				Channel:     "silent_auth",
				To:          w.To.String(),
				Sandbox:     &sandbox,
				RedirectURL: w.RedirectURL,
			})
		case domain.VoiceWorkflow:
			body.Workflow = append(body.Workflow, verifyWorkflow{Channel: "voice", To: w.To.String()})
		default:
			return domain.VerificationStart{}, fmt.Errorf("start verification: unsupported workflow %T", workflow)
		}
	}

	endpoint, err := buildAPIURL(c.opts.BaseURL, "/v2/verify")
	if err != nil {
		return domain.VerificationStart{}, err
	}

	var resp verifyStartResponse
	if err := c.postJSON(ctx, "start verification", endpoint, authAny, body, &resp); err != nil {
		return domain.VerificationStart{}, err
	}

	id, err := domain.ParseRequestID(resp.RequestID)
	if err != nil {
		return domain.VerificationStart{}, fmt.Errorf("start verification: %w", err)
	}
	return domain.VerificationStart{RequestID: id, CheckURL: resp.CheckURL}, nil
}

// CheckCode maps rejected codes to statuses. A 400 means the code was wrong
// and a 410 that the request is no longer active.
func (c *Client) CheckCode(ctx context.Context, id domain.RequestID, code string) (domain.VerificationStatus, error) {
	endpoint, err := buildAPIURL(c.opts.BaseURL, "/v2/verify/"+url.PathEscape(id.String()))
	if err != nil {
		return "", err
	}

	var resp verifyCheckResponse
	err = c.postJSON(ctx, "check verification code", endpoint, authAny, verifyCheckRequest{Code: code}, &resp)

	var apiErr *APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
		return domain.VerificationInvalidCode, nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusGone:
		return domain.VerificationExpired, nil
	default:
		return "", err
	}

	status := domain.VerificationStatus(strings.ToLower(strings.TrimSpace(resp.Status)))
	if status == "" {
		return "", errors.New("check verification code: response missing status")
	}
	return status, nil
}

func (c *Client) NextWorkflow(ctx context.Context, id domain.RequestID) error {
	endpoint, err := buildAPIURL(c.opts.BaseURL, "/v2/verify/"+url.PathEscape(id.String())+"/next_workflow")
	if err != nil {
		return err
	}

	err = c.postJSON(ctx, "next verification workflow", endpoint, authAny, struct{}{}, nil)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %w", domain.ErrNoFurtherWorkflow, apiErr)
	}
	return err
}
