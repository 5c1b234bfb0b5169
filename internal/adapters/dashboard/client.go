package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/bnema/layeredge-farmer/internal/ports"
)

const (
	startPath  = "/api/node-points/start"
	updatePath = "/api/node-points"

	maxResponseBytes = 1 << 20
)

// Client talks to the two node-points endpoints of the rewards dashboard.
// One Client is bound to one NetworkPath via its HTTPClient and lives as
// long as the owning worker.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	Signer         ports.Signer
	RequestTimeout time.Duration

	// Now is overridable for tests; it stamps the activation message.
	Now func() time.Time
}

var _ ports.DashboardAPI = (*Client)(nil)

type activateRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type activateResponse struct {
	Success       bool         `json:"success"`
	LastStartTime *json.Number `json:"lastStartTime"`
}

type livenessRequest struct {
	WalletAddress string `json:"walletAddress"`
	LastStartTime int64  `json:"lastStartTime"`
}

type livenessResponse struct {
	Success    bool     `json:"success"`
	NodePoints *float64 `json:"nodePoints"`
}

// Activate establishes a node session. The activation message is signed
// before anything goes on the wire and a signing failure aborts the attempt,
// but the signature itself is not transmitted: the observed protocol only
// sends the wallet address. That asymmetry is preserved deliberately.
func (c *Client) Activate(ctx context.Context, wallet domain.WalletAddress) (domain.SessionHandle, error) {
	message := fmt.Sprintf("Node activation request for %s at %d", wallet, c.now().UnixMilli())
	if _, err := c.Signer.Sign(message); err != nil {
		return domain.SessionHandle{}, fmt.Errorf("%w: sign activation message: %v", domain.ErrActivationFailed, err)
	}

	resp, err := c.postJSON(ctx, startPath, activateRequest{WalletAddress: string(wallet)})
	if err != nil {
		if ctx.Err() != nil {
			return domain.SessionHandle{}, ctx.Err()
		}
		return domain.SessionHandle{}, fmt.Errorf("%w: %v", domain.ErrActivationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return domain.SessionHandle{}, fmt.Errorf("%w: status %d", domain.ErrActivationFailed, resp.StatusCode)
	}

	var payload activateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return domain.SessionHandle{}, fmt.Errorf("%w: decode response: %v", domain.ErrActivationFailed, err)
	}
	if !payload.Success {
		return domain.SessionHandle{}, fmt.Errorf("%w: success=false", domain.ErrActivationFailed)
	}
	if payload.LastStartTime == nil {
		return domain.SessionHandle{}, fmt.Errorf("%w: response missing lastStartTime", domain.ErrActivationFailed)
	}

	lastStartTime, err := payload.LastStartTime.Int64()
	if err != nil {
		return domain.SessionHandle{}, fmt.Errorf("%w: lastStartTime %q is not a timestamp", domain.ErrActivationFailed, payload.LastStartTime.String())
	}

	return domain.SessionHandle{LastStartTime: lastStartTime}, nil
}

// ReportLiveness asserts the session behind handle is still alive. Transport
// failures come back as a LivenessUnreachable outcome; any answered-but-not-
// accepted response is LivenessRejected. Only cancellation surfaces as error.
func (c *Client) ReportLiveness(ctx context.Context, wallet domain.WalletAddress, handle domain.SessionHandle) (domain.LivenessOutcome, error) {
	resp, err := c.postJSON(ctx, updatePath, livenessRequest{
		WalletAddress: string(wallet),
		LastStartTime: handle.LastStartTime,
	})
	if err != nil {
		if ctx.Err() != nil {
			return domain.LivenessOutcome{}, ctx.Err()
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return domain.LivenessOutcome{Status: domain.LivenessUnreachable}, nil
		}
		return domain.LivenessOutcome{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return domain.LivenessOutcome{Status: domain.LivenessRejected}, nil
	}

	var payload livenessResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return domain.LivenessOutcome{Status: domain.LivenessRejected}, nil
	}
	if !payload.Success {
		return domain.LivenessOutcome{Status: domain.LivenessRejected}, nil
	}

	outcome := domain.LivenessOutcome{Status: domain.LivenessAccepted}
	if payload.NodePoints != nil {
		outcome.Points = *payload.NodePoints
		outcome.PointsKnown = true
	}

	return outcome, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		cancel()
		return nil, err
	}

	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	return context.WithTimeout(ctx, requestTimeout)
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func is2xx(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// cancelOnClose ties the per-request timeout context to the response body so
// the context is released when the caller finishes reading.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
