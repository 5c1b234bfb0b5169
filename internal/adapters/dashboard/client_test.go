package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/layeredge-farmer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = domain.WalletAddress("0x1111111111111111111111111111111111111111")

type recordingSigner struct {
	messages []string
	err      error
}

func (s *recordingSigner) Sign(message string) ([]byte, error) {
	s.messages = append(s.messages, message)
	if s.err != nil {
		return nil, s.err
	}
	return make([]byte, 65), nil
}

func newTestClient(serverURL string, signer *recordingSigner) *Client {
	return &Client{
		BaseURL:    serverURL,
		HTTPClient: http.DefaultClient,
		Signer:     signer,
		Now:        func() time.Time { return time.UnixMilli(1700000000000) },
	}
}

func TestActivateReturnsSessionHandle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/node-points/start", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]any{"walletAddress": string(testWallet)}, payload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"lastStartTime":1000}`))
	}))
	t.Cleanup(server.Close)

	signer := &recordingSigner{}
	client := newTestClient(server.URL, signer)

	handle, err := client.Activate(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionHandle{LastStartTime: 1000}, handle)

	// The message is signed before the request goes out even though the
	// signature never reaches the wire.
	require.Len(t, signer.messages, 1)
	assert.Equal(t, "Node activation request for "+string(testWallet)+" at 1700000000000", signer.messages[0])
}

func TestActivateSigningFailureAbortsBeforeRequest(t *testing.T) {
	t.Parallel()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"success":true,"lastStartTime":1000}`))
	}))
	t.Cleanup(server.Close)

	signer := &recordingSigner{err: domain.ErrMalformedKey}
	client := newTestClient(server.URL, signer)

	_, err := client.Activate(context.Background(), testWallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrActivationFailed)
	assert.Zero(t, requests)
}

func TestActivateFailureModes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", http.StatusInternalServerError, `{}`, "status 500"},
		{"unparseable body", http.StatusOK, `not json`, "decode response"},
		{"success false", http.StatusOK, `{"success":false}`, "success=false"},
		{"missing lastStartTime", http.StatusOK, `{"success":true}`, "missing lastStartTime"},
		{"non numeric lastStartTime", http.StatusOK, `{"success":true,"lastStartTime":"soon"}`, "decode response"},
		{"fractional lastStartTime", http.StatusOK, `{"success":true,"lastStartTime":10.5}`, "not a timestamp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client := newTestClient(server.URL, &recordingSigner{})

			_, err := client.Activate(context.Background(), testWallet)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrActivationFailed)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestActivateTransportFailureIsActivationError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, &recordingSigner{})

	_, err := client.Activate(context.Background(), testWallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrActivationFailed)
}

func TestReportLivenessAcceptedWithPoints(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/node-points", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, string(testWallet), payload["walletAddress"])
		assert.Equal(t, float64(1000), payload["lastStartTime"])

		_, _ = w.Write([]byte(`{"success":true,"nodePoints":5}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, &recordingSigner{})

	outcome, err := client.ReportLiveness(context.Background(), testWallet, domain.SessionHandle{LastStartTime: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.LivenessOutcome{Status: domain.LivenessAccepted, Points: 5, PointsKnown: true}, outcome)
}

func TestReportLivenessAcceptedWithoutPoints(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, &recordingSigner{})

	outcome, err := client.ReportLiveness(context.Background(), testWallet, domain.SessionHandle{LastStartTime: 1000})
	require.NoError(t, err)
	assert.True(t, outcome.Accepted())
	assert.False(t, outcome.PointsKnown)
}

func TestReportLivenessRejection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"unparseable body", http.StatusOK, `not json`},
		{"success false", http.StatusOK, `{"success":false}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client := newTestClient(server.URL, &recordingSigner{})

			outcome, err := client.ReportLiveness(context.Background(), testWallet, domain.SessionHandle{LastStartTime: 1000})
			require.NoError(t, err)
			assert.Equal(t, domain.LivenessRejected, outcome.Status)
		})
	}
}

func TestReportLivenessUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, &recordingSigner{})

	outcome, err := client.ReportLiveness(context.Background(), testWallet, domain.SessionHandle{LastStartTime: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.LivenessUnreachable, outcome.Status)
}

func TestReportLivenessTimeoutIsUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, &recordingSigner{})
	client.RequestTimeout = 20 * time.Millisecond

	outcome, err := client.ReportLiveness(context.Background(), testWallet, domain.SessionHandle{LastStartTime: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.LivenessUnreachable, outcome.Status)
}

func TestReportLivenessCancellationSurfacesAsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, &recordingSigner{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.ReportLiveness(ctx, testWallet, domain.SessionHandle{LastStartTime: 1000})
	assert.ErrorIs(t, err, context.Canceled)
}
