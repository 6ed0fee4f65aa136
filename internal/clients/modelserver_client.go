package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

var (
	modelServerInstance *ModelServerClient
	modelServerOnce     sync.Once
)

// ModelServerClient talks JSON to the external model-serving endpoints
// (face detector, face classifier, voice classifier). The models are
// swappable black boxes; this client only moves bytes and validates
// nothing beyond transport.
type ModelServerClient struct {
	Client *http.Client
}

func GetModelServerClient() *ModelServerClient {
	var timeout time.Duration
	env := os.Getenv("APP_ENV")
	if env == "production" {
		timeout = 10 * time.Second
	} else {
		timeout = 60 * time.Second
	}
	modelServerOnce.Do(func() {
		slog.Info("[ModelServerClient] Initializing Client",
			slog.Duration("timeout", timeout),
			slog.String("env", env))
		modelServerInstance = &ModelServerClient{
			Client: &http.Client{
				Timeout: timeout,
			},
		}
	})
	return modelServerInstance
}

// DoWithRetry retries 5xx responses and transport errors with exponential
// backoff. Context cancellation aborts immediately so a disconnected
// client does not keep an inference request alive.
func (m *ModelServerClient) DoWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := INITIAL_BACKOFF

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		resp, err = m.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		if err != nil && errors.Is(err, context.Canceled) {
			return nil, err
		}

		slog.Warn("[ModelServerClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	return resp, err
}

// PostJSON marshals input, posts it to the endpoint and unmarshals the
// response into output.
func (m *ModelServerClient) PostJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("[ModelServerClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		slog.Error("[ModelServerClient] Failed to build request",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := m.DoWithRetry(req)
	if err != nil {
		slog.Error("[ModelServerClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))

		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("[ModelServerClient] Failed to read response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[ModelServerClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(string(respBody))))

		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// Ping is used at startup to decide whether a remote strategy is
// available at all.
func (m *ModelServerClient) Ping(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("model server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
