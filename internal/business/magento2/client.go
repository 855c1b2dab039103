package magento2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cover/m2sync/pkg/logger"
)

const (
	contentTypeJSON = "application/json;charset=utf-8"
	commentsPathFmt = "%s/rest/V1/orders/%s/comments"
)

// Client posts status comments to a Magento2 shop.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient builds a client whose requests time out after timeout. A nil
// httpClient gets a fresh one.
func NewClient(httpClient *http.Client, timeout time.Duration, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout > 0 {
		httpClient.Timeout = timeout
	}
	return &Client{httpClient: httpClient, logger: log}
}

// CommentsURL builds {shopURL}/rest/V1/orders/{orderIDUnique}/comments.
func CommentsURL(shopURL, orderIDUnique string) string {
	return fmt.Sprintf(commentsPathFmt, strings.TrimRight(shopURL, "/"), url.PathEscape(orderIDUnique))
}

// PostComment sends body and returns the response body. Any failure to obtain
// a 2xx answer is a *TransportError.
func (c *Client) PostComment(ctx context.Context, shopURL, token, orderIDUnique, body string) ([]byte, error) {
	target := CommentsURL(shopURL, orderIDUnique)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader([]byte(body)))
	if err != nil {
		return nil, fmt.Errorf("magento2: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentTypeJSON)

	c.logger.Debugf(ctx, "Headers: %v", redactHeaders(req.Header))
	c.logger.Debugf(ctx, "%s", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode), Err: err}
	}

	c.logger.Debugf(ctx, "Response headers: %v", resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(respBody),
		}
	}
	return respBody, nil
}

// ParseResponse checks the response body. Magento2 answers the comments
// endpoint with a bare JSON value (true); an empty body is accepted too.
func ParseResponse(body []byte) (interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var out interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ParseError{Message: err.Error(), Body: string(body)}
	}
	return out, nil
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out.Get("Authorization") != "" {
		out.Set("Authorization", "Bearer ***")
	}
	return out
}
