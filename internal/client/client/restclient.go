package client

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

	"github.com/inkveil/inkveil/internal/api"
	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
)

const requestTimeout = 12 * time.Second

// RESTClient talks JSON over HTTP to the account server. It holds the
// access/refresh token pair and transparently refreshes an expired access
// token before retrying the failed request once.
type RESTClient struct {
	endpointURL  string
	httpClient   *http.Client
	accessToken  string
	refreshToken string
}

func NewRESTClient(endpointURL string) *RESTClient {
	return &RESTClient{
		endpointURL: strings.TrimRight(endpointURL, "/"),
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *RESTClient) Close() error { return nil }

// SetTokens restores a previously persisted token pair.
func (c *RESTClient) SetTokens(access, refresh string) {
	c.accessToken = access
	c.refreshToken = refresh
}

// Tokens returns the current token pair for persistence.
func (c *RESTClient) Tokens() (access, refresh string) {
	return c.accessToken, c.refreshToken
}

func (c *RESTClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	req := &api.RegisterRequest{Username: username, Salt: salt, Verifier: verifier}
	return c.doJSON(ctx, http.MethodPost, "/api/register", req, nil)
}

func (c *RESTClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	var resp api.SaltResponse
	path := "/api/salt?username=" + url.QueryEscape(username)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Salt, nil
}

func (c *RESTClient) Login(ctx context.Context, username string, verifier []byte) error {
	req := &api.LoginRequest{Username: username, Verifier: verifier}
	var resp api.TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", req, &resp); err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

func (c *RESTClient) Ping(ctx context.Context) error {
	var resp api.PingResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/ping", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *RESTClient) SyncEntries(ctx context.Context, pending []*models.Entry) ([]*models.Entry, error) {
	req := &api.SyncRequest{Entries: make([]api.Entry, 0, len(pending))}
	for _, e := range pending {
		req.Entries = append(req.Entries, api.Entry{
			Id:               e.Id,
			EncryptedTitle:   e.EncryptedTitle,
			EncryptedContent: e.EncryptedContent,
			IV:               e.IV,
			CreatedAt:        e.CreatedAt,
			UpdatedAt:        e.UpdatedAt,
			Deleted:          e.Deleted,
		})
	}

	var resp api.SyncResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/entries/sync", req, &resp); err != nil {
		return nil, err
	}

	result := make([]*models.Entry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		result = append(result, &models.Entry{
			Id:               e.Id,
			EncryptedTitle:   e.EncryptedTitle,
			EncryptedContent: e.EncryptedContent,
			IV:               e.IV,
			CreatedAt:        e.CreatedAt,
			UpdatedAt:        e.UpdatedAt,
			Deleted:          e.Deleted,
		})
	}
	return result, nil
}

func (c *RESTClient) CreateSwitch(ctx context.Context, sw *models.Switch, payloadKey []byte) (string, string, error) {
	req := &api.CreateSwitchRequest{
		EncryptedName:        sw.EncryptedName,
		NameIV:               sw.NameIV,
		TimerIntervalSeconds: int64(sw.TimerInterval / time.Second),
		Recipients:           sw.Recipients,
		HasPayload:           sw.HasPayload,
		PayloadKey:           payloadKey,
		PayloadIV:            sw.PayloadIV,
	}
	var resp api.CreateSwitchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/switches", req, &resp); err != nil {
		return "", "", err
	}
	return resp.Id, resp.UploadURL, nil
}

func (c *RESTClient) CheckIn(ctx context.Context, switchID string) (time.Time, error) {
	var resp api.CheckInResponse
	path := "/api/switches/" + url.PathEscape(switchID) + "/checkin"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return time.Time{}, err
	}
	if resp.Triggered {
		return time.Time{}, common.ErrSwitchTriggered
	}
	return resp.LastCheckIn, nil
}

func (c *RESTClient) GetDisclosure(ctx context.Context, switchID string) (string, []byte, error) {
	var resp api.DisclosureResponse
	path := "/disclosure/" + url.PathEscape(switchID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", nil, err
	}
	return resp.PayloadURL, resp.IV, nil
}

// doJSON performs one authenticated request. A 401 carrying the
// token-expired message triggers a single refresh-and-retry.
func (c *RESTClient) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	status, errMsg, err := c.do(ctx, method, path, reqBody, respBody)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && errMsg == common.ErrTokenExpired.Error() && c.refreshToken != "" {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		status, errMsg, err = c.do(ctx, method, path, reqBody, respBody)
		if err != nil {
			return err
		}
	}
	return mapStatus(status, errMsg)
}

func (c *RESTClient) refresh(ctx context.Context) error {
	req := &api.RefreshRequest{RefreshToken: c.refreshToken}
	var resp api.TokenPair
	status, errMsg, err := c.do(ctx, http.MethodPost, "/api/token/refresh", req, &resp)
	if err != nil {
		return err
	}
	if err := mapStatus(status, errMsg); err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

func (c *RESTClient) do(ctx context.Context, method, path string, reqBody, respBody any) (int, string, error) {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return 0, "", fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL+path, body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, apiErr.Error, nil
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return 0, "", fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, "", nil
}

func mapStatus(status int, errMsg string) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		if errMsg == "" {
			errMsg = http.StatusText(status)
		}
		return fmt.Errorf("server error: %s", errMsg)
	}
}
