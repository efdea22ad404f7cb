package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iconidentify/agobackup/internal/domain"
)

// Client talks to the portal's sharing REST API. It is a request-scoped
// handle: one authenticated session, not pooled or shared across users.
type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Connect authenticates against the portal and verifies the session with a
// self lookup.
func Connect(ctx context.Context, baseURL, username, password string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		username:   username,
		password:   password,
	}

	if err := c.refreshToken(ctx); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	// A simple read to confirm the token is usable.
	if _, err := c.Folders(ctx); err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}

	return c, nil
}

// Username returns the authenticated user.
func (c *Client) Username() string {
	return c.username
}

// tokenResponse is the generateToken endpoint response.
type tokenResponse struct {
	Token   string    `json:"token"`
	Expires int64     `json:"expires"` // unix millis
	Error   *apiError `json:"error"`
}

// apiError is the error envelope the portal returns with HTTP 200.
type apiError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("portal error (code %d): %s", e.Code, e.Message)
}

func (c *Client) refreshToken(ctx context.Context) error {
	form := url.Values{
		"username":   {c.username},
		"password":   {c.password},
		"referer":    {c.baseURL},
		"expiration": {"60"},
		"f":          {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/sharing/rest/generateToken", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if tr.Error != nil {
		return tr.Error
	}
	if tr.Token == "" {
		return fmt.Errorf("token endpoint returned no token")
	}

	c.mu.Lock()
	c.token = tr.Token
	if tr.Expires > 0 {
		c.tokenExpiry = time.UnixMilli(tr.Expires)
	} else {
		c.tokenExpiry = time.Now().Add(time.Hour)
	}
	c.mu.Unlock()
	return nil
}

// currentToken returns a valid token, re-authenticating when the current
// one is within a minute of expiry.
func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiry := c.token, c.tokenExpiry
	c.mu.Unlock()

	if token != "" && time.Until(expiry) > time.Minute {
		return token, nil
	}
	if err := c.refreshToken(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	token = c.token
	c.mu.Unlock()
	return token, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
// The portal reports failures as an error envelope with HTTP 200, so the
// envelope is checked before the caller's payload is trusted.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("f", "json")
	params.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("portal status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Item looks up a single content item by identifier.
func (c *Client) Item(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := c.getJSON(ctx, "/sharing/rest/content/items/"+url.PathEscape(id), nil, &item)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Code == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		return nil, err
	}
	if item.ID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return &item, nil
}

// Folders lists the user's content folders, the root folder excluded.
func (c *Client) Folders(ctx context.Context) ([]Folder, error) {
	var resp struct {
		Folders []Folder `json:"folders"`
	}
	err := c.getJSON(ctx, "/sharing/rest/content/users/"+url.PathEscape(c.username), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return resp.Folders, nil
}

// FolderItems lists the items in one content folder.
func (c *Client) FolderItems(ctx context.Context, folderID string) ([]Item, error) {
	var resp struct {
		Items []Item `json:"items"`
	}
	path := "/sharing/rest/content/users/" + url.PathEscape(c.username)
	if folderID != "" {
		path += "/" + url.PathEscape(folderID)
	}
	err := c.getJSON(ctx, path, nil, &resp)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Code == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, folderID)
		}
		return nil, fmt.Errorf("list folder items: %w", err)
	}
	return resp.Items, nil
}

// Search finds items of the given type across the user's content.
func (c *Client) Search(ctx context.Context, itemType string, max int) ([]Item, error) {
	if max <= 0 || max > 100 {
		max = 100
	}
	params := url.Values{
		"q":   {fmt.Sprintf(`owner:%q type:%q`, c.username, itemType)},
		"num": {strconv.Itoa(max)},
	}
	var resp struct {
		Results []Item `json:"results"`
	}
	if err := c.getJSON(ctx, "/sharing/rest/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resp.Results, nil
}

// Export writes an offline copy of each item's definition and data under
// dest, one JSON document per item, and returns dest. dest must already
// exist; the caller is responsible for having validated it.
func (c *Client) Export(ctx context.Context, items []Item, dest string) (string, error) {
	for _, item := range items {
		data, err := c.itemData(ctx, item.ID)
		if err != nil {
			return "", fmt.Errorf("export %s: %w", item.ID, err)
		}

		doc := exportDocument{
			Item:       item,
			ExportedAt: time.Now().UTC(),
			Data:       data,
		}
		buf, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("export %s: encode: %w", item.ID, err)
		}

		name := item.ID + ".json"
		if err := os.WriteFile(filepath.Join(dest, name), buf, 0644); err != nil {
			return "", fmt.Errorf("export %s: %w", item.ID, err)
		}
	}
	return dest, nil
}

// exportDocument is the on-disk format of one exported item.
type exportDocument struct {
	Item       Item            `json:"item"`
	ExportedAt time.Time       `json:"exported_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// itemData fetches the raw item payload (web map JSON, service definition).
// Items without a data resource yield an empty payload, not an error.
func (c *Client) itemData(ctx context.Context, id string) (json.RawMessage, error) {
	token, err := c.currentToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{"f": {"json"}, "token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/sharing/rest/content/items/"+url.PathEscape(id)+"/data?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("data endpoint status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) == 0 || !json.Valid(body) {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

