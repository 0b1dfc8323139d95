package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"finditweb/internal/config"
	"finditweb/internal/models"
)

// Client talks to the external FindIt REST API. It holds no per-user
// state: credentialed calls take the stored upstream cookie explicitly,
// the same way the mail tier passes credentials per call.
type Client struct {
	http    *http.Client
	baseURL string
}

func New(cfg config.Config) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.APITimeout()},
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
	}
}

// NewWithBase is for tests that point the client at a local fake server.
func NewWithBase(baseURL string) *Client {
	return &Client{http: &http.Client{}, baseURL: strings.TrimRight(baseURL, "/")}
}

type checkAuthResponse struct {
	Authenticated bool     `json:"authenticated"`
	User          *userDTO `json:"user"`
}

// CheckAuth performs the one-time session bootstrap probe. It returns the
// authenticated user (nil when the upstream session is anonymous) and any
// refreshed upstream cookie.
func (c *Client) CheckAuth(ctx context.Context, cookie string) (*models.User, string, error) {
	var out checkAuthResponse
	newCookie, err := c.do(ctx, http.MethodGet, "/api/auth/check-auth", cookie, nil, "", &out)
	if err != nil {
		return nil, "", err
	}
	if !out.Authenticated {
		return nil, newCookie, nil
	}
	if out.User == nil {
		return nil, "", &DecodeError{Endpoint: "/api/auth/check-auth", Err: fmt.Errorf("authenticated reply without user")}
	}
	u, err := out.User.toModel()
	if err != nil {
		return nil, "", &DecodeError{Endpoint: "/api/auth/check-auth", Err: err}
	}
	return &u, newCookie, nil
}

type userEnvelope struct {
	User *userDTO `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (models.User, string, error) {
	return c.authExchange(ctx, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (c *Client) Register(ctx context.Context, username, email, password string) (models.User, string, error) {
	return c.authExchange(ctx, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func (c *Client) authExchange(ctx context.Context, path string, payload map[string]string) (models.User, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.User{}, "", err
	}
	var out userEnvelope
	cookie, err := c.do(ctx, http.MethodPost, path, "", bytes.NewReader(body), "application/json", &out)
	if err != nil {
		return models.User{}, "", err
	}
	if out.User == nil {
		return models.User{}, "", &DecodeError{Endpoint: path, Err: fmt.Errorf("reply without user")}
	}
	u, err := out.User.toModel()
	if err != nil {
		return models.User{}, "", &DecodeError{Endpoint: path, Err: err}
	}
	return u, cookie, nil
}

func (c *Client) Logout(ctx context.Context, cookie string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", cookie, strings.NewReader("{}"), "application/json", nil)
	return err
}

type itemsEnvelope struct {
	Items []itemDTO `json:"items"`
}

func (c *Client) ListItems(ctx context.Context, query url.Values) ([]models.Item, error) {
	return c.fetchItems(ctx, "/api/items", "", query)
}

// ListMine is the owner-scoped listing; it requires the upstream cookie.
func (c *Client) ListMine(ctx context.Context, cookie string, query url.Values) ([]models.Item, error) {
	return c.fetchItems(ctx, "/api/items/mine", cookie, query)
}

func (c *Client) fetchItems(ctx context.Context, path, cookie string, query url.Values) ([]models.Item, error) {
	if enc := query.Encode(); enc != "" {
		path = path + "?" + enc
	}
	var out itemsEnvelope
	if _, err := c.do(ctx, http.MethodGet, path, cookie, nil, "", &out); err != nil {
		return nil, err
	}
	items := make([]models.Item, 0, len(out.Items))
	for _, dto := range out.Items {
		item, err := dto.toModel()
		if err != nil {
			return nil, &DecodeError{Endpoint: path, Err: err}
		}
		items = append(items, item)
	}
	return items, nil
}

type itemEnvelope struct {
	Item *itemDTO `json:"item"`
}

func (c *Client) GetItem(ctx context.Context, id int) (models.Item, error) {
	path := fmt.Sprintf("/api/items/%d", id)
	var out itemEnvelope
	if _, err := c.do(ctx, http.MethodGet, path, "", nil, "", &out); err != nil {
		return models.Item{}, err
	}
	return decodeItemEnvelope(path, out)
}

func (c *Client) CreateItem(ctx context.Context, cookie string, draft models.ItemDraft) (models.Item, error) {
	body, contentType, err := encodeDraft(draft)
	if err != nil {
		return models.Item{}, err
	}
	var out itemEnvelope
	if _, err := c.do(ctx, http.MethodPost, "/api/items", cookie, body, contentType, &out); err != nil {
		return models.Item{}, err
	}
	return decodeItemEnvelope("/api/items", out)
}

func (c *Client) UpdateItem(ctx context.Context, cookie string, id int, draft models.ItemDraft) (models.Item, error) {
	body, contentType, err := encodeDraft(draft)
	if err != nil {
		return models.Item{}, err
	}
	path := fmt.Sprintf("/api/items/%d", id)
	var out itemEnvelope
	if _, err := c.do(ctx, http.MethodPut, path, cookie, body, contentType, &out); err != nil {
		return models.Item{}, err
	}
	return decodeItemEnvelope(path, out)
}

func (c *Client) DeleteItem(ctx context.Context, cookie string, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/items/%d", id), cookie, nil, "", nil)
	return err
}

type categoriesEnvelope struct {
	Categories []categoryDTO `json:"categories"`
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out categoriesEnvelope
	if _, err := c.do(ctx, http.MethodGet, "/api/items/categories", "", nil, "", &out); err != nil {
		return nil, err
	}
	cats := make([]models.Category, 0, len(out.Categories))
	for _, dto := range out.Categories {
		cat, err := dto.toModel()
		if err != nil {
			return nil, &DecodeError{Endpoint: "/api/items/categories", Err: err}
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

type usersEnvelope struct {
	Users []userDTO `json:"users"`
}

func (c *Client) AdminListUsers(ctx context.Context, cookie string) ([]models.User, error) {
	var out usersEnvelope
	if _, err := c.do(ctx, http.MethodGet, "/api/admin/users", cookie, nil, "", &out); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(out.Users))
	for _, dto := range out.Users {
		u, err := dto.toModel()
		if err != nil {
			return nil, &DecodeError{Endpoint: "/api/admin/users", Err: err}
		}
		users = append(users, u)
	}
	return users, nil
}

func (c *Client) AdminSetUserAdmin(ctx context.Context, cookie string, id int, isAdmin bool) error {
	body, err := json.Marshal(map[string]bool{"is_admin": isAdmin})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), cookie, bytes.NewReader(body), "application/json", nil)
	return err
}

func (c *Client) AdminDeleteUser(ctx context.Context, cookie string, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), cookie, nil, "", nil)
	return err
}

func (c *Client) AdminListItems(ctx context.Context, cookie string) ([]models.Item, error) {
	return c.fetchItems(ctx, "/api/admin/items", cookie, nil)
}

// Ping is the readiness probe: any reply from the categories endpoint,
// including an error status, proves the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/items/categories", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func decodeItemEnvelope(path string, out itemEnvelope) (models.Item, error) {
	if out.Item == nil {
		return models.Item{}, &DecodeError{Endpoint: path, Err: fmt.Errorf("reply without item")}
	}
	item, err := out.Item.toModel()
	if err != nil {
		return models.Item{}, &DecodeError{Endpoint: path, Err: err}
	}
	return item, nil
}

// do issues one request and decodes the reply into out (when non-nil).
// It returns the upstream session cookie pair from any Set-Cookie reply
// header so callers can persist a refreshed credential.
func (c *Client) do(ctx context.Context, method, path, cookie string, body io.Reader, contentType string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "finditweb/1")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if strings.TrimSpace(cookie) != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	newCookie := sessionCookiePair(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Message: errorBody(resp.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return "", &DecodeError{Endpoint: path, Err: err}
		}
	}
	return newCookie, nil
}

// errorBody pulls the {"error": ...} text out of a failure reply; anything
// else collapses to the empty string and callers fall back to a generic
// message.
func errorBody(r io.Reader) string {
	var out struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return ""
	}
	return strings.TrimSpace(out.Error)
}

func sessionCookiePair(resp *http.Response) string {
	pairs := make([]string, 0, 1)
	for _, c := range resp.Cookies() {
		if c.Value == "" {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

func encodeDraft(draft models.ItemDraft) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":         draft.Title,
		"description":   draft.Description,
		"item_type":     draft.ItemType,
		"category_id":   draft.CategoryID,
		"date_occurred": draft.DateOccurred,
		"location":      draft.Location,
	}
	if draft.IsResolved != nil {
		fields["is_resolved"] = fmt.Sprintf("%t", *draft.IsResolved)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if len(draft.ImageData) > 0 {
		part, err := mw.CreateFormFile("image", draft.ImageFilename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(draft.ImageData); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
