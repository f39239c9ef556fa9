package record

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
)

// reauthLeeway renews the token this long before its exp claim.
const reauthLeeway = time.Minute

type (
	// Client is the REST implementation of core.Client against the record
	// store's collection API. Every request carries a bearer token; a missing
	// token (and no credentials to obtain one) fails immediately with
	// core.ErrNoToken, before any request is issued.
	Client struct {
		baseURL string
		hc      *http.Client

		identity string
		password string

		mu       sync.RWMutex
		token    string
		tokenExp time.Time
	}

	listEnvelope struct {
		Page       int             `json:"page"`
		PerPage    int             `json:"perPage"`
		TotalItems int             `json:"totalItems"`
		Items      json.RawMessage `json:"items"`
	}

	authResponse struct {
		Token string `json:"token"`
	}
)

var _ core.Client = (*Client)(nil)

// NewClient uses a pre-issued token.
func NewClient(baseURL, token string) *Client {
	c := newClient(baseURL)
	c.token = token
	c.tokenExp = tokenExpiry(token)
	return c
}

// NewClientWithPassword authenticates lazily with the admin identity and
// re-authenticates before the issued token expires.
func NewClientWithPassword(baseURL, identity, password string) *Client {
	c := newClient(baseURL)
	c.identity = identity
	c.password = password
	return c
}

func newClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: core.Conf.GetDuration("storeTimeout")},
	}
}

func (c *Client) List(ctx context.Context, collection string, opts core.ListOptions, dst interface{}) (int, error) {
	query := url.Values{}
	if opts.Filter != "" {
		query.Set("filter", opts.Filter)
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.Expand != "" {
		query.Set("expand", opts.Expand)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("perPage", strconv.Itoa(opts.PerPage))
	}

	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/collections/"+collection+"/records", query, nil, &env); err != nil {
		return 0, err
	}
	if dst != nil && env.Items != nil {
		if err := json.Unmarshal(env.Items, dst); err != nil {
			return 0, errors.Wrap(err, "decoding "+collection+" items")
		}
	}
	return env.TotalItems, nil
}

func (c *Client) Get(ctx context.Context, collection, id string, dst interface{}) error {
	return c.do(ctx, http.MethodGet, "/api/collections/"+collection+"/records/"+id, nil, nil, dst)
}

func (c *Client) Create(ctx context.Context, collection string, body interface{}, dst interface{}) error {
	return c.do(ctx, http.MethodPost, "/api/collections/"+collection+"/records", nil, body, dst)
}

func (c *Client) Update(ctx context.Context, collection, id string, patch interface{}, dst interface{}) error {
	return c.do(ctx, http.MethodPatch, "/api/collections/"+collection+"/records/"+id, nil, patch, dst)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/collections/"+collection+"/records/"+id, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, method+" "+path)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}

// Token returns a valid bearer token, authenticating first if needed.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.ensureToken(ctx)
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token, exp := c.token, c.tokenExp
	c.mu.RUnlock()

	fresh := token != "" && (exp.IsZero() || time.Now().Before(exp.Add(-reauthLeeway)))
	if fresh {
		return token, nil
	}
	if c.identity == "" {
		if token != "" {
			return token, nil // static token with an exp we cannot renew
		}
		return "", core.ErrNoToken
	}
	return c.authenticate(ctx)
}

// authenticate exchanges the admin credentials for a bearer token.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	raw, _ := json.Marshal(map[string]string{
		"identity": c.identity,
		"password": c.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admins/auth-with-password", bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrap(err, "building auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "authenticating")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", core.ErrAuthentication
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", errors.Wrap(err, "decoding auth response")
	}

	c.mu.Lock()
	c.token = auth.Token
	c.tokenExp = tokenExpiry(auth.Token)
	c.mu.Unlock()
	return auth.Token, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return core.ErrAuthentication
	case resp.StatusCode == http.StatusNotFound:
		return core.ErrNotFound
	default:
		snippet, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("record store: %s: %s", resp.Status, snippet)
	}
}
