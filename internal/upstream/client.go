// Package upstream is the typed client of the GondolaTrack REST API.
package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gondolatrack/internal/normalize"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// ErrUnreachable wraps every transport failure.
var ErrUnreachable = errors.New("Não foi possível conectar no servidor.")

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// IsNotFound reports a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == fiber.StatusNotFound
}

// Client carries the API base URL and, once bound with WithToken, the
// caller's session cookie.
type Client struct {
	baseURL    string
	timeout    time.Duration
	cookieName string
	token      string
}

func New(baseURL string, timeout time.Duration, cookieName string) *Client {
	if cookieName == "" {
		cookieName = "gt_token"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		cookieName: cookieName,
	}
}

// WithToken returns a copy that forwards token as the session cookie.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) CookieName() string { return c.cookieName }

// URL builds an absolute API URL for path.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

type response struct {
	status int
	body   []byte
	cookie string
}

// do runs one request. Non-2xx answers become *StatusError.
func (c *Client) do(method, path string, query url.Values, body any) (response, error) {
	target := c.URL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(target)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		a.Cookie(c.cookieName, c.token)
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fiber.ReleaseAgent(a)
			return response{}, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		a.ContentType(fiber.MIMEApplicationJSON)
		a.Body(b)
	}
	if c.timeout > 0 {
		a.Timeout(c.timeout)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return response{}, fmt.Errorf("%w (%s %s: %v)", ErrUnreachable, method, path, err)
	}
	code, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return response{}, fmt.Errorf("%w (%s %s: %v)", ErrUnreachable, method, path, errors.Join(errs...))
	}

	out := response{status: code, body: raw}
	ck := fasthttp.AcquireCookie()
	ck.SetKey(c.cookieName)
	if resp.Header.Cookie(ck) {
		out.cookie = string(ck.Value())
	}
	fasthttp.ReleaseCookie(ck)

	if code < 200 || code > 299 {
		return out, statusError(code, raw)
	}
	return out, nil
}

// statusError surfaces the API's "message" (a string or a list of strings).
func statusError(code int, body []byte) error {
	msg := ""
	raw, _ := normalize.Field(normalize.Decode(body), "message")
	switch v := raw.(type) {
	case string:
		msg = strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s := strings.TrimSpace(fmt.Sprint(p)); s != "" {
				parts = append(parts, s)
			}
		}
		msg = strings.Join(parts, "; ")
	}
	if msg == "" {
		msg = fmt.Sprintf("Falha na operação (HTTP %d)", code)
	}
	return &StatusError{Status: code, Message: msg}
}

func (c *Client) get(path string, query url.Values) (any, error) {
	res, err := c.do(fiber.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return normalize.Decode(res.body), nil
}

func (c *Client) send(method, path string, body any) (any, error) {
	res, err := c.do(method, path, nil, body)
	if err != nil {
		return nil, err
	}
	return normalize.Decode(res.body), nil
}
