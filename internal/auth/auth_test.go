package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gondolatrack/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func newApp(secret string, client *upstream.Client) *fiber.App {
	app := fiber.New()
	app.Use(Guard(secret, client))
	app.Get("/api/auth/me", MeHandler())
	app.Get("/gondola/:id", func(c *fiber.Ctx) error { return c.SendString("page") })
	return app
}

func TestParseToken(t *testing.T) {
	good := sign(t, testSecret, Claims{
		Username: "jean",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	claims, err := ParseToken(testSecret, good)
	if err != nil || claims.User().Username != "jean" {
		t.Fatalf("claims=%v err=%v", claims, err)
	}

	expired := sign(t, testSecret, Claims{
		Username:         "jean",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	if _, err := ParseToken(testSecret, expired); err == nil {
		t.Fatal("expired token accepted")
	}
	if _, err := ParseToken("another-secret-another-secret-xx", good); err == nil {
		t.Fatal("wrong secret accepted")
	}
}

func TestGuardWithSecret(t *testing.T) {
	app := newApp(testSecret, upstream.New("http://unused", time.Second, "gt_token"))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("no cookie: %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/gondola/3?x=1", nil))
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != "/login?next=%2Fgondola%2F3%3Fx%3D1" {
		t.Fatalf("page redirect: %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Cookie", "gt_token="+sign(t, testSecret, Claims{Username: "jean", Groups: []string{"GT"}}))
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid token: %d", resp.StatusCode)
	}
	var out struct {
		User struct {
			Username string   `json:"username"`
			Groups   []string `json:"groups"`
		} `json:"user"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.User.Username != "jean" || len(out.User.Groups) != 1 {
		t.Fatalf("me = %+v", out)
	}
}

func TestGuardAsksAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("gt_token")
		if err != nil || ck.Value != "opaque" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"user": {"username": "ana"}}`)
	}))
	defer srv.Close()

	app := newApp("", upstream.New(srv.URL, time.Second, "gt_token"))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Cookie", "gt_token=opaque")
	resp, _ := app.Test(req)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(body), `"ana"`) {
		t.Fatalf("%d %s", resp.StatusCode, body)
	}

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Cookie", "gt_token=stale")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("stale token: %d", resp.StatusCode)
	}
}

func TestLoginSetsCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "gt_token", Value: "tok", Path: "/"})
		io.WriteString(w, `{"ok": true, "user": {"username": "jean"}}`)
	}))
	defer srv.Close()

	app := fiber.New()
	app.Post("/api/auth/login", LoginHandler(upstream.New(srv.URL, time.Second, "gt_token")))

	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"usuario":"jean","senha":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK || !strings.HasPrefix(resp.Header.Get("Set-Cookie"), "gt_token=tok") {
		t.Fatalf("%d %q", resp.StatusCode, resp.Header.Get("Set-Cookie"))
	}

	req = httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"usuario":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing credentials: %d", resp.StatusCode)
	}
}
