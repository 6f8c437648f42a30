package workspace

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestRegistryExpiry(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewRegistry[int](time.Hour)
	r.now = func() time.Time { return now }

	r.Put("a", 1)
	now = now.Add(30 * time.Minute)
	if v, ok := r.Get("a"); !ok || v != 1 {
		t.Fatal("entry expired early")
	}

	// Get refreshed the timer
	now = now.Add(45 * time.Minute)
	if _, ok := r.Get("a"); !ok {
		t.Fatal("touch did not refresh")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := r.Get("a"); ok {
		t.Fatal("idle entry still served")
	}
}

func TestRegistrySweep(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewRegistry[string](time.Minute)
	r.now = func() time.Time { return now }
	r.Put("a", "x")
	r.Put("b", "y")
	now = now.Add(2 * time.Minute)
	r.Put("c", "z")
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}
	r.Delete("c")
	if r.Sweep() != 0 || r.Len() != 0 {
		t.Fatal("delete failed")
	}
}

func TestMiddlewareAssignsID(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware("gt_ws"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(ID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	set := resp.Header.Get("Set-Cookie")
	if !strings.HasPrefix(set, "gt_ws=") {
		t.Fatalf("set-cookie = %q", set)
	}
	id := strings.TrimPrefix(strings.Split(set, ";")[0], "gt_ws=")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", "gt_ws="+id)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get("Set-Cookie") != "" {
		t.Fatal("existing workspace re-issued")
	}
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	if buf.String() != id {
		t.Fatalf("id = %q, want %q", buf.String(), id)
	}
}
