package conferencia

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gondolatrack/internal/httpx"
	"gondolatrack/internal/upstream"
	"gondolatrack/internal/workflow"
	"gondolatrack/internal/workspace"

	"github.com/gofiber/fiber/v2"
)

const wsCookie = "gt_ws=6f1c1a52-2b5e-4a8e-9d55-6a1f0b6f4a10"

type fakeAPI struct {
	mu     sync.Mutex
	posted []byte
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == "GET" && r.URL.Path == "/api/gondolas/5/produtos":
		io.WriteString(w, `[{"idGondolaProduto":1,"idProduto":10,"ean":"789","descricao":"Arroz"},
			{"idGondolaProduto":2,"ean":"456","descricao":"Feijão"}]`)
	case r.Method == "GET" && r.URL.Path == "/api/gondolas/5/conferencia/ultima":
		w.WriteHeader(http.StatusNotFound)
	case r.Method == "POST" && r.URL.Path == "/api/gondolas/5/conferencia":
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.posted = b
		f.mu.Unlock()
		io.WriteString(w, `{"ok":true,"idConferencia":31}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newApp(t *testing.T, api http.Handler) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	d := Deps{
		API:      upstream.New(srv.URL+"/api", time.Second, "gt_token"),
		Sessions: workspace.NewRegistry[*workflow.StockCount](time.Hour),
	}
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Use(workspace.Middleware("gt_ws"))
	app.Get("/api/gondolas/:id/conferencia", LoadHandler(d))
	app.Patch("/api/gondolas/:id/conferencia/valores", EditHandler(d))
	app.Post("/api/gondolas/:id/conferencia/salvar", SaveHandler(d))
	app.Delete("/api/gondolas/:id/conferencia", DiscardHandler(d))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Cookie", wsCookie)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func TestCountAndSave(t *testing.T) {
	api := &fakeAPI{}
	app := newApp(t, api)

	resp, body := do(t, app, "GET", "/api/gondolas/5/conferencia", "")
	if resp.StatusCode != 200 {
		t.Fatalf("load: %d %s", resp.StatusCode, body)
	}
	var v View
	_ = json.Unmarshal(body, &v)
	if len(v.Linhas) != 2 || v.Linhas[0].Key != "ID:10" || v.Linhas[1].Key != "EAN:456" || v.IDConferencia != nil {
		t.Fatalf("view = %+v", v)
	}

	resp, body = do(t, app, "PATCH", "/api/gondolas/5/conferencia/valores", `{"valores":[{"key":"ID:10","valor":"12,5"}]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("edit: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, "POST", "/api/gondolas/5/conferencia/salvar", "")
	if resp.StatusCode != 200 {
		t.Fatalf("save: %d %s", resp.StatusCode, body)
	}
	want := `{"itens":[{"idProduto":10,"ean":"789","descricao":"Arroz","qtdConferida":12.5},` +
		`{"idProduto":null,"ean":"456","descricao":"Feijão","qtdConferida":0}]}`
	if string(api.posted) != want {
		t.Fatalf("posted =\n%s\nwant\n%s", api.posted, want)
	}
	var saved struct {
		IDConferencia int64 `json:"idConferencia"`
		Sessao        View  `json:"sessao"`
	}
	_ = json.Unmarshal(body, &saved)
	if saved.IDConferencia != 31 || saved.Sessao.Status != "saved" {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestEditUnknownKey(t *testing.T) {
	app := newApp(t, &fakeAPI{})
	do(t, app, "GET", "/api/gondolas/5/conferencia", "")
	resp, _ := do(t, app, "PATCH", "/api/gondolas/5/conferencia/valores", `{"valores":[{"key":"ID:999","valor":"1"}]}`)
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestEditWithoutSession(t *testing.T) {
	app := newApp(t, &fakeAPI{})
	resp, _ := do(t, app, "PATCH", "/api/gondolas/5/conferencia/valores", `{"valores":[{"key":"ID:10","valor":"1"}]}`)
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	do(t, app, "GET", "/api/gondolas/5/conferencia", "")
	do(t, app, "DELETE", "/api/gondolas/5/conferencia", "")
	resp, _ = do(t, app, "POST", "/api/gondolas/5/conferencia/salvar", "")
	if resp.StatusCode != 404 {
		t.Fatalf("after discard: %d", resp.StatusCode)
	}
}

func TestUnreachableAPI(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	d := Deps{
		API:      upstream.New(base, time.Second, "gt_token"),
		Sessions: workspace.NewRegistry[*workflow.StockCount](time.Hour),
	}
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Use(workspace.Middleware("gt_ws"))
	app.Get("/api/gondolas/:id/conferencia", LoadHandler(d))

	resp, body := do(t, app, "GET", "/api/gondolas/5/conferencia", "")
	if resp.StatusCode != 503 || !strings.Contains(string(body), "Não foi possível conectar no servidor.") {
		t.Fatalf("%d %s", resp.StatusCode, body)
	}
}
