package abastecimento

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
	"gondolatrack/internal/models"
	"gondolatrack/internal/upstream"
	"gondolatrack/internal/workflow"
	"gondolatrack/internal/workspace"

	"github.com/gofiber/fiber/v2"
)

const wsCookie = "gt_ws=0b8f4c9e-6a51-4f0e-8a7e-3c2d1b0a9f88"

type fakeAPI struct {
	mu          sync.Mutex
	patches     []string
	confirms    int
	failConfirm bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == "POST" && r.URL.Path == "/api/abastecimentos/gerar":
		io.WriteString(w, `{"abastecimento":{"idAbastecimento":"9","idLoja":3,"status":"RASCUNHO"},
			"itens":[{"idAbastecimentoItem":"1","descricao":"Arroz","qtdSugerida":"4.000","qtdSelecionada":"4.000"},
			         {"idAbastecimentoItem":"2","descricao":"Feijão","qtdSugerida":"2.000","qtdSelecionada":"2.000"}]}`)
	case r.Method == "PATCH" && r.URL.Path == "/api/abastecimentos/9/itens":
		b, _ := io.ReadAll(r.Body)
		f.patches = append(f.patches, string(b))
		io.WriteString(w, `{"ok":true}`)
	case r.Method == "POST" && r.URL.Path == "/api/abastecimentos/9/confirmar":
		if f.failConfirm {
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"message":"Estoque do CD insuficiente"}`)
			return
		}
		f.confirms++
		io.WriteString(w, `{"ok":true}`)
	case r.Method == "GET" && r.URL.Path == "/api/abastecimentos/77/itens":
		io.WriteString(w, `[{"idAbastecimentoItem":"5","qtdSugerida":"1.000","qtdSelecionada":"1.000"}]`)
	case r.Method == "GET" && r.URL.Path == "/api/abastecimentos/9/itens":
		io.WriteString(w, `[{"idAbastecimentoItem":"1","qtdSugerida":"4.000","qtdSelecionada":"3.500"},
			{"idAbastecimentoItem":"2","qtdSugerida":"2.000","qtdSelecionada":"2.000"}]`)
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
		Sessions: workspace.NewRegistry[*workflow.Replenishment](time.Hour),
	}
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Use(workspace.Middleware("gt_ws"))
	app.Post("/api/abastecimentos/gerar", GenerateHandler(d))
	app.Get("/api/abastecimentos/:id/sessao", SessionHandler(d))
	app.Patch("/api/abastecimentos/:id/sessao/itens", EditHandler(d))
	app.Post("/api/abastecimentos/:id/sessao/salvar", SaveHandler(d))
	app.Post("/api/abastecimentos/:id/sessao/confirmar", ConfirmHandler(d))
	app.Post("/api/abastecimentos/:id/sessao/finalizar", CommitHandler(d))
	app.Get("/api/abastecimentos/:id/exportar", ExportHandler(d))
	app.Get("/api/abastecimentos/:id/imprimir", PrintHandler(d))
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

func TestGenerateEditCommit(t *testing.T) {
	api := &fakeAPI{failConfirm: true}
	app := newApp(t, api)

	resp, body := do(t, app, "POST", "/api/abastecimentos/gerar", `{"idLoja":3,"diasVenda":30,"coberturaDias":7}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("gerar: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, "PATCH", "/api/abastecimentos/9/sessao/itens", `{"valores":[{"key":"1","valor":"3,5"}]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("edit: %d %s", resp.StatusCode, body)
	}
	var v View
	_ = json.Unmarshal(body, &v)
	if v.Itens[0].QtdSelecionada.String() != "3.500" || v.Resumo.TotalSelecionado.String() != "5.500" {
		t.Fatalf("view = %+v", v)
	}

	// confirm fails: the save stays done, the message reaches the user
	resp, body = do(t, app, "POST", "/api/abastecimentos/9/sessao/finalizar", "")
	if resp.StatusCode != fiber.StatusUnprocessableEntity || !strings.Contains(string(body), "Estoque do CD insuficiente") {
		t.Fatalf("finalizar: %d %s", resp.StatusCode, body)
	}
	_, body = do(t, app, "GET", "/api/abastecimentos/9/sessao", "")
	_ = json.Unmarshal(body, &v)
	if v.Status != "saved" || len(v.Itens) != 2 || v.Itens[0].QtdEditada == nil {
		t.Fatalf("after failed confirm: %+v", v)
	}

	api.mu.Lock()
	api.failConfirm = false
	api.mu.Unlock()

	resp, body = do(t, app, "POST", "/api/abastecimentos/9/sessao/finalizar", "")
	if resp.StatusCode != 200 {
		t.Fatalf("retry: %d %s", resp.StatusCode, body)
	}
	_ = json.Unmarshal(body, &v)
	if v.Status != "confirmed" || v.Itens[0].Editado || v.Itens[0].QtdSelecionada.String() != "3.500" {
		t.Fatalf("after confirm: %+v", v)
	}
	if len(api.patches) != 1 || api.confirms != 1 {
		t.Fatalf("patches=%d confirms=%d", len(api.patches), api.confirms)
	}
	want := `{"itens":[{"idAbastecimentoItem":"1","qtdSelecionada":"3.500"},{"idAbastecimentoItem":"2","qtdSelecionada":"2.000"}]}`
	if api.patches[0] != want {
		t.Fatalf("patch = %s", api.patches[0])
	}

	resp, _ = do(t, app, "PATCH", "/api/abastecimentos/9/sessao/itens", `{"valores":[{"key":"1","valor":"1"}]}`)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("edit after confirm: %d", resp.StatusCode)
	}
}

func TestSessionsKeepTheirOwnID(t *testing.T) {
	api := &fakeAPI{}
	app := newApp(t, api)

	// loaded without idLoja: the header is built from the route id
	if resp, body := do(t, app, "GET", "/api/abastecimentos/9/sessao", ""); resp.StatusCode != 200 {
		t.Fatalf("load 9: %d %s", resp.StatusCode, body)
	}
	if resp, body := do(t, app, "GET", "/api/abastecimentos/77/sessao", ""); resp.StatusCode != 200 {
		t.Fatalf("load 77: %d %s", resp.StatusCode, body)
	}

	resp, body := do(t, app, "PATCH", "/api/abastecimentos/9/sessao/itens", `{"valores":[{"key":"2","valor":"1"}]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("edit: %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, app, "POST", "/api/abastecimentos/9/sessao/salvar", "")
	if resp.StatusCode != 200 {
		t.Fatalf("salvar: %d %s", resp.StatusCode, body)
	}
	var v View
	_ = json.Unmarshal(body, &v)
	if v.Abastecimento.IDAbastecimento != "9" || v.Status != "saved" {
		t.Fatalf("view = %+v", v)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.patches) != 1 {
		t.Fatalf("patches = %d", len(api.patches))
	}
}

func TestCommitAudit(t *testing.T) {
	saveErr := &workflow.SaveError{Err: &upstream.StatusError{Status: 500, Message: "falhou"}}
	if action, _ := commitAudit(saveErr); action != models.AuditActionSave {
		t.Fatalf("save failure logged as %s", action)
	}
	if action, _ := commitAudit(workflow.ErrNotSaved); action != models.AuditActionConfirm {
		t.Fatalf("confirm failure logged as %s", action)
	}
	if action, _ := commitAudit(nil); action != models.AuditActionConfirm {
		t.Fatalf("success logged as %s", action)
	}
}

func TestConfirmRequiresSave(t *testing.T) {
	app := newApp(t, &fakeAPI{})
	do(t, app, "POST", "/api/abastecimentos/gerar", `{"idLoja":3,"diasVenda":30,"coberturaDias":7}`)
	resp, body := do(t, app, "POST", "/api/abastecimentos/9/sessao/confirmar", "")
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("%d %s", resp.StatusCode, body)
	}
}

func TestGenerateValidation(t *testing.T) {
	app := newApp(t, &fakeAPI{})
	resp, _ := do(t, app, "POST", "/api/abastecimentos/gerar", `{"idLoja":3,"diasVenda":0,"coberturaDias":7}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestExportAndPrint(t *testing.T) {
	app := newApp(t, &fakeAPI{})
	resp, body := do(t, app, "GET", "/api/abastecimentos/9/exportar", "")
	if resp.StatusCode != 200 || resp.Header.Get("Content-Type") == "" || len(body) == 0 {
		t.Fatalf("export: %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "abastecimento-9.xlsx") {
		t.Fatalf("disposition = %q", resp.Header.Get("Content-Disposition"))
	}

	resp, _ = do(t, app, "GET", "/api/abastecimentos/9/imprimir", "")
	if resp.StatusCode != fiber.StatusFound || !strings.HasSuffix(resp.Header.Get("Location"), "/api/abastecimentos/9/print") {
		t.Fatalf("print: %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}
