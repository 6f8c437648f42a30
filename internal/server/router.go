package server

import (
	"slices"
	"strings"

	"gondolatrack/internal/abastecimento"
	"gondolatrack/internal/audit"
	"gondolatrack/internal/auth"
	"gondolatrack/internal/catalog"
	"gondolatrack/internal/conferencia"
	"gondolatrack/internal/config"
	"gondolatrack/internal/httpx"
	"gondolatrack/internal/upstream"
	"gondolatrack/internal/workflow"
	"gondolatrack/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// publicPages are served without a session.
var publicPages = []string{"/login", "/favicon.ico", "/assets/", "/_next/"}

func isPublicPage(path string) bool {
	for _, p := range publicPages {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// New wires the BFF. db may be nil, which disables the audit trail.
func New(cfg *config.Config, api *upstream.Client, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler,
		AppName:      "GondolaTrack",
		Immutable:    true,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: !slices.Contains(corsOrigins, "*"),
	}))
	app.Use(workspace.Middleware(cfg.WorkspaceCookie))

	guard := auth.Guard(cfg.JWTSecret, api)
	au := audit.NewService(db)
	counts := conferencia.Deps{
		API:      api,
		Sessions: workspace.NewRegistry[*workflow.StockCount](cfg.SessionTTL),
		Audit:    au,
	}
	batches := abastecimento.Deps{
		API:      api,
		Sessions: workspace.NewRegistry[*workflow.Replenishment](cfg.SessionTTL),
		Audit:    au,
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	apiGroup := app.Group("/api")

	// Public auth
	apiGroup.Post("/auth/login", auth.LoginHandler(api))
	apiGroup.Post("/auth/logout", auth.LogoutHandler(api))

	// Protected
	protected := apiGroup.Group("")
	protected.Use(guard)

	protected.Get("/auth/me", auth.MeHandler())

	// Lojas, gôndolas e produtos
	protected.Get("/lojas", catalog.ListLojasHandler(api))
	protected.Post("/lojas", catalog.CreateLojaHandler(api, au))
	protected.Delete("/lojas/:id", catalog.DeleteLojaHandler(api, au))
	protected.Get("/usuarios", catalog.ListUsuariosHandler(api))

	protected.Get("/gondolas", catalog.ListGondolasHandler(api))
	protected.Post("/gondolas", catalog.CreateGondolaHandler(api, au))
	protected.Get("/gondolas/:id", catalog.GetGondolaHandler(api))
	protected.Put("/gondolas/:id", catalog.UpdateGondolaHandler(api, au))
	protected.Delete("/gondolas/:id", catalog.DeleteGondolaHandler(api, au))
	protected.Get("/gondolas/:id/produtos", catalog.ListProdutosHandler(api))
	protected.Post("/gondolas/:id/produtos", catalog.AddProdutoHandler(api, au))
	protected.Post("/gondolas/:id/produtos/refresh-estoque", catalog.RefreshEstoqueHandler(api))
	protected.Delete("/gondolas/:id/produtos/:idGondolaProduto", catalog.RemoveProdutoHandler(api, au))
	protected.Get("/gondolas/:id/reposicao", catalog.ReposicaoHandler(api))

	// Conferência
	protected.Get("/gondolas/:id/conferencia", conferencia.LoadHandler(counts))
	protected.Patch("/gondolas/:id/conferencia/valores", conferencia.EditHandler(counts))
	protected.Post("/gondolas/:id/conferencia/salvar", conferencia.SaveHandler(counts))
	protected.Delete("/gondolas/:id/conferencia", conferencia.DiscardHandler(counts))
	protected.Get("/gondolas/:id/conferencia/:idConferencia", conferencia.PrintHandler(counts))
	protected.Get("/conferencias", conferencia.HistoryHandler(counts))

	// Abastecimento
	protected.Get("/abastecimentos", abastecimento.ListHandler(batches))
	protected.Post("/abastecimentos/gerar", abastecimento.GenerateHandler(batches))
	protected.Get("/abastecimentos/:id/sessao", abastecimento.SessionHandler(batches))
	protected.Patch("/abastecimentos/:id/sessao/itens", abastecimento.EditHandler(batches))
	protected.Post("/abastecimentos/:id/sessao/salvar", abastecimento.SaveHandler(batches))
	protected.Post("/abastecimentos/:id/sessao/confirmar", abastecimento.ConfirmHandler(batches))
	protected.Post("/abastecimentos/:id/sessao/finalizar", abastecimento.CommitHandler(batches))
	protected.Delete("/abastecimentos/:id/sessao", abastecimento.DiscardHandler(batches))
	protected.Get("/abastecimentos/:id/exportar", abastecimento.ExportHandler(batches))
	protected.Get("/abastecimentos/:id/imprimir", abastecimento.PrintHandler(batches))

	// Audit
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(au))

	apiGroup.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Rota não encontrada")
	})

	// Front-end pages
	if cfg.StaticDir != "" {
		app.Use(func(c *fiber.Ctx) error {
			if isPublicPage(c.Path()) {
				return c.Next()
			}
			return guard(c)
		})
		app.Static("/", cfg.StaticDir)
	}

	return app
}
