package audit

import (
	"gondolatrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint                `json:"id"`
	CreatedAt   string              `json:"created_at"`
	Usuario     string              `json:"usuario"`
	EntityType  string              `json:"entity_type"`
	EntityID    string              `json:"entity_id"`
	Action      models.AuditAction  `json:"action"`
	Outcome     models.AuditOutcome `json:"outcome"`
	Description string              `json:"description"`
	Payload     string              `json:"payload"`
	Error       string              `json:"error,omitempty"`
}

// GET /api/audit-logs?entity_type=abastecimento&entity_id=9&usuario=jean&limit=200
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if svc == nil || svc.db == nil {
			return c.JSON([]AuditLogResponse{})
		}

		dbq := svc.db.Model(&models.AuditLog{})
		if v := c.Query("entity_type"); v != "" {
			dbq = dbq.Where("entity_type = ?", v)
		}
		if v := c.Query("entity_id"); v != "" {
			dbq = dbq.Where("entity_id = ?", v)
		}
		if v := c.Query("usuario"); v != "" {
			dbq = dbq.Where("usuario = ?", v)
		}

		limit := c.QueryInt("limit", 200)
		if limit <= 0 || limit > 1000 {
			limit = 200
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar o log de auditoria")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				Usuario:     l.Usuario,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Outcome:     l.Outcome,
				Description: l.Description,
				Payload:     l.Payload,
				Error:       l.Error,
			})
		}
		return c.JSON(resp)
	}
}
