package audit

import (
	"encoding/json"
	"fmt"
	"log"

	"gondolatrack/internal/auth"
	"gondolatrack/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LogOptions struct {
	Usuario     string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Payload     any
	Err         error
}

// Service records mutating calls relayed to the API. A nil Service or one
// without a database is a no-op.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) WriteLog(opts LogOptions) error {
	if s == nil || s.db == nil {
		return nil
	}

	payload := "null"
	if opts.Payload != nil {
		if b, err := json.Marshal(opts.Payload); err == nil {
			payload = string(b)
		}
	}

	entry := models.AuditLog{
		Usuario:     opts.Usuario,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Outcome:     models.AuditSuccess,
		Description: opts.Description,
		Payload:     payload,
	}
	if opts.Err != nil {
		entry.Outcome = models.AuditFailure
		entry.Error = truncate(opts.Err.Error(), 500)
	}

	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log não gravado: %w", err)
	}
	return nil
}

// Record writes the log and only reports a failure to the server log.
func (s *Service) Record(opts LogOptions) {
	if err := s.WriteLog(opts); err != nil {
		log.Printf("[WARN] %v", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Track records a mutation made on behalf of the request's user.
func (s *Service) Track(c *fiber.Ctx, opts LogOptions) {
	if opts.Usuario == "" {
		opts.Usuario = auth.User(c).Username
	}
	s.Record(opts)
}
