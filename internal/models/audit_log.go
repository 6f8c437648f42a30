package models

import "time"

type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionDelete   AuditAction = "delete"
	AuditActionGenerate AuditAction = "generate"
	AuditActionSave     AuditAction = "save"
	AuditActionConfirm  AuditAction = "confirm"
)

type AuditOutcome string

const (
	AuditSuccess AuditOutcome = "success"
	AuditFailure AuditOutcome = "failure"
)

// AuditLog: every mutating call relayed to the API, with its outcome.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Usuario string `gorm:"size:100;index" json:"usuario"`

	// "loja", "gondola", "gondola_produto", "conferencia", "abastecimento"
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   string `gorm:"size:64;index" json:"entityId"`

	Action  AuditAction  `gorm:"size:20" json:"action"`
	Outcome AuditOutcome `gorm:"size:20" json:"outcome"`

	Description string `gorm:"size:255" json:"description"`

	// Request body sent upstream (JSON)
	Payload string `gorm:"type:text" json:"payload"`
	Error   string `gorm:"size:500" json:"error"`
}
