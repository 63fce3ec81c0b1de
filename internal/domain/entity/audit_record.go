package entity

import (
	"encoding/json"
	"time"
)

// Acciones de auditoría.
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionRestore    = "RESTORE"
	AuditActionBulkDelete = "BULK_DELETE"
)

// Tablas de origen registradas en auditoría.
const (
	AuditTablePurchases       = "purchases"
	AuditTableBatches         = "batches"
	AuditTableInventoryStates = "inventory_states"
	AuditTableMaterials       = "materials"
)

// AuditRecord registro inmutable de una operación que muta el libro. Solo se agrega.
type AuditRecord struct {
	ID          string
	UserID      string
	FarmID      string // vacío para operaciones sin finca
	SourceTable string
	RecordID    string
	Action      string
	Description string
	DataBefore  json.RawMessage
	DataNew     json.RawMessage
	Timestamp   time.Time
	IPAddress   string
	UserAgent   string
}

// IsValidAuditAction valida la acción contra el catálogo.
func IsValidAuditAction(a string) bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete, AuditActionRestore, AuditActionBulkDelete:
		return true
	}
	return false
}
