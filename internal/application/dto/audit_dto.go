package dto

import (
	"encoding/json"
	"time"
)

// AuditRecordResponse registro de auditoría.
type AuditRecordResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	FarmID      string          `json:"farm_id,omitempty"`
	SourceTable string          `json:"source_table"`
	RecordID    string          `json:"record_id"`
	Action      string          `json:"action"`
	Description string          `json:"description,omitempty"`
	DataBefore  json.RawMessage `json:"data_before,omitempty"`
	DataNew     json.RawMessage `json:"data_new,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	IPAddress   string          `json:"ip_address,omitempty"`
	UserAgent   string          `json:"user_agent,omitempty"`
}

// AuditListResponse resultado de la búsqueda, más recientes primero.
type AuditListResponse struct {
	Items []AuditRecordResponse `json:"items"`
	Limit int                   `json:"limit"`
}
