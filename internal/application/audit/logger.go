package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// Actor quién ejecuta la operación; el usuario viene del token y el resto de la petición.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// Entry operación a auditar. Before y After se serializan a JSON en el momento de Record.
type Entry struct {
	Actor       Actor
	FarmID      string
	SourceTable string
	RecordID    string
	Action      string
	Description string
	Before      any
	After       any
}

// Config se pasa al construir el Logger; no hay interruptor global.
type Config struct {
	Enabled      bool
	WriteTimeout time.Duration
}

// Logger escribe auditoría en segundo plano. Record nunca falla ni bloquea al llamador:
// los errores de escritura se registran en el log y se descartan.
type Logger struct {
	repo repository.AuditRepository
	cfg  Config
	log  *logger.Logger
	now  func() time.Time
	wg   sync.WaitGroup
}

// NewLogger construye el logger de auditoría.
func NewLogger(repo repository.AuditRepository, cfg Config, log *logger.Logger) *Logger {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Logger{repo: repo, cfg: cfg, log: log.Component("audit"), now: time.Now}
}

// Record agenda la escritura y retorna de inmediato.
func (l *Logger) Record(ctx context.Context, e Entry) {
	if !l.cfg.Enabled {
		return
	}
	if !entity.IsValidAuditAction(e.Action) {
		l.log.Error().Str("action", e.Action).Str("table", e.SourceTable).Msg("acción de auditoría inválida, registro descartado")
		return
	}

	rec := &entity.AuditRecord{
		ID:          uuid.New().String(),
		UserID:      e.Actor.UserID,
		FarmID:      e.FarmID,
		SourceTable: e.SourceTable,
		RecordID:    e.RecordID,
		Action:      e.Action,
		Description: e.Description,
		DataBefore:  l.snapshot(e.Before, "before", e),
		DataNew:     l.snapshot(e.After, "after", e),
		Timestamp:   l.now().UTC(),
		IPAddress:   e.Actor.IPAddress,
		UserAgent:   e.Actor.UserAgent,
	}

	// La escritura sobrevive a la cancelación de la petición pero no más allá de WriteTimeout.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.WriteTimeout)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				l.log.Error().Str("panic", fmt.Sprint(r)).Str("record_id", rec.RecordID).Msg("pánico escribiendo auditoría")
			}
		}()
		if err := l.repo.Append(writeCtx, rec); err != nil {
			l.log.Error().Err(err).
				Str("table", rec.SourceTable).
				Str("record_id", rec.RecordID).
				Str("action", rec.Action).
				Msg("no se pudo escribir auditoría")
		}
	}()
}

// Wait espera las escrituras en curso (apagado ordenado y tests).
func (l *Logger) Wait() {
	l.wg.Wait()
}

func (l *Logger) snapshot(v any, field string, e Entry) json.RawMessage {
	if v == nil {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		l.log.Warn().Err(err).Str("field", field).Str("record_id", e.RecordID).Msg("snapshot de auditoría no serializable")
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	return b
}
