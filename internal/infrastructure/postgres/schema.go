package postgres

import "context"

// schema esquema del libro. Idempotente: se aplica en cada arranque.
const schema = `
CREATE TABLE IF NOT EXISTS materials (
	id         TEXT PRIMARY KEY,
	farm_id    TEXT NOT NULL,
	code       TEXT NOT NULL,
	name       TEXT NOT NULL,
	unit       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (farm_id, code)
);

CREATE TABLE IF NOT EXISTS purchases (
	id            TEXT PRIMARY KEY,
	farm_id       TEXT NOT NULL,
	supplier_id   TEXT NOT NULL DEFAULT '',
	reference     TEXT NOT NULL DEFAULT '',
	purchase_date TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_purchases_farm ON purchases(farm_id);

-- Las líneas se eliminan en cascada con su cabecera.
CREATE TABLE IF NOT EXISTS purchase_lines (
	id                 TEXT PRIMARY KEY,
	farm_id            TEXT NOT NULL,
	material_id        TEXT NOT NULL REFERENCES materials(id),
	purchase_id        TEXT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
	quantity_purchased NUMERIC NOT NULL CHECK (quantity_purchased > 0),
	unit_price         NUMERIC NOT NULL CHECK (unit_price > 0),
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_purchase_lines_key ON purchase_lines(farm_id, material_id);
CREATE INDEX IF NOT EXISTS idx_purchase_lines_purchase ON purchase_lines(purchase_id);

CREATE TABLE IF NOT EXISTS batches (
	id          TEXT PRIMARY KEY,
	farm_id     TEXT NOT NULL,
	formula_id  TEXT NOT NULL DEFAULT '',
	code        TEXT NOT NULL DEFAULT '',
	produced_at TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_batches_farm ON batches(farm_id);

CREATE TABLE IF NOT EXISTS consumption_lines (
	id            TEXT PRIMARY KEY,
	farm_id       TEXT NOT NULL,
	material_id   TEXT NOT NULL REFERENCES materials(id),
	batch_id      TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	quantity_used NUMERIC NOT NULL CHECK (quantity_used > 0),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_consumption_lines_key ON consumption_lines(farm_id, material_id);
CREATE INDEX IF NOT EXISTS idx_consumption_lines_batch ON consumption_lines(batch_id);

-- Modelo de lectura: una fila por (finca, insumo), nunca se elimina.
CREATE TABLE IF NOT EXISTS inventory_states (
	farm_id                TEXT NOT NULL,
	material_id            TEXT NOT NULL,
	accumulated_quantity   NUMERIC NOT NULL,
	consumed_quantity      NUMERIC NOT NULL,
	system_quantity        NUMERIC NOT NULL,
	real_quantity          NUMERIC NOT NULL,
	real_quantity_recorded BOOLEAN NOT NULL DEFAULT FALSE,
	shrinkage              NUMERIC NOT NULL,
	average_price          NUMERIC NOT NULL,
	stock_value            NUMERIC NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (farm_id, material_id)
);

-- Auditoría: solo se agregan filas.
CREATE TABLE IF NOT EXISTS audit_records (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	farm_id      TEXT,
	source_table TEXT NOT NULL,
	record_id    TEXT NOT NULL,
	action       TEXT NOT NULL CHECK (action IN ('CREATE','UPDATE','DELETE','RESTORE','BULK_DELETE')),
	description  TEXT,
	data_before  JSONB,
	data_new     JSONB,
	"timestamp"  TIMESTAMPTZ NOT NULL,
	ip_address   TEXT,
	user_agent   TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_records_farm_ts ON audit_records(farm_id, "timestamp" DESC);
CREATE INDEX IF NOT EXISTS idx_audit_records_table_action ON audit_records(source_table, action);
`

// Migrate aplica el esquema. Sin argumentos de consulta, pgx usa el protocolo simple
// y acepta varias sentencias en un solo Exec.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return wrapErr("migrate schema", err)
	}
	return nil
}
