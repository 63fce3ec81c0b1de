//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
	"github.com/jhoicas/agro-ledger/pkg/config"
)

// Requiere PostgreSQL: LEDGER_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/infrastructure/postgres/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

// Cada test usa una finca propia para no chocar con datos de otras corridas.
func testFarm() string { return "it-" + uuid.NewString() }

func testMaterial(t *testing.T, pool *pgxpool.Pool, farmID string) *entity.Material {
	t.Helper()
	m := &entity.Material{ID: uuid.NewString(), FarmID: farmID, Code: "C-" + uuid.NewString()[:8], Name: "Urea", Unit: "kg",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, NewMaterialRepository(pool).Create(context.Background(), m))
	return m
}

func TestInventoryStateRepo_UpsertYGet(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	farmID := testFarm()
	repo := NewInventoryStateRepository(pool)

	_, err := repo.Get(ctx, farmID, "m1")
	assert.ErrorIs(t, err, domain.ErrStateNotInitialized)

	st := &entity.InventoryState{
		FarmID:              farmID,
		MaterialID:          "m1",
		AccumulatedQuantity: decimal.RequireFromString("15"),
		SystemQuantity:      decimal.RequireFromString("15"),
		RealQuantity:        decimal.RequireFromString("15"),
		AveragePrice:        decimal.RequireFromString("2.6666666666666667"),
		StockValue:          decimal.RequireFromString("40"),
		UpdatedAt:           time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Upsert(ctx, st))

	st.ConsumedQuantity = decimal.RequireFromString("4.5")
	st.SystemQuantity = decimal.RequireFromString("10.5")
	st.RealQuantity = decimal.RequireFromString("10")
	st.RealQuantityRecorded = true
	st.Shrinkage = decimal.RequireFromString("0.5")
	require.NoError(t, repo.Upsert(ctx, st), "segunda escritura actualiza la misma fila")

	got, err := repo.Get(ctx, farmID, "m1")
	require.NoError(t, err)
	assert.True(t, got.SystemQuantity.Equal(st.SystemQuantity))
	assert.True(t, got.AveragePrice.Equal(st.AveragePrice), "NUMERIC conserva la precisión")
	assert.True(t, got.Shrinkage.Equal(st.Shrinkage))
	assert.True(t, got.RealQuantityRecorded)

	list, err := repo.ListByFarm(ctx, farmID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInventoryStateRepo_GetForUpdateEnTransaccion(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	farmID := testFarm()

	err := NewTxRunner(pool).Run(ctx, func(repos ledger.TxRepos) error {
		_, err := repos.States.GetForUpdate(ctx, farmID, "nuevo")
		if !errors.Is(err, domain.ErrStateNotInitialized) {
			return err
		}
		return repos.States.Upsert(ctx, &entity.InventoryState{FarmID: farmID, MaterialID: "nuevo", UpdatedAt: time.Now().UTC()})
	})
	require.NoError(t, err)

	_, err = NewInventoryStateRepository(pool).Get(ctx, farmID, "nuevo")
	assert.NoError(t, err)
}

func TestPurchaseRepo_CabeceraBorraLineasEnCascada(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	farmID := testFarm()
	m := testMaterial(t, pool, farmID)
	repo := NewPurchaseRepository(pool)

	now := time.Now().UTC()
	p := &entity.Purchase{ID: uuid.NewString(), FarmID: farmID, PurchaseDate: now, CreatedAt: now, CreatedBy: "u1"}
	for i := 0; i < 2; i++ {
		p.Lines = append(p.Lines, entity.PurchaseLine{
			ID: uuid.NewString(), FarmID: farmID, MaterialID: m.ID, PurchaseID: p.ID,
			QuantityPurchased: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(2), CreatedAt: now,
		})
	}
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.DeleteLine(ctx, p.Lines[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	referenced, err := NewMaterialRepository(pool).IsReferenced(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, referenced)
	err = NewMaterialRepository(pool).Delete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "la clave foránea protege al insumo usado")

	ok, err = repo.DeleteHeader(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	lines, err := repo.ListLinesByMaterial(ctx, farmID, m.ID)
	require.NoError(t, err)
	assert.Empty(t, lines, "la línea restante cae con la cabecera")
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = repo.DeleteHeader(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuditRepo_FiltroPorRangoDeFechas(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	farmID := testFarm()
	repo := NewAuditRepository(pool)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{entity.AuditActionCreate, entity.AuditActionDelete, entity.AuditActionCreate} {
		require.NoError(t, repo.Append(ctx, &entity.AuditRecord{
			ID:          uuid.NewString(),
			UserID:      "u1",
			FarmID:      farmID,
			SourceTable: entity.AuditTablePurchases,
			RecordID:    "p1",
			Action:      action,
			DataNew:     json.RawMessage(`{"n":1}`),
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
		}))
	}

	from, to := base.Add(30*time.Minute), base.Add(2*time.Hour)
	list, err := repo.List(ctx, repository.AuditFilter{FarmID: farmID, From: &from, To: &to, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2, "el límite superior es inclusivo")
	assert.True(t, list[0].Timestamp.After(list[1].Timestamp), "más reciente primero")
	assert.JSONEq(t, `{"n":1}`, string(list[0].DataNew))

	list, err = repo.List(ctx, repository.AuditFilter{FarmID: farmID, Action: entity.AuditActionCreate, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, base.Add(2*time.Hour).Equal(list[0].Timestamp))
}
