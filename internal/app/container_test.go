package app_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/internal/app"
	"github.com/jhoicas/agro-ledger/internal/application/dto"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/pkg/config"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

func TestBuild_Memoria(t *testing.T) {
	cfg := &config.Config{Ledger: config.LedgerConfig{
		Store:                config.StoreMemory,
		LockBackend:          config.LockLocal,
		RecomputeConcurrency: 2,
		AuditEnabled:         true,
		AuditDefaultLimit:    10,
		AuditMaxLimit:        10,
	}}
	ctx := context.Background()
	c, err := app.Build(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	actor := ledger.Actor{UserID: "u1"}
	m, err := c.MaterialUC.Create(ctx, actor, "f1", dto.CreateMaterialRequest{Code: "UREA", Name: "Urea"})
	require.NoError(t, err)

	_, err = c.Creation.RecordPurchase(ctx, actor, ledger.CreatePurchaseInput{
		FarmID: "f1",
		Lines:  []ledger.PurchaseLineInput{{MaterialID: m.ID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)

	st, err := c.Inventory.GetState(ctx, "f1", m.ID)
	require.NoError(t, err)
	assert.True(t, st.StockValue.Equal(decimal.NewFromInt(30)))
}
