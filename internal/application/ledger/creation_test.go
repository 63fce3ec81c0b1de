package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

func TestRecordPurchase_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ledger.CreatePurchaseInput
		field string
	}{
		{"sin finca", ledger.CreatePurchaseInput{Lines: []ledger.PurchaseLineInput{buy("M", "1", "1")}}, "farm_id"},
		{"sin líneas", ledger.CreatePurchaseInput{FarmID: farmF}, "lines"},
		{"cantidad cero", purchaseInput(buy("M", "1", "1"), buy("M", "0", "1")), "lines[1].quantity"},
		{"precio negativo", purchaseInput(buy("M", "1", "-2")), "lines[0].unit_price"},
		{"sin insumo", purchaseInput(buy("", "1", "1")), "lines[0].material_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.creation.RecordPurchase(ctx, actor, tt.in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	purchases, err := f.store.Repos().Purchases.ListByFarm(ctx, farmF)
	require.NoError(t, err)
	assert.Empty(t, purchases, "nada se persiste si la validación falla")
	_, err = f.inventory.GetState(ctx, farmF, "M")
	assert.ErrorIs(t, err, domain.ErrStateNotInitialized)
}

func TestRecordPurchase_InsumoInexistenteOAjeno(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")
	f.material(t, "otra", "X")
	ctx := context.Background()

	_, err := f.creation.RecordPurchase(ctx, actor, purchaseInput(buy("M", "1", "1"), buy("nope", "1", "1")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.creation.RecordPurchase(ctx, actor, purchaseInput(buy("X", "1", "1")))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	purchases, err := f.store.Repos().Purchases.ListByFarm(ctx, farmF)
	require.NoError(t, err)
	assert.Empty(t, purchases, "la cabecera no queda a medias")
}

func TestRecordBatch_SobreconsumoPermitido(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")
	f.purchase(t, farmF, buy("M", "2", "4"))

	res, err := f.creation.RecordBatch(context.Background(), actor, ledger.CreateBatchInput{
		FarmID: farmF, Lines: []ledger.ConsumptionLineInput{use("M", "5")},
	})
	require.NoError(t, err)
	require.Len(t, res.Recompute.Outcomes, 1)
	st := res.Recompute.Outcomes[0].State
	assert.True(t, dec("-3").Equal(st.SystemQuantity))
	assert.True(t, dec("4").Equal(st.AveragePrice))
	assert.True(t, dec("-12").Equal(st.StockValue))
}

func TestRecordBatch_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")

	_, err := f.creation.RecordBatch(context.Background(), actor, batchInput())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.creation.RecordBatch(context.Background(), actor, ledger.CreateBatchInput{
		FarmID: farmF, Lines: []ledger.ConsumptionLineInput{use("M", "-1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordPurchase_AuditoriaConEstados(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")
	p := f.purchase(t, farmF, buy("M", "3", "2"))

	recs := f.auditRecords(t, repository.AuditFilter{FarmID: farmF, SourceTable: entity.AuditTablePurchases})
	require.Len(t, recs, 1)
	assert.Equal(t, entity.AuditActionCreate, recs[0].Action)
	assert.Equal(t, p.ID, recs[0].RecordID)
	assert.Equal(t, actor.UserID, recs[0].UserID)
	assert.Equal(t, actor.IPAddress, recs[0].IPAddress)
	assert.Contains(t, string(recs[0].DataNew), `"inventory_states"`)
	assert.Empty(t, recs[0].DataBefore)
}

// failingAuditRepo simula una base de auditoría caída.
type failingAuditRepo struct{}

func (failingAuditRepo) Append(context.Context, *entity.AuditRecord) error {
	return errors.New("audit_records no disponible")
}

func (failingAuditRepo) List(context.Context, repository.AuditFilter) ([]*entity.AuditRecord, error) {
	return nil, nil
}

func TestRecordPurchase_FallaDeAuditoriaNoBloquea(t *testing.T) {
	f := newFixtureWithAudit(t, failingAuditRepo{})
	f.material(t, farmF, "M")

	p := f.purchase(t, farmF, buy("M", "10", "3"))
	require.NotNil(t, p)
	assert.True(t, dec("30").Equal(f.state(t, farmF, "M").StockValue))

	_, err := f.deletion.DeletePurchase(context.Background(), actor, farmF, p.ID)
	require.NoError(t, err)
	f.auditLog.Wait()
}
