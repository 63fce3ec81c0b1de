package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

func TestDeletePurchase_RevierteAlEstadoSinLaCompra(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "A")
	f.material(t, farmF, "B")
	f.purchase(t, farmF, buy("A", "10", "2"))
	f.batch(t, farmF, use("A", "3"))
	wantA := f.state(t, farmF, "A")

	p := f.purchase(t, farmF, buy("A", "5", "8"), buy("B", "2", "1"))
	assert.False(t, wantA.AveragePrice.Equal(f.state(t, farmF, "A").AveragePrice))

	res, err := f.deletion.DeletePurchase(context.Background(), actor, farmF, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LinesDeleted)
	assert.Equal(t, []string{"A", "B"}, res.MaterialIDs)
	require.NoError(t, res.Recompute.Err())

	gotA := f.state(t, farmF, "A")
	assert.True(t, wantA.SystemQuantity.Equal(gotA.SystemQuantity))
	assert.True(t, wantA.AveragePrice.Equal(gotA.AveragePrice))
	assert.True(t, wantA.StockValue.Equal(gotA.StockValue))

	gotB := f.state(t, farmF, "B")
	assert.True(t, gotB.SystemQuantity.IsZero(), "el estado de B se conserva en cero, no se borra")
	assert.True(t, gotB.AveragePrice.IsZero())
}

func TestDeleteBatch_RestauraCantidad(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")
	f.purchase(t, farmF, buy("M", "10", "3"))
	b := f.batch(t, farmF, use("M", "4"), use("M", "1"))
	assert.True(t, dec("5").Equal(f.state(t, farmF, "M").SystemQuantity))

	res, err := f.deletion.DeleteBatch(context.Background(), actor, farmF, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LinesDeleted)
	assert.True(t, dec("10").Equal(f.state(t, farmF, "M").SystemQuantity))
	assert.True(t, dec("30").Equal(f.state(t, farmF, "M").StockValue))
}

func TestDeletePurchase_NoEncontrado(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")
	p := f.purchase(t, farmF, buy("M", "1", "1"))
	ctx := context.Background()

	_, err := f.deletion.DeletePurchase(ctx, actor, "otra-finca", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "cabecera de otra finca")
	_, err = f.deletion.DeletePurchase(ctx, actor, farmF, "inexistente")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.deletion.DeletePurchase(ctx, actor, farmF, p.ID)
	require.NoError(t, err)
	_, err = f.deletion.DeletePurchase(ctx, actor, farmF, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "segunda eliminación")
}

func TestDeletePurchase_AuditoriaDeEliminacion(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "M")
	p := f.purchase(t, farmF, buy("M", "4", "2"))

	_, err := f.deletion.DeletePurchase(context.Background(), actor, farmF, p.ID)
	require.NoError(t, err)

	recs := f.auditRecords(t, repository.AuditFilter{FarmID: farmF, Action: entity.AuditActionDelete})
	require.Len(t, recs, 1)
	assert.Equal(t, p.ID, recs[0].RecordID)
	assert.Contains(t, string(recs[0].DataBefore), `"purchase"`)
	assert.Contains(t, string(recs[0].DataNew), `"inventory_states"`)
}

func TestBulkDeletePurchases_ResumenPorCabecera(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "A")
	f.material(t, farmF, "B")
	f.material(t, "otra", "X")
	f.purchase(t, farmF, buy("A", "1", "1"))
	f.purchase(t, farmF, buy("A", "2", "2"), buy("B", "3", "3"))
	f.purchase(t, farmF, buy("B", "4", "4"))
	f.purchase(t, "otra", buy("X", "5", "5"))
	ctx := context.Background()

	report, err := f.deletion.BulkDeletePurchases(ctx, actor, farmF)
	require.NoError(t, err)
	require.Len(t, report.Items, 3)
	assert.Equal(t, 3, report.Succeeded())
	assert.Empty(t, report.Failed())
	assert.Equal(t, []string{"A", "B"}, report.MaterialIDs)
	require.Len(t, report.Recompute.Outcomes, 2, "un recálculo por insumo, no por cabecera")

	assert.True(t, f.state(t, farmF, "A").AccumulatedQuantity.IsZero())
	assert.True(t, f.state(t, farmF, "B").AccumulatedQuantity.IsZero())
	assert.True(t, dec("5").Equal(f.state(t, "otra", "X").SystemQuantity), "otra finca intacta")

	deletes := f.auditRecords(t, repository.AuditFilter{FarmID: farmF, Action: entity.AuditActionDelete})
	assert.Len(t, deletes, 3)
	summary := f.auditRecords(t, repository.AuditFilter{FarmID: farmF, Action: entity.AuditActionBulkDelete})
	require.Len(t, summary, 1)
	assert.Contains(t, summary[0].Description, "3 de 3")
}

func TestBulkDeletePurchases_FallaParcialContinua(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "A")
	f.material(t, farmF, "B")
	f.material(t, farmF, "C")
	f.purchase(t, farmF, buy("A", "1", "1"))
	broken := f.purchase(t, farmF, buy("B", "2", "2"), buy("C", "3", "3"))
	f.purchase(t, farmF, buy("A", "4", "4"))
	ctx := context.Background()

	f.runner.failLine = broken.Lines[1].ID
	report, err := f.deletion.BulkDeletePurchases(ctx, actor, farmF)
	require.NoError(t, err)
	f.runner.failLine = ""

	assert.Equal(t, 2, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, broken.ID, failed[0].HeaderID)
	assert.Equal(t, 1, failed[0].LinesDeleted)
	assert.True(t, domain.IsRetryable(failed[0].Err))

	assert.Equal(t, []string{"A", "B", "C"}, report.MaterialIDs, "incluye los insumos de la cabecera fallida")
	require.NoError(t, report.Recompute.Err())
	assert.True(t, f.state(t, farmF, "A").SystemQuantity.IsZero())
	assert.True(t, f.state(t, farmF, "B").SystemQuantity.IsZero(), "la línea borrada ya se refleja")
	assert.True(t, dec("3").Equal(f.state(t, farmF, "C").SystemQuantity), "la línea que falló sigue contando")

	remaining, err := f.store.Repos().Purchases.ListByFarm(ctx, farmF)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, broken.ID, remaining[0].ID)
}

func TestBulkDeleteBatches_SinCabeceras(t *testing.T) {
	f := newFixture(t)

	report, err := f.deletion.BulkDeleteBatches(context.Background(), actor, farmF)
	require.NoError(t, err)
	assert.Empty(t, report.Items)
	assert.Empty(t, report.Recompute.Outcomes)
}

func TestDeletePurchase_FallaDeLineaYReintento(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "X")
	f.material(t, farmF, "Y")
	p := f.purchase(t, farmF, buy("X", "10", "3"), buy("Y", "5", "2"))
	ctx := context.Background()

	f.runner.failLine = p.Lines[1].ID
	res, err := f.deletion.DeletePurchase(ctx, actor, farmF, p.ID)
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	require.NotNil(t, res)
	assert.Equal(t, 1, res.LinesDeleted)
	assert.Equal(t, []string{"X", "Y"}, res.MaterialIDs)
	require.NoError(t, res.Recompute.Err())
	assert.True(t, f.state(t, farmF, "X").SystemQuantity.IsZero(), "la línea borrada ya se refleja")
	assert.True(t, dec("5").Equal(f.state(t, farmF, "Y").SystemQuantity))

	f.runner.failLine = ""
	_, err = f.deletion.DeletePurchase(ctx, actor, farmF, p.ID)
	require.NoError(t, err)

	for _, id := range []string{"X", "Y"} {
		st := f.state(t, farmF, id)
		assert.True(t, st.AccumulatedQuantity.IsZero(), id)
		assert.True(t, st.SystemQuantity.IsZero(), id)
		assert.True(t, st.AveragePrice.IsZero(), id)
	}
}

func TestDeletePurchase_FallaDeCabeceraYReintento(t *testing.T) {
	f := newFixture(t)
	f.material(t, farmF, "X")
	p := f.purchase(t, farmF, buy("X", "10", "3"))
	ctx := context.Background()

	f.runner.failHeader = p.ID
	res, err := f.deletion.DeletePurchase(ctx, actor, farmF, p.ID)
	require.Error(t, err)
	assert.Equal(t, 1, res.LinesDeleted)
	assert.True(t, f.state(t, farmF, "X").SystemQuantity.IsZero(), "recalculado aunque la cabecera siga")

	f.runner.failHeader = ""
	res, err = f.deletion.DeletePurchase(ctx, actor, farmF, p.ID)
	require.NoError(t, err)
	assert.Zero(t, res.LinesDeleted)

	st := f.state(t, farmF, "X")
	assert.True(t, st.AccumulatedQuantity.IsZero())
	assert.True(t, st.StockValue.IsZero())
	_, err = f.deletion.DeletePurchase(ctx, actor, farmF, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
