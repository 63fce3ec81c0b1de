package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
	"github.com/jhoicas/agro-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/agro-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

const farmF = "farm-F"

var actor = ledger.Actor{UserID: "user-1", IPAddress: "127.0.0.1", UserAgent: "go-test"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// faultyRunner envuelve el TxRunner en memoria e inyecta fallas transitorias por insumo, línea o cabecera.
type faultyRunner struct {
	inner        ledger.TxRunner
	failMaterial string
	failLine     string
	failHeader   string
}

func (f *faultyRunner) Run(ctx context.Context, fn func(ledger.TxRepos) error) error {
	return f.inner.Run(ctx, func(r ledger.TxRepos) error {
		r.Purchases = faultyPurchases{PurchaseRepository: r.Purchases, f: f}
		return fn(r)
	})
}

type faultyPurchases struct {
	repository.PurchaseRepository
	f *faultyRunner
}

var errConnReset = errors.New("conexión reiniciada por el servidor")

func (p faultyPurchases) ListLinesByMaterial(ctx context.Context, farmID, materialID string) ([]entity.PurchaseLine, error) {
	if materialID == p.f.failMaterial {
		return nil, &domain.TransientError{Op: "list purchase lines", Err: errConnReset}
	}
	return p.PurchaseRepository.ListLinesByMaterial(ctx, farmID, materialID)
}

func (p faultyPurchases) DeleteLine(ctx context.Context, lineID string) (bool, error) {
	if lineID == p.f.failLine {
		return false, &domain.TransientError{Op: "delete purchase line", Err: errConnReset}
	}
	return p.PurchaseRepository.DeleteLine(ctx, lineID)
}

func (p faultyPurchases) DeleteHeader(ctx context.Context, id string) (bool, error) {
	if id == p.f.failHeader {
		return false, &domain.TransientError{Op: "delete purchase", Err: errConnReset}
	}
	return p.PurchaseRepository.DeleteHeader(ctx, id)
}

type fixture struct {
	store     *memory.Store
	runner    *faultyRunner
	auditRepo *memory.AuditRepo
	auditLog  *audit.Logger
	orch      *ledger.Orchestrator
	creation  *ledger.CreationUseCase
	deletion  *ledger.DeletionUseCase
	inventory *ledger.InventoryUseCase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithAudit(t, nil)
}

// newFixtureWithAudit auditRepo nil usa el repositorio en memoria.
func newFixtureWithAudit(t *testing.T, auditRepo repository.AuditRepository) *fixture {
	t.Helper()
	log := logger.NewNop()
	store := memory.NewStore()
	memAudit := memory.NewAuditRepository()
	if auditRepo == nil {
		auditRepo = memAudit
	}
	auditLog := audit.NewLogger(auditRepo, audit.Config{Enabled: true}, log)
	t.Cleanup(auditLog.Wait)

	runner := &faultyRunner{inner: memory.NewTxRunner(store)}
	orch := ledger.NewOrchestrator(runner, lock.NewLocalLocker(), log, 4)
	repos := store.Repos()
	return &fixture{
		store:     store,
		runner:    runner,
		auditRepo: memAudit,
		auditLog:  auditLog,
		orch:      orch,
		creation:  ledger.NewCreationUseCase(runner, orch, auditLog, log),
		deletion:  ledger.NewDeletionUseCase(runner, orch, auditLog, log),
		inventory: ledger.NewInventoryUseCase(repos.States, repos.Materials, orch, auditLog, log),
	}
}

func (f *fixture) material(t *testing.T, farmID, id string) {
	t.Helper()
	require.NoError(t, f.store.Repos().Materials.Create(context.Background(), &entity.Material{
		ID: id, FarmID: farmID, Code: id, Name: id, Unit: "kg",
	}))
}

func (f *fixture) purchase(t *testing.T, farmID string, lines ...ledger.PurchaseLineInput) *entity.Purchase {
	t.Helper()
	res, err := f.creation.RecordPurchase(context.Background(), actor, ledger.CreatePurchaseInput{FarmID: farmID, Lines: lines})
	require.NoError(t, err)
	return res.Purchase
}

func (f *fixture) batch(t *testing.T, farmID string, lines ...ledger.ConsumptionLineInput) *entity.Batch {
	t.Helper()
	res, err := f.creation.RecordBatch(context.Background(), actor, ledger.CreateBatchInput{FarmID: farmID, Lines: lines})
	require.NoError(t, err)
	return res.Batch
}

func (f *fixture) state(t *testing.T, farmID, materialID string) *entity.InventoryState {
	t.Helper()
	st, err := f.inventory.GetState(context.Background(), farmID, materialID)
	require.NoError(t, err)
	return st
}

func (f *fixture) auditRecords(t *testing.T, filter repository.AuditFilter) []*entity.AuditRecord {
	t.Helper()
	f.auditLog.Wait()
	if filter.Limit == 0 {
		filter.Limit = 1000
	}
	list, err := f.auditRepo.List(context.Background(), filter)
	require.NoError(t, err)
	return list
}

func buy(materialID, qty, price string) ledger.PurchaseLineInput {
	return ledger.PurchaseLineInput{MaterialID: materialID, Quantity: dec(qty), UnitPrice: dec(price)}
}

func use(materialID, qty string) ledger.ConsumptionLineInput {
	return ledger.ConsumptionLineInput{MaterialID: materialID, Quantity: dec(qty)}
}

func purchaseInput(lines ...ledger.PurchaseLineInput) ledger.CreatePurchaseInput {
	return ledger.CreatePurchaseInput{FarmID: farmF, Reference: "FAC-001", Lines: lines}
}

// batchInput consume una unidad de cada insumo.
func batchInput(materialIDs ...string) ledger.CreateBatchInput {
	in := ledger.CreateBatchInput{FarmID: farmF, Code: "L-001"}
	for _, id := range materialIDs {
		in.Lines = append(in.Lines, use(id, "1"))
	}
	return in
}
