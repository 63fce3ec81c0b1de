package memory

import (
	"context"

	"github.com/jhoicas/agro-ledger/internal/application/ledger"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones sobre el Store: fn trabaja con un clon y solo un nil lo publica.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repos atados a la transacción. Los repos no deben usarse fuera de fn.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ledger.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.data.clone()
	if err := fn(newRepos(directAccess{d: work})); err != nil {
		return err
	}
	r.store.data = work
	return nil
}

// Repos repositorios fuera de transacción; cada operación toma el candado del Store.
func (s *Store) Repos() ledger.TxRepos {
	return newRepos(lockedAccess{s: s})
}

func newRepos(a access) ledger.TxRepos {
	return ledger.TxRepos{
		Materials: &MaterialRepo{a: a},
		Purchases: &PurchaseRepo{a: a},
		Batches:   &BatchRepo{a: a},
		States:    &InventoryStateRepo{a: a},
	}
}
