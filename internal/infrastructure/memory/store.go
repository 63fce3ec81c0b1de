// Package memory implementa los puertos del libro en memoria (tests y LEDGER_STORE=memory).
package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

// dataset contenido completo del almacén. Se clona al abrir una transacción
// y el clon reemplaza al original en el commit.
type dataset struct {
	materials        map[string]entity.Material
	purchases        map[string]entity.Purchase // sin líneas
	purchaseLines    map[string]entity.PurchaseLine
	batches          map[string]entity.Batch // sin líneas
	consumptionLines map[string]entity.ConsumptionLine
	states           map[string]entity.InventoryState // clave finca:insumo
	seq              int64                            // orden de inserción de líneas
	lineSeq          map[string]int64
}

func newDataset() *dataset {
	return &dataset{
		materials:        make(map[string]entity.Material),
		purchases:        make(map[string]entity.Purchase),
		purchaseLines:    make(map[string]entity.PurchaseLine),
		batches:          make(map[string]entity.Batch),
		consumptionLines: make(map[string]entity.ConsumptionLine),
		states:           make(map[string]entity.InventoryState),
		lineSeq:          make(map[string]int64),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.materials {
		c.materials[k] = v
	}
	for k, v := range d.purchases {
		c.purchases[k] = v
	}
	for k, v := range d.purchaseLines {
		c.purchaseLines[k] = v
	}
	for k, v := range d.batches {
		c.batches[k] = v
	}
	for k, v := range d.consumptionLines {
		c.consumptionLines[k] = v
	}
	for k, v := range d.states {
		c.states[k] = v
	}
	for k, v := range d.lineSeq {
		c.lineSeq[k] = v
	}
	c.seq = d.seq
	return c
}

func (d *dataset) nextSeq(id string) {
	d.seq++
	d.lineSeq[id] = d.seq
}

// sortedPurchaseLines filtra y ordena por orden de inserción.
func (d *dataset) sortedPurchaseLines(keep func(entity.PurchaseLine) bool) []entity.PurchaseLine {
	var out []entity.PurchaseLine
	for _, l := range d.purchaseLines {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return d.lineSeq[out[i].ID] < d.lineSeq[out[j].ID] })
	return out
}

func (d *dataset) sortedConsumptionLines(keep func(entity.ConsumptionLine) bool) []entity.ConsumptionLine {
	var out []entity.ConsumptionLine
	for _, l := range d.consumptionLines {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return d.lineSeq[out[i].ID] < d.lineSeq[out[j].ID] })
	return out
}

func stateKey(farmID, materialID string) string {
	return farmID + ":" + materialID
}

// Store almacén en memoria compartido por los repositorios.
// Una transacción retiene mu de principio a fin: las transacciones quedan serializadas.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// access cómo un repositorio llega al dataset: con candado propio (fuera de tx)
// o directo sobre el clon de la transacción en curso.
type access interface {
	with(fn func(d *dataset) error) error
}

type lockedAccess struct{ s *Store }

func (a lockedAccess) with(fn func(d *dataset) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.data)
}

type directAccess struct{ d *dataset }

func (a directAccess) with(fn func(d *dataset) error) error {
	return fn(a.d)
}
