// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa con STORE_DRIVER=memory y en las pruebas.
//
// Las transacciones trabajan sobre una copia del estado bajo el mutex del
// almacén y solo la publican si el callback termina sin error, por lo que un
// fallo nunca deja cambios parciales y las transacciones quedan serializadas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products   map[int64]entity.Product
	categories map[int64]entity.Category
	movements  map[int64]entity.Movement

	nextProduct  int64
	nextCategory int64
	nextMovement int64
}

func newState() *state {
	return &state{
		products:   make(map[int64]entity.Product),
		categories: make(map[int64]entity.Category),
		movements:  make(map[int64]entity.Movement),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:     make(map[int64]entity.Product, len(s.products)),
		categories:   make(map[int64]entity.Category, len(s.categories)),
		movements:    make(map[int64]entity.Movement, len(s.movements)),
		nextProduct:  s.nextProduct,
		nextCategory: s.nextCategory,
		nextMovement: s.nextMovement,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.movements {
		if v.UnitPrice != nil {
			price := *v.UnitPrice
			v.UnitPrice = &price
		}
		c.movements[k] = v
	}
	return c
}

// hasCategory indica si name es vacío (sin categoría) o una categoría registrada.
func (s *state) hasCategory(name string) bool {
	if name == "" {
		return true
	}
	for _, c := range s.categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Store almacén en memoria.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Available siempre es true: no hay conexión que pueda caerse.
func (s *Store) Available() bool { return true }

// access ejecuta fn sobre el estado. Dentro de una transacción tx ya está
// protegido por el mutex; fuera de ella se toma el mutex para esta operación.
func (s *Store) access(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Run ejecuta fn con repositorios atados a una copia del estado y la confirma si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&MovementRepo{s: s, tx: work}, &ProductRepo{s: s, tx: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Reports consultas de reporte.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }
