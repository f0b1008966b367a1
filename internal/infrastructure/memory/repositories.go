package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.ReportRepository   = (*ReportRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx *state
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.s.access(r.tx, func(st *state) error {
		if !st.hasCategory(product.Category) {
			return domain.ErrUnknownCategory
		}
		st.nextProduct++
		product.ID = st.nextProduct
		st.products[product.ID] = *product
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.access(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el almacén en exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) (bool, error) {
	found := false
	err := r.s.access(r.tx, func(st *state) error {
		current, ok := st.products[product.ID]
		if !ok {
			return nil
		}
		if !st.hasCategory(product.Category) {
			return domain.ErrUnknownCategory
		}
		found = true
		product.CreatedAt = current.CreatedAt
		st.products[product.ID] = *product
		return nil
	})
	return found, err
}

func (r *ProductRepo) UpdateQuantity(_ context.Context, id int64, quantity int, updatedAt time.Time) error {
	return r.s.access(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Quantity = quantity
		p.UpdatedAt = updatedAt
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	err := r.s.access(r.tx, func(st *state) error {
		list = snapshotProducts(st)
		sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
		return nil
	})
	return list, err
}

func (r *ProductRepo) ListByName(_ context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	err := r.s.access(r.tx, func(st *state) error {
		list = snapshotProducts(st)
		sort.Slice(list, func(i, j int) bool {
			if list[i].Name == list[j].Name {
				return list[i].ID < list[j].ID
			}
			return list[i].Name < list[j].Name
		})
		return nil
	})
	return list, err
}

func (r *ProductRepo) CountByCategory(_ context.Context, category string) (int, error) {
	n := 0
	err := r.s.access(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.Category == category {
				n++
			}
		}
		return nil
	})
	return n, err
}

// Delete respeta la restricción de clave foránea de movements.
func (r *ProductRepo) Delete(_ context.Context, id int64) (bool, error) {
	found := false
	err := r.s.access(r.tx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return nil
		}
		for _, m := range st.movements {
			if m.ProductID == id {
				return domain.ErrProductHasMovements
			}
		}
		found = true
		delete(st.products, id)
		return nil
	})
	return found, err
}

func snapshotProducts(st *state) []*entity.Product {
	list := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		p := p
		list = append(list, &p)
	}
	return list
}

// CategoryRepo categorías en memoria. Name es único.
type CategoryRepo struct {
	s *Store
}

func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	return r.s.access(nil, func(st *state) error {
		for _, c := range st.categories {
			if c.Name == category.Name {
				return domain.ErrDuplicateCategory
			}
		}
		st.nextCategory++
		category.ID = st.nextCategory
		st.categories[category.ID] = *category
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.access(nil, func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.access(nil, func(st *state) error {
		for _, c := range st.categories {
			if c.Name == name {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var list []*entity.Category
	err := r.s.access(nil, func(st *state) error {
		list = make([]*entity.Category, 0, len(st.categories))
		for _, c := range st.categories {
			c := c
			list = append(list, &c)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		return nil
	})
	return list, err
}

// Delete respeta la clave foránea products.category: con productos que la
// referencian devuelve ErrCategoryInUse.
func (r *CategoryRepo) Delete(_ context.Context, id int64) (bool, error) {
	found := false
	err := r.s.access(nil, func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return nil
		}
		for _, p := range st.products {
			if p.Category == c.Name {
				return domain.ErrCategoryInUse
			}
		}
		found = true
		delete(st.categories, id)
		return nil
	})
	return found, err
}

// MovementRepo movimientos en memoria.
type MovementRepo struct {
	s  *Store
	tx *state
}

func (r *MovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	return r.s.access(r.tx, func(st *state) error {
		if _, ok := st.products[movement.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		st.nextMovement++
		movement.ID = st.nextMovement
		st.movements[movement.ID] = *movement
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.s.access(r.tx, func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) Delete(_ context.Context, id int64) error {
	return r.s.access(r.tx, func(st *state) error {
		if _, ok := st.movements[id]; !ok {
			return domain.ErrMovementNotFound
		}
		delete(st.movements, id)
		return nil
	})
}

func (r *MovementRepo) ListRecent(_ context.Context, limit int) ([]*entity.MovementView, error) {
	var list []*entity.MovementView
	err := r.s.access(r.tx, func(st *state) error {
		list = movementViews(st, func(entity.Movement) bool { return true }, limit)
		return nil
	})
	return list, err
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID int64, limit int) ([]*entity.MovementView, error) {
	var list []*entity.MovementView
	err := r.s.access(r.tx, func(st *state) error {
		list = movementViews(st, func(m entity.Movement) bool { return m.ProductID == productID }, limit)
		return nil
	})
	return list, err
}

func (r *MovementRepo) CountByProduct(_ context.Context, productID int64) (int, error) {
	n := 0
	err := r.s.access(r.tx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func movementViews(st *state, keep func(entity.Movement) bool, limit int) []*entity.MovementView {
	list := make([]*entity.MovementView, 0)
	for _, m := range st.movements {
		if !keep(m) {
			continue
		}
		list = append(list, &entity.MovementView{Movement: m, ProductName: st.products[m.ProductID].Name})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// ReportRepo agregaciones calculadas sobre el estado confirmado.
type ReportRepo struct {
	s *Store
}

func (r *ReportRepo) ValueByCategory(_ context.Context) ([]entity.CategoryValue, error) {
	var out []entity.CategoryValue
	err := r.s.access(nil, func(st *state) error {
		byName := make(map[string]*entity.CategoryValue)
		for _, p := range st.products {
			row, ok := byName[p.Category]
			if !ok {
				row = &entity.CategoryValue{Category: p.Category, TotalValue: decimal.Zero}
				byName[p.Category] = row
			}
			row.ProductCount++
			row.TotalQuantity += int64(p.Quantity)
			row.TotalValue = row.TotalValue.Add(p.Value())
		}
		out = make([]entity.CategoryValue, 0, len(byName))
		for _, row := range byName {
			out = append(out, *row)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
		return nil
	})
	return out, err
}

func (r *ReportRepo) Summary(_ context.Context, lowStockThreshold int) (*entity.StockSummary, error) {
	sum := &entity.StockSummary{TotalValue: decimal.Zero}
	err := r.s.access(nil, func(st *state) error {
		for _, p := range st.products {
			sum.TotalProducts++
			sum.TotalQuantity += int64(p.Quantity)
			sum.TotalValue = sum.TotalValue.Add(p.Value())
			switch {
			case p.Quantity == 0:
				sum.OutOfStock++
			case p.Quantity <= lowStockThreshold:
				sum.LowStock++
			}
		}
		return nil
	})
	return sum, err
}
