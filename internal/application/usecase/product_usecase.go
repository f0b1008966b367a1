package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock cambia vía movimientos;
// la cantidad enviada en una edición es una corrección directa.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	movRepo      repository.MovementRepository
	now          func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	movRepo repository.MovementRepository,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, movRepo: movRepo, now: time.Now}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	in = normalizeProduct(in)
	if err := uc.validate(ctx, in); err != nil {
		return nil, err
	}
	now := uc.now()
	product := &entity.Product{
		Code:      in.Code,
		Name:      in.Name,
		Category:  in.Category,
		Quantity:  in.Quantity,
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// List lista los productos, más recientes primero.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Update reemplaza todos los campos editables del producto.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.ProductRequest) (*dto.ProductResponse, error) {
	in = normalizeProduct(in)
	if err := uc.validate(ctx, in); err != nil {
		return nil, err
	}
	product := &entity.Product{
		ID:        id,
		Code:      in.Code,
		Name:      in.Name,
		Category:  in.Category,
		Quantity:  in.Quantity,
		Price:     in.Price,
		UpdatedAt: uc.now(),
	}
	found, err := uc.repo.Update(ctx, product)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// Delete elimina un producto sin movimientos.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	n, err := uc.movRepo.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrProductHasMovements
	}
	found, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrProductNotFound
	}
	return nil
}

// validate revisa campos y que la categoría exista. Un borrado concurrente de la
// categoría lo detecta el repositorio al insertar (ErrUnknownCategory).
func (uc *ProductUseCase) validate(ctx context.Context, in dto.ProductRequest) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("el nombre es requerido: %w", domain.ErrInvalidInput)
	case in.Code == "":
		return fmt.Errorf("el código es requerido: %w", domain.ErrInvalidInput)
	case in.Quantity < 0 || in.Quantity > ledger.MaxQuantity:
		return fmt.Errorf("la cantidad debe estar entre 0 y %d: %w", ledger.MaxQuantity, domain.ErrInvalidInput)
	case in.Price.IsNegative():
		return fmt.Errorf("el precio no puede ser negativo: %w", domain.ErrInvalidInput)
	}
	if in.Category == "" {
		return nil
	}
	c, err := uc.categoryRepo.GetByName(ctx, in.Category)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrUnknownCategory
	}
	return nil
}

func normalizeProduct(in dto.ProductRequest) dto.ProductRequest {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Category:  p.Category,
		Quantity:  p.Quantity,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
