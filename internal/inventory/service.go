package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minitienda/minitienda/internal/errorz"
)

var (
	errNameRequired  = errors.New("name is required")
	errNegative      = errors.New("must not be negative")
	errNoSuchRecord  = errors.New("does not exist")
	errDuplicateName = errors.New("name is already used")
)

// Service manages categories, providers and products.
type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{
		store: s,
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.store.ListCategories(ctx)
}

// SaveCategory creates or updates a category. On creation the ID of c is set.
func (s *Service) SaveCategory(ctx context.Context, c *Category) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)

	if c.Name == "" {
		return errorz.InvalidInput{errorz.Keyed{Key: "Name", Err: errNameRequired}}
	}

	return s.inTx(ctx, func(tx Tx) error {
		return nameErr(tx.SaveCategory(c))
	})
}

// DeleteCategory deletes a category that no product refers to.
func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx Tx) error {
		err := s.ensureUnused(tx, &ProductFilter{CategoryIDs: []int{id}})
		if err != nil {
			return err
		}

		return inUseErr(tx.DeleteCategory(id))
	})
}

func (s *Service) ListProviders(ctx context.Context) ([]Provider, error) {
	return s.store.ListProviders(ctx)
}

// SaveProvider creates or updates a provider. On creation the ID of p is set.
func (s *Service) SaveProvider(ctx context.Context, p *Provider) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)

	if p.Name == "" {
		return errorz.InvalidInput{errorz.Keyed{Key: "Name", Err: errNameRequired}}
	}

	return s.inTx(ctx, func(tx Tx) error {
		return nameErr(tx.SaveProvider(p))
	})
}

// DeleteProvider deletes a provider that no product refers to.
func (s *Service) DeleteProvider(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx Tx) error {
		err := s.ensureUnused(tx, &ProductFilter{ProviderIDs: []int{id}})
		if err != nil {
			return err
		}

		return inUseErr(tx.DeleteProvider(id))
	})
}

// ListProducts lists products with their category and provider names.
// A nil filter lists all products.
func (s *Service) ListProducts(ctx context.Context, filter *ProductFilter) ([]ProductView, error) {
	return s.store.ListProducts(ctx, filter)
}

// SaveProduct creates or updates a product. On creation the ID of p is set.
// The category and provider must exist.
func (s *Service) SaveProduct(ctx context.Context, p *Product) error {
	p.Name = strings.TrimSpace(p.Name)

	var invalid errorz.InvalidInput
	if p.Name == "" {
		invalid = append(invalid, errorz.Keyed{Key: "Name", Err: errNameRequired})
	}
	if p.PriceCents < 0 {
		invalid = append(invalid, errorz.Keyed{Key: "Price", Err: errNegative})
	}
	if p.Stock < 0 {
		invalid = append(invalid, errorz.Keyed{Key: "Stock", Err: errNegative})
	}
	if len(invalid) > 0 {
		return invalid
	}

	return s.inTx(ctx, func(tx Tx) error {
		err := tx.SaveProduct(p)
		if errors.Is(err, errorz.ErrConstraintViolated) {
			return errorz.InvalidInput{
				errorz.Keyed{Key: "Category", Err: fmt.Errorf("category or provider %w", errNoSuchRecord)},
			}
		}
		return err
	})
}

func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx Tx) error {
		return tx.DeleteProduct(id)
	})
}

func (s *Service) ensureUnused(tx Tx, filter *ProductFilter) error {
	n, err := tx.CountProducts(filter)
	if err != nil {
		return err
	}

	if n > 0 {
		return fmt.Errorf("%w by %d products", ErrInUse, n)
	}

	return nil
}

// nameErr reports unique name violations as invalid input.
func nameErr(err error) error {
	if errors.Is(err, errorz.ErrConstraintViolated) {
		return errorz.InvalidInput{errorz.Keyed{Key: "Name", Err: errDuplicateName}}
	}
	return err
}

// inUseErr reports foreign key violations on delete as ErrInUse.
func inUseErr(err error) error {
	if errors.Is(err, errorz.ErrConstraintViolated) {
		return errors.Join(ErrInUse, err)
	}
	return err
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	return tx.Commit()
}
