package web

import (
	"context"

	"github.com/minitienda/minitienda/internal/inventory"
)

type categoriesPage struct {
	Categories []inventory.Category
}

type providersPage struct {
	Providers []inventory.Provider
}

type productsPage struct {
	Products   []inventory.ProductView
	Categories []inventory.Category
	Providers  []inventory.Provider
}

func (s *Server) inventoryRoutes() {
	inv := s.deps.Inventory

	// Categories.
	s.loggedIn("GET /categories", mapResponse(s, s.categoriesPage).response(render[struct{}, categoriesPage]("categories")))
	{
		h := mapRequest(s, func(ctx context.Context, c inventory.Category) error {
			return inv.SaveCategory(ctx, &c)
		})
		h.response(redirect[inventory.Category, struct{}]("/categories", "Category saved."))
		h.failure(formFailure[inventory.Category, struct{}]("categories", s.categoriesPage))

		s.loggedIn("POST /categories", h)
	}
	{
		h := mapRequest(s, inv.DeleteCategory).request(pathIDRequest)
		h.response(redirect[int, struct{}]("/categories", "Category deleted."))
		h.failure(flashFailure[int, struct{}](inventory.ErrInUse, "/categories", "The category is still used by products."))

		s.loggedIn("POST /categories/{id}/delete", h)
	}

	// Providers.
	s.loggedIn("GET /providers", mapResponse(s, s.providersPage).response(render[struct{}, providersPage]("providers")))
	{
		h := mapRequest(s, func(ctx context.Context, p inventory.Provider) error {
			return inv.SaveProvider(ctx, &p)
		})
		h.response(redirect[inventory.Provider, struct{}]("/providers", "Provider saved."))
		h.failure(formFailure[inventory.Provider, struct{}]("providers", s.providersPage))

		s.loggedIn("POST /providers", h)
	}
	{
		h := mapRequest(s, inv.DeleteProvider).request(pathIDRequest)
		h.response(redirect[int, struct{}]("/providers", "Provider deleted."))
		h.failure(flashFailure[int, struct{}](inventory.ErrInUse, "/providers", "The provider still supplies products."))

		s.loggedIn("POST /providers/{id}/delete", h)
	}

	// Products.
	s.loggedIn("GET /products", mapResponse(s, s.productsPage).response(render[struct{}, productsPage]("products")))
	{
		h := mapRequest(s, func(ctx context.Context, p inventory.Product) error {
			return inv.SaveProduct(ctx, &p)
		})
		h.response(redirect[inventory.Product, struct{}]("/products", "Product saved."))
		h.failure(formFailure[inventory.Product, struct{}]("products", s.productsPage))

		s.loggedIn("POST /products", h)
	}
	{
		h := mapRequest(s, inv.DeleteProduct).request(pathIDRequest)
		h.response(redirect[int, struct{}]("/products", "Product deleted."))

		s.loggedIn("POST /products/{id}/delete", h)
	}
}

func (s *Server) categoriesPage(ctx context.Context) (categoriesPage, error) {
	categories, err := s.deps.Inventory.ListCategories(ctx)
	if err != nil {
		return categoriesPage{}, err
	}

	return categoriesPage{Categories: categories}, nil
}

func (s *Server) providersPage(ctx context.Context) (providersPage, error) {
	providers, err := s.deps.Inventory.ListProviders(ctx)
	if err != nil {
		return providersPage{}, err
	}

	return providersPage{Providers: providers}, nil
}

func (s *Server) productsPage(ctx context.Context) (productsPage, error) {
	products, err := s.deps.Inventory.ListProducts(ctx, nil)
	if err != nil {
		return productsPage{}, err
	}

	categories, err := s.deps.Inventory.ListCategories(ctx)
	if err != nil {
		return productsPage{}, err
	}

	providers, err := s.deps.Inventory.ListProviders(ctx)
	if err != nil {
		return productsPage{}, err
	}

	return productsPage{
		Products:   products,
		Categories: categories,
		Providers:  providers,
	}, nil
}
