package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const cacheWriteTimeout = 500 * time.Millisecond

// CatalogUseCase читает каталог внешнего бэкенда через кэш.
type CatalogUseCase struct {
	catalog   CatalogService
	cacheRepo CacheRepository
	logger    logger.Logger
}

func NewCatalogUC(catalog CatalogService, cacheRepo CacheRepository, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		catalog:   catalog,
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

// ListProducts возвращает товары по фильтру. Категория "all" равна отсутствию фильтра.
func (c *CatalogUseCase) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	const op = "CatalogUseCase.ListProducts"

	filter = filter.Normalize()

	if c.cacheRepo != nil {
		products, found, err := c.cacheRepo.GetProductList(ctx, filter)
		if err != nil {
			c.logger.Warnf("catalog cache read failed: %v", e.Wrap(op, err))
		} else if found {
			return products, nil
		}
	}

	products, err := c.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Фоновое добавление списка и самих товаров в кэш
	c.background(op, func(bgCtx context.Context) error {
		if err := c.cacheRepo.SetProductList(bgCtx, filter, products); err != nil {
			return err
		}
		return c.cacheRepo.SetProducts(bgCtx, products)
	})

	return products, nil
}

// GetProduct возвращает товар по идентификатору, сначала из кэша.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "CatalogUseCase.GetProduct"

	if id == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	if c.cacheRepo != nil {
		cached, err := c.cacheRepo.GetProducts(ctx, []string{id})
		if err != nil {
			c.logger.Warnf("catalog cache read failed: %v", e.Wrap(op, err))
		} else if product, ok := cached[id]; ok {
			return &product, nil
		}
	}

	product, err := c.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	fetched := *product
	c.background(op, func(bgCtx context.Context) error {
		return c.cacheRepo.SetProducts(bgCtx, []domain.Product{fetched})
	})

	return product, nil
}

// ListCategories возвращает категории с количеством товаров.
func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CatalogUseCase.ListCategories"

	if c.cacheRepo != nil {
		categories, found, err := c.cacheRepo.GetCategories(ctx)
		if err != nil {
			c.logger.Warnf("catalog cache read failed: %v", e.Wrap(op, err))
		} else if found {
			return categories, nil
		}
	}

	categories, err := c.catalog.ListCategories(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.background(op, func(bgCtx context.Context) error {
		return c.cacheRepo.SetCategories(bgCtx, categories)
	})

	return categories, nil
}

// Browse загружает товары и категории параллельно.
func (c *CatalogUseCase) Browse(ctx context.Context, filter ProductFilter) (*CatalogPage, error) {
	const op = "CatalogUseCase.Browse"

	page := &CatalogPage{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := c.ListProducts(gCtx, filter)
		if err != nil {
			return err
		}
		page.Products = products
		return nil
	})

	g.Go(func() error {
		categories, err := c.ListCategories(gCtx)
		if err != nil {
			return err
		}
		page.Categories = categories
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return page, nil
}

// background выполняет запись в кэш вне запроса.
func (c *CatalogUseCase) background(op string, fn func(ctx context.Context) error) {
	if c.cacheRepo == nil {
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := fn(bgCtx); err != nil {
			c.logger.Warnf("Failed to cache catalog in background: %v", e.Wrap(op, err))
		}
	}()
}
