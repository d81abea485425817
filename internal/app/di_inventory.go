package app

import (
	"fmt"

	inventoryHTTP "github.com/allisson/storesync/internal/inventory/http"
	inventoryRepository "github.com/allisson/storesync/internal/inventory/repository"
	inventoryUseCase "github.com/allisson/storesync/internal/inventory/usecase"
)

// PackRepository returns the pack repository.
func (c *Container) PackRepository() (*inventoryRepository.PackRepository, error) {
	c.packRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["packRepository"] = fmt.Errorf("failed to get database for pack repository: %w", err)
			return
		}
		c.packRepository = inventoryRepository.NewPackRepository(db, c.Dialect())
	})
	if storedErr, exists := c.initErrors["packRepository"]; exists {
		return nil, storedErr
	}
	return c.packRepository, nil
}

// GameRepository returns the game repository.
func (c *Container) GameRepository() (*inventoryRepository.GameRepository, error) {
	c.gameRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["gameRepository"] = fmt.Errorf("failed to get database for game repository: %w", err)
			return
		}
		c.gameRepository = inventoryRepository.NewGameRepository(db, c.Dialect())
	})
	if storedErr, exists := c.initErrors["gameRepository"]; exists {
		return nil, storedErr
	}
	return c.gameRepository, nil
}

// PackUseCase returns the pack lifecycle use case, instrumented with business metrics.
func (c *Container) PackUseCase() (inventoryUseCase.PackUseCase, error) {
	var err error
	c.packUseCaseInit.Do(func() {
		c.packUseCase, err = c.initPackUseCase()
		if err != nil {
			c.initErrors["packUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["packUseCase"]; exists {
		return nil, storedErr
	}
	return c.packUseCase, nil
}

// PackHandler returns the HTTP handler for pack routes.
func (c *Container) PackHandler() (*inventoryHTTP.PackHandler, error) {
	useCase, err := c.PackUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get pack use case for pack handler: %w", err)
	}
	return inventoryHTTP.NewPackHandler(useCase, c.Logger()), nil
}

// initPackUseCase creates the pack use case. Activations are counted on the current
// business day through the day close use case.
func (c *Container) initPackUseCase() (inventoryUseCase.PackUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for pack use case: %w", err)
	}

	packs, err := c.PackRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get pack repository for pack use case: %w", err)
	}

	games, err := c.GameRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get game repository for pack use case: %w", err)
	}

	store, err := c.OutboxStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox store for pack use case: %w", err)
	}

	dayClose, err := c.DayCloseUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get day close use case for pack use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for pack use case: %w", err)
	}

	resolver := inventoryUseCase.NewCollisionResolver(packs, games, store, c.Logger())
	useCase := inventoryUseCase.NewPackUseCase(
		txManager,
		packs,
		games,
		resolver,
		store,
		dayClose,
		c.Logger(),
	)
	return inventoryUseCase.NewPackUseCaseWithMetrics(useCase, businessMetrics), nil
}
