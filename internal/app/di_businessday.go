package app

import (
	"fmt"

	businessDayHTTP "github.com/allisson/storesync/internal/businessday/http"
	businessDayRepository "github.com/allisson/storesync/internal/businessday/repository"
	businessDayUseCase "github.com/allisson/storesync/internal/businessday/usecase"
)

// BusinessDayRepository returns the business day repository.
func (c *Container) BusinessDayRepository() (*businessDayRepository.BusinessDayRepository, error) {
	c.dayRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["businessDayRepository"] = fmt.Errorf(
				"failed to get database for business day repository: %w",
				err,
			)
			return
		}
		c.businessDayRepository = businessDayRepository.NewBusinessDayRepository(db, c.Dialect())
	})
	if storedErr, exists := c.initErrors["businessDayRepository"]; exists {
		return nil, storedErr
	}
	return c.businessDayRepository, nil
}

// DayCloseUseCase returns the day close coordinator, instrumented with business metrics.
func (c *Container) DayCloseUseCase() (businessDayUseCase.DayCloseUseCase, error) {
	var err error
	c.dayCloseUseCaseInit.Do(func() {
		c.dayCloseUseCase, err = c.initDayCloseUseCase()
		if err != nil {
			c.initErrors["dayCloseUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dayCloseUseCase"]; exists {
		return nil, storedErr
	}
	return c.dayCloseUseCase, nil
}

// BusinessDayHandler returns the HTTP handler for business day routes.
func (c *Container) BusinessDayHandler() (*businessDayHTTP.BusinessDayHandler, error) {
	useCase, err := c.DayCloseUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get day close use case for business day handler: %w", err)
	}
	return businessDayHTTP.NewBusinessDayHandler(useCase, c.Logger()), nil
}

// initDayCloseUseCase creates the day close use case.
func (c *Container) initDayCloseUseCase() (businessDayUseCase.DayCloseUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for day close use case: %w", err)
	}

	days, err := c.BusinessDayRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get business day repository for day close use case: %w", err)
	}

	packs, err := c.PackRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get pack repository for day close use case: %w", err)
	}

	games, err := c.GameRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get game repository for day close use case: %w", err)
	}

	store, err := c.OutboxStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox store for day close use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for day close use case: %w", err)
	}

	useCase := businessDayUseCase.NewDayCloseUseCase(
		txManager,
		days,
		packs,
		games,
		store,
		c.config.DayCloseLeaseTTL,
		c.Logger(),
	)
	return businessDayUseCase.NewDayCloseUseCaseWithMetrics(useCase, businessMetrics), nil
}
