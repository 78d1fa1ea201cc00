package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/kitchenplan/pkg/application/services/delivery"
	"github.com/vsinha/kitchenplan/pkg/application/services/demand"
	"github.com/vsinha/kitchenplan/pkg/application/services/procurement"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/config"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/events"
	kitchencsv "github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/postgres"
)

// Repositories is the storage the services run on
type Repositories struct {
	Events         repositories.EventRepository
	Recipes        repositories.RecipeRepository
	Ingredients    repositories.IngredientRepository
	Suppliers      repositories.SupplierRepository
	PurchaseOrders repositories.PurchaseOrderRepository
}

// App wires configuration, storage and services for one process
type App struct {
	Config       *config.Config
	Log          logrus.FieldLogger
	Repos        Repositories
	EventStore   *events.Store
	Planner      *demand.Planner
	Estimator    *delivery.Estimator
	Orchestrator *procurement.Orchestrator

	pool *pgxpool.Pool
}

// NewApp builds the services over PostgreSQL when database.url is set,
// otherwise over in-memory stores filled from the CSV scenario directory
func NewApp(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		app.pool = pool
		store := postgres.NewStore(pool)
		app.Repos = Repositories{
			Events:         store.Events,
			Recipes:        store.Recipes,
			Ingredients:    store.Ingredients,
			Suppliers:      store.Suppliers,
			PurchaseOrders: store.PurchaseOrders,
		}
		log.Info("using PostgreSQL storage")
	} else {
		repos, err := loadMemoryRepositories(cfg.Scenario.Dir)
		if err != nil {
			return nil, err
		}
		app.Repos = *repos
		log.WithField("scenario", cfg.Scenario.Dir).Info("using in-memory storage")
	}

	policy, err := demand.ParseDirectLinePolicy(cfg.Planning.DirectLinePolicy)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.EventStore = events.NewStore(log, events.WithRetention(cfg.Events.Retention))
	app.EventStore.Subscribe(auditLogger(log), events.ProcurementTypes...)

	app.Planner = demand.NewPlannerWithConfig(demand.Config{
		DefaultSafetyBufferPct: cfg.Planning.DefaultBufferPct,
		DirectLinePolicy:       policy,
	}, app.Repos.Events, app.Repos.Recipes, app.Repos.Ingredients, log)

	app.Estimator = delivery.NewEstimator(app.Repos.Suppliers, log, delivery.WithLocation(cfg.Location()))

	app.Orchestrator = procurement.NewOrchestrator(
		app.Planner,
		app.Estimator,
		app.Repos.Ingredients,
		app.Repos.Suppliers,
		app.Repos.PurchaseOrders,
		log,
		procurement.WithPublisher(app.EventStore),
		procurement.WithMaxConcurrentGroups(cfg.Procurement.MaxConcurrentGroups),
	)

	return app, nil
}

// Close flushes event handlers and releases the database pool
func (a *App) Close() {
	if a.EventStore != nil {
		a.EventStore.Wait()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func loadMemoryRepositories(dir string) (*Repositories, error) {
	scenario, err := kitchencsv.NewLoader().LoadScenario(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	eventRepo := memory.NewEventRepository(len(scenario.Events))
	recipeRepo := memory.NewRecipeRepository(len(scenario.Recipes))
	ingredientRepo := memory.NewIngredientRepository(len(scenario.Ingredients))
	supplierRepo := memory.NewSupplierRepository()

	if err := eventRepo.LoadEvents(scenario.Events); err != nil {
		return nil, fmt.Errorf("error loading events: %w", err)
	}
	if err := recipeRepo.LoadRecipes(scenario.Recipes); err != nil {
		return nil, fmt.Errorf("error loading recipes: %w", err)
	}
	if err := ingredientRepo.LoadProductFamilies(scenario.Families); err != nil {
		return nil, fmt.Errorf("error loading product families: %w", err)
	}
	if err := ingredientRepo.LoadIngredients(scenario.Ingredients); err != nil {
		return nil, fmt.Errorf("error loading ingredients: %w", err)
	}
	if err := supplierRepo.LoadSuppliers(scenario.Suppliers); err != nil {
		return nil, fmt.Errorf("error loading suppliers: %w", err)
	}

	return &Repositories{
		Events:         eventRepo,
		Recipes:        recipeRepo,
		Ingredients:    ingredientRepo,
		Suppliers:      supplierRepo,
		PurchaseOrders: memory.NewPurchaseOrderRepository(),
	}, nil
}

func auditLogger(log logrus.FieldLogger) events.Handler {
	return events.HandlerFunc(func(e events.Event) error {
		log.WithFields(logrus.Fields{
			"event_id": e.EventID,
			"type":     e.Type,
			"sequence": e.Sequence,
		}).Debugf("procurement event: %+v", e.Payload)
		return nil
	})
}
