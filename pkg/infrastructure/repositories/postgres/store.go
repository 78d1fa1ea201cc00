package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig holds connection pool settings
type PoolConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// NewPool opens and pings a connection pool
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Store bundles the repositories backed by one pool
type Store struct {
	Events         *EventRepository
	Recipes        *RecipeRepository
	Ingredients    *IngredientRepository
	Suppliers      *SupplierRepository
	PurchaseOrders *PurchaseOrderRepository
}

// NewStore creates all repositories over pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Events:         NewEventRepository(pool),
		Recipes:        NewRecipeRepository(pool),
		Ingredients:    NewIngredientRepository(pool),
		Suppliers:      NewSupplierRepository(pool),
		PurchaseOrders: NewPurchaseOrderRepository(pool),
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
