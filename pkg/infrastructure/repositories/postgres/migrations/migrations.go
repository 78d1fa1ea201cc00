package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

//go:embed *.sql
var migrations embed.FS

type embedFSDriver struct {
	httpfs.PartialDriver
}

func init() {
	source.Register("embed", &embedFSDriver{})
}

func (d *embedFSDriver) Open(rawURL string) (source.Driver, error) {
	err := d.PartialDriver.Init(http.FS(migrations), ".")
	if err != nil {
		return nil, err
	}

	return d, nil
}

// logAdapter routes migrate's output to logrus
type logAdapter struct {
	log logrus.FieldLogger
}

func (l logAdapter) Printf(format string, v ...any) {
	l.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l logAdapter) Verbose() bool {
	return false
}

func newMigrator(dsn string, log logrus.FieldLogger) (*migrate.Migrate, func(), error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open DB: %w", err)
	}

	d, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("create driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("embed://", "postgres", d)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	if log != nil {
		m.Log = logAdapter{log: log.WithField("component", "migrations")}
	}

	return m, func() { m.Close() }, nil
}

// Migrate applies every pending up migration
func Migrate(dsn string, log logrus.FieldLogger) error {
	m, closeFn, err := newMigrator(dsn, log)
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// Rollback reverts the given number of migrations
func Rollback(dsn string, steps int, log logrus.FieldLogger) error {
	m, closeFn, err := newMigrator(dsn, log)
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Steps(-steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback: %w", err)
	}

	return nil
}

// Version returns the applied schema version and whether it is dirty
func Version(dsn string) (uint, bool, error) {
	m, closeFn, err := newMigrator(dsn, nil)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("version: %w", err)
	}
	return version, dirty, nil
}
