package delivery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

var (
	// ErrSupplierNotFound matches repositories.ErrNotFound with errors.Is
	ErrSupplierNotFound = fmt.Errorf("supplier %w", repositories.ErrNotFound)
	// ErrNoDeliveryDays is returned when a supplier has no valid delivery weekday
	ErrNoDeliveryDays = errors.New("supplier has no valid delivery days")
)

// Estimator computes delivery dates from supplier lead time, cutoff and delivery days
type Estimator struct {
	suppliers repositories.SupplierRepository
	location  *time.Location
	now       func() time.Time
	log       logrus.FieldLogger
}

// Option configures an Estimator
type Option func(*Estimator)

// WithLocation sets the calendar used for suppliers without a timezone
func WithLocation(loc *time.Location) Option {
	return func(e *Estimator) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEstimator creates an estimator reading suppliers from the given repository
func NewEstimator(suppliers repositories.SupplierRepository, log logrus.FieldLogger, opts ...Option) *Estimator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Estimator{
		suppliers: suppliers,
		location:  time.UTC,
		now:       time.Now,
		log:       log.WithField("component", "delivery_estimator"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the estimator's current time
func (e *Estimator) Now() time.Time {
	return e.now()
}

// EstimateDeliveryDate loads the supplier and estimates delivery for an order placed at orderInstant.
// A zero orderInstant means now.
func (e *Estimator) EstimateDeliveryDate(ctx context.Context, supplierID string, orderInstant time.Time) (time.Time, error) {
	supplier, err := e.suppliers.GetSupplier(ctx, supplierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrSupplierNotFound, supplierID)
		}
		return time.Time{}, fmt.Errorf("failed to load supplier %s: %w", supplierID, err)
	}
	return e.EstimateForSupplier(supplier, orderInstant)
}

// EstimateForSupplier estimates delivery for an already loaded supplier
func (e *Estimator) EstimateForSupplier(supplier *entities.Supplier, orderInstant time.Time) (time.Time, error) {
	if orderInstant.IsZero() {
		orderInstant = e.now()
	}

	loc, err := e.supplierLocation(supplier)
	if err != nil {
		return time.Time{}, err
	}

	delivery, err := Estimate(supplier.LeadTimeDays, supplier.CutOffTime, supplier.DeliveryDays, orderInstant.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("supplier %s: %w", supplier.ID, err)
	}

	e.log.WithFields(logrus.Fields{
		"supplier_id":   supplier.ID,
		"order_instant": orderInstant.Format(time.RFC3339),
		"delivery_date": delivery.Format(time.DateOnly),
	}).Debug("estimated delivery date")

	return delivery, nil
}

func (e *Estimator) supplierLocation(supplier *entities.Supplier) (*time.Location, error) {
	if supplier.Timezone == "" {
		return e.location, nil
	}
	loc, err := time.LoadLocation(supplier.Timezone)
	if err != nil {
		return nil, fmt.Errorf("supplier %s has invalid timezone %q: %w", supplier.ID, supplier.Timezone, err)
	}
	return loc, nil
}

// IsDeliveryDayToday reports whether the estimator's today is one of days
func (e *Estimator) IsDeliveryDayToday(days []entities.Weekday) bool {
	return IsDeliveryDay(days, e.now().In(e.location))
}

// Estimate returns midnight of the delivery date for an order placed at orderInstant,
// in orderInstant's location.
//
// The start date rolls to the next calendar day when orderInstant is at or after the
// cutoff. Lead time then advances over business days only (Saturday and Sunday never
// count), after which the date moves forward until it falls on a delivery day.
func Estimate(leadTimeDays int, cutOff *entities.TimeOfDay, deliveryDays []entities.Weekday, orderInstant time.Time) (time.Time, error) {
	allowed := weekdaySet(deliveryDays)
	if len(allowed) == 0 {
		return time.Time{}, ErrNoDeliveryDays
	}

	date := startOfDay(orderInstant)
	if cutOff != nil && !orderInstant.Before(cutOff.On(orderInstant)) {
		date = date.AddDate(0, 0, 1)
	}

	date = addBusinessDays(date, leadTimeDays)

	// allowed is non-empty, so a match exists within a week
	for i := 0; i < 7; i++ {
		if allowed[entities.WeekdayOf(date)] {
			return date, nil
		}
		date = date.AddDate(0, 0, 1)
	}
	return time.Time{}, ErrNoDeliveryDays
}

// addBusinessDays steps one calendar day at a time, counting only Monday to Friday
func addBusinessDays(date time.Time, days int) time.Time {
	for counted := 0; counted < days; {
		date = date.AddDate(0, 0, 1)
		if !entities.WeekdayOf(date).IsWeekend() {
			counted++
		}
	}
	return date
}

// CalculateTimeUntilCutoff returns the signed minutes from now until cutoff on now's date.
// Negative once the cutoff has passed, even by a few seconds; there is no rollover
// to the next day.
func CalculateTimeUntilCutoff(cutoff entities.TimeOfDay, now time.Time) int {
	return int(math.Floor(cutoff.On(now).Sub(now).Minutes()))
}

// IsDeliveryDay reports whether t's weekday is one of days
func IsDeliveryDay(days []entities.Weekday, t time.Time) bool {
	return weekdaySet(days)[entities.WeekdayOf(t)]
}

func weekdaySet(days []entities.Weekday) map[entities.Weekday]bool {
	set := make(map[entities.Weekday]bool, len(days))
	for _, day := range days {
		if day.Valid() {
			set[day] = true
		}
	}
	return set
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
