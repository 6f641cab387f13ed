package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/pkg/clock"
)

// TripRefs are the master-data references a trip points at.
type TripRefs struct {
	RouteID       string
	BusID         string
	DriverID      string
	TripManagerID string
}

// RefMask selects which references ValidateReferences checks.
type RefMask uint8

const (
	RefRoute RefMask = 1 << iota
	RefBus
	RefDriver
	RefTripManager

	RefAll = RefRoute | RefBus | RefDriver | RefTripManager
)

// ValidatedRefs carries what the checks learned about the references.
type ValidatedRefs struct {
	Route domain.RouteInfo
	Bus   domain.BusInfo
}

// TripValidator checks that a trip's route, bus, driver and trip manager
// exist, belong to the operator and are usable. Checks run in that order
// and stop at the first failure.
type TripValidator struct {
	routes    ports.RouteRepository
	buses     ports.BusRepository
	employees ports.EmployeeRepository
	clock     clock.Clock
}

// NewTripValidator creates a new TripValidator.
func NewTripValidator(routes ports.RouteRepository, buses ports.BusRepository, employees ports.EmployeeRepository, clk clock.Clock) *TripValidator {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TripValidator{routes: routes, buses: buses, employees: employees, clock: clk}
}

// ValidateReferences checks the references selected by only. A reference
// that is missing or unusable yields *domain.DependencyUnavailableError;
// any other repository failure is returned wrapped.
func (v *TripValidator) ValidateReferences(ctx context.Context, operatorID string, refs TripRefs, only RefMask) (ValidatedRefs, error) {
	var out ValidatedRefs

	if only&RefRoute != 0 {
		route, err := v.routes.GetByID(ctx, refs.RouteID)
		if err != nil {
			return out, lookupError("route", refs.RouteID, err)
		}
		switch {
		case route.OperatorID != operatorID:
			return out, unavailable("route", refs.RouteID, "belongs to another operator")
		case !route.IsActive:
			return out, unavailable("route", refs.RouteID, "route is not active")
		case route.StopCount < 1:
			return out, unavailable("route", refs.RouteID, "route has no stops")
		}
		out.Route = route
	}

	if only&RefBus != 0 {
		bus, err := v.buses.GetWithSeatLayout(ctx, refs.BusID)
		if err != nil {
			return out, lookupError("bus", refs.BusID, err)
		}
		switch {
		case bus.OperatorID != operatorID:
			return out, unavailable("bus", refs.BusID, "belongs to another operator")
		case bus.Status != domain.BusStatusActive:
			return out, unavailable("bus", refs.BusID, fmt.Sprintf("bus is %s", bus.Status))
		case bus.LayoutSeats <= 0:
			return out, unavailable("bus", refs.BusID, "bus has no seat layout")
		}
		out.Bus = bus
	}

	if only&RefDriver != 0 {
		if err := v.checkEmployee(ctx, operatorID, refs.DriverID, domain.RoleDriver); err != nil {
			return out, err
		}
	}

	if only&RefTripManager != 0 {
		if err := v.checkEmployee(ctx, operatorID, refs.TripManagerID, domain.RoleTripManager); err != nil {
			return out, err
		}
	}

	return out, nil
}

func (v *TripValidator) checkEmployee(ctx context.Context, operatorID, id string, role domain.EmployeeRole) error {
	entity := string(role)
	emp, err := v.employees.GetByID(ctx, id)
	if err != nil {
		return lookupError(entity, id, err)
	}
	switch {
	case emp.OperatorID != operatorID:
		return unavailable(entity, id, "belongs to another operator")
	case emp.Role != role:
		return unavailable(entity, id, fmt.Sprintf("employee is a %s", emp.Role))
	case emp.Status != domain.EmployeeActive:
		return unavailable(entity, id, fmt.Sprintf("employee is %s", emp.Status))
	}
	if role == domain.RoleDriver && emp.LicenseExpiry != nil && !emp.LicenseExpiry.After(v.clock.Now()) {
		return unavailable(entity, id, "driving license has expired")
	}
	return nil
}

func lookupError(entity, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return unavailable(entity, id, "not found")
	}
	return fmt.Errorf("lookup %s %s: %w", entity, id, err)
}

func unavailable(entity, id, reason string) error {
	return &domain.DependencyUnavailableError{Entity: entity, ID: id, Reason: reason}
}
