package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// Directory is an in-memory copy of the operator master data: routes,
// buses and employees. It serves all three read repositories.
type Directory struct {
	mu        sync.RWMutex
	routes    map[string]domain.RouteInfo
	buses     map[string]domain.BusInfo
	employees map[string]domain.Employee
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		routes:    make(map[string]domain.RouteInfo),
		buses:     make(map[string]domain.BusInfo),
		employees: make(map[string]domain.Employee),
	}
}

// Routes, Buses and Employees expose the directory through the narrow ports.
func (d *Directory) Routes() ports.RouteRepository       { return directoryRoutes{d} }
func (d *Directory) Buses() ports.BusRepository          { return directoryBuses{d} }
func (d *Directory) Employees() ports.EmployeeRepository { return directoryEmployees{d} }

func (d *Directory) PutRoute(r domain.RouteInfo) {
	d.mu.Lock()
	d.routes[r.ID] = r
	d.mu.Unlock()
}

func (d *Directory) PutBus(b domain.BusInfo) {
	d.mu.Lock()
	d.buses[b.ID] = b
	d.mu.Unlock()
}

func (d *Directory) PutEmployee(e domain.Employee) {
	d.mu.Lock()
	d.employees[e.ID] = e
	d.mu.Unlock()
}

type directoryRoutes struct{ d *Directory }

func (r directoryRoutes) GetByID(_ context.Context, id string) (domain.RouteInfo, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	route, ok := r.d.routes[id]
	if !ok {
		return domain.RouteInfo{}, fmt.Errorf("route %s: %w", id, domain.ErrNotFound)
	}
	return route, nil
}

type directoryBuses struct{ d *Directory }

func (b directoryBuses) GetWithSeatLayout(_ context.Context, id string) (domain.BusInfo, error) {
	b.d.mu.RLock()
	defer b.d.mu.RUnlock()
	bus, ok := b.d.buses[id]
	if !ok {
		return domain.BusInfo{}, fmt.Errorf("bus %s: %w", id, domain.ErrNotFound)
	}
	return bus, nil
}

type directoryEmployees struct{ d *Directory }

func (e directoryEmployees) GetByID(_ context.Context, id string) (domain.Employee, error) {
	e.d.mu.RLock()
	defer e.d.mu.RUnlock()
	emp, ok := e.d.employees[id]
	if !ok {
		return domain.Employee{}, fmt.Errorf("employee %s: %w", id, domain.ErrNotFound)
	}
	if emp.LicenseExpiry != nil {
		exp := *emp.LicenseExpiry
		emp.LicenseExpiry = &exp
	}
	return emp, nil
}
