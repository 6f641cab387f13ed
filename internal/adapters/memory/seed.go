package memory

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/busseat/internal/core/domain"
)

type seedFile struct {
	Routes []struct {
		ID         string `yaml:"id"`
		OperatorID string `yaml:"operator_id"`
		Name       string `yaml:"name"`
		Inactive   bool   `yaml:"inactive"`
		StopCount  int    `yaml:"stop_count"`
	} `yaml:"routes"`
	Buses []struct {
		ID          string `yaml:"id"`
		OperatorID  string `yaml:"operator_id"`
		PlateNumber string `yaml:"plate_number"`
		Status      string `yaml:"status"`
		LayoutSeats int    `yaml:"layout_seats"`
	} `yaml:"buses"`
	Employees []struct {
		ID            string     `yaml:"id"`
		OperatorID    string     `yaml:"operator_id"`
		FullName      string     `yaml:"full_name"`
		Role          string     `yaml:"role"`
		Status        string     `yaml:"status"`
		LicenseExpiry *time.Time `yaml:"license_expiry"`
	} `yaml:"employees"`
}

// LoadDirectory reads operator master data from YAML. Omitted bus and
// employee statuses default to active.
func LoadDirectory(r io.Reader) (*Directory, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	d := NewDirectory()
	for _, r := range f.Routes {
		d.PutRoute(domain.RouteInfo{
			ID: r.ID, OperatorID: r.OperatorID, Name: r.Name,
			IsActive: !r.Inactive, StopCount: r.StopCount,
		})
	}
	for _, b := range f.Buses {
		status := domain.BusStatus(b.Status)
		if status == "" {
			status = domain.BusStatusActive
		}
		d.PutBus(domain.BusInfo{
			ID: b.ID, OperatorID: b.OperatorID, PlateNumber: b.PlateNumber,
			Status: status, LayoutSeats: b.LayoutSeats,
		})
	}
	for _, e := range f.Employees {
		status := domain.EmployeeStatus(e.Status)
		if status == "" {
			status = domain.EmployeeActive
		}
		d.PutEmployee(domain.Employee{
			ID: e.ID, OperatorID: e.OperatorID, FullName: e.FullName,
			Role: domain.EmployeeRole(e.Role), Status: status, LicenseExpiry: e.LicenseExpiry,
		})
	}
	return d, nil
}

// LoadDirectoryFile is LoadDirectory on a file; an empty path yields an
// empty directory.
func LoadDirectoryFile(path string) (*Directory, error) {
	if path == "" {
		return NewDirectory(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDirectory(f)
}
