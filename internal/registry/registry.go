// Package registry holds the static mapping from logical service name to
// upstream address. It is built once in the composition root and read
// concurrently by every request; nothing mutates it afterwards, so reads
// need no synchronization.
package registry

import (
	"github.com/carebridge/hospital-gateway/internal/config"
)

// Proxied service names.
const (
	ServiceDoctors      = "doctors"
	ServicePatients     = "patients"
	ServiceAppointments = "appointments"
)

// Service is one registry entry. Disabled services are never proxied;
// requests for them short-circuit to a fixed 503 stub.
type Service struct {
	Name        string
	DisplayName string
	BaseURL     string
	Prefix      string
	Enabled     bool
}

// Registry resolves logical service names to upstream targets.
type Registry struct {
	services   []Service
	byName     map[string]Service
	doctorOnly bool
}

// New builds the registry from configuration. Doctor-only mode restricts
// the enabled set to the doctor service; the rest stay registered so
// discovery can report them as disabled.
func New(cfg *config.Config) *Registry {
	services := []Service{
		{
			Name:        ServiceDoctors,
			DisplayName: "Doctor",
			BaseURL:     cfg.DoctorServiceURL,
			Prefix:      "/api/doctors",
			Enabled:     true,
		},
		{
			Name:        ServicePatients,
			DisplayName: "Patient",
			BaseURL:     cfg.PatientServiceURL,
			Prefix:      "/api/patients",
			Enabled:     !cfg.DoctorOnlyMode,
		},
		{
			Name:        ServiceAppointments,
			DisplayName: "Appointment",
			BaseURL:     cfg.AppointmentServiceURL,
			Prefix:      "/api/appointments",
			Enabled:     !cfg.DoctorOnlyMode,
		},
	}

	byName := make(map[string]Service, len(services))
	for _, svc := range services {
		byName[svc.Name] = svc
	}

	return &Registry{
		services:   services,
		byName:     byName,
		doctorOnly: cfg.DoctorOnlyMode,
	}
}

// Resolve returns the entry for name.
func (r *Registry) Resolve(name string) (Service, bool) {
	svc, ok := r.byName[name]
	return svc, ok
}

// Services returns all registered entries in mount order.
func (r *Registry) Services() []Service {
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out
}

// Enabled returns the names of services that are proxied in this mode.
func (r *Registry) Enabled() []string {
	var names []string
	for _, svc := range r.services {
		if svc.Enabled {
			names = append(names, svc.Name)
		}
	}
	return names
}

// DoctorOnly reports whether the registry was built in doctor-only mode.
func (r *Registry) DoctorOnly() bool {
	return r.doctorOnly
}
