package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/hospital-gateway/internal/config"
)

func testConfig(doctorOnly bool) *config.Config {
	return &config.Config{
		DoctorServiceURL:      "http://doctors:3002",
		PatientServiceURL:     "http://patients:3003",
		AppointmentServiceURL: "http://appointments:3004",
		DoctorOnlyMode:        doctorOnly,
	}
}

func TestFullModeEnablesAllServices(t *testing.T) {
	reg := New(testConfig(false))

	assert.Equal(t, []string{"doctors", "patients", "appointments"}, reg.Enabled())
	assert.False(t, reg.DoctorOnly())

	svc, ok := reg.Resolve(ServicePatients)
	require.True(t, ok)
	assert.Equal(t, "http://patients:3003", svc.BaseURL)
	assert.Equal(t, "/api/patients", svc.Prefix)
	assert.True(t, svc.Enabled)
}

func TestDoctorOnlyModePartition(t *testing.T) {
	reg := New(testConfig(true))

	assert.Equal(t, []string{"doctors"}, reg.Enabled())
	assert.True(t, reg.DoctorOnly())

	doctors, ok := reg.Resolve(ServiceDoctors)
	require.True(t, ok)
	assert.True(t, doctors.Enabled)

	patients, ok := reg.Resolve(ServicePatients)
	require.True(t, ok)
	assert.False(t, patients.Enabled)

	appointments, ok := reg.Resolve(ServiceAppointments)
	require.True(t, ok)
	assert.False(t, appointments.Enabled)
}

func TestResolveUnknownService(t *testing.T) {
	reg := New(testConfig(false))
	_, ok := reg.Resolve("billing")
	assert.False(t, ok)
}

func TestServicesReturnsCopy(t *testing.T) {
	reg := New(testConfig(false))
	services := reg.Services()
	require.Len(t, services, 3)

	services[0].BaseURL = "http://mutated"

	again, _ := reg.Resolve(ServiceDoctors)
	assert.Equal(t, "http://doctors:3002", again.BaseURL)
}
