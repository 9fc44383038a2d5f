package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	sensors []domain.PickupSensor
	err     error
}

func (f fakeReader) Sensors(context.Context) ([]domain.PickupSensor, error) {
	return f.sensors, f.err
}

func (f fakeReader) Sensor(_ context.Context, id string) (domain.PickupSensor, error) {
	if f.err != nil {
		return domain.PickupSensor{}, f.err
	}
	for _, sensor := range f.sensors {
		if sensor.UniqueID == id {
			return sensor, nil
		}
	}
	return domain.PickupSensor{}, fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, id)
}

func fixtureSensors() []domain.PickupSensor {
	zone := time.FixedZone("CDT", -5*60*60)
	value := time.Date(2026, 10, 20, 7, 0, 0, 0, zone)

	trash := domain.NewPickupSensor(domain.ServiceSubscription{AccountID: "A1", ServiceID: "S1", DisplayName: "Trash"})
	trash.Value = &value
	trash.ResolvedAt = time.Date(2026, 10, 19, 0, 1, 0, 0, zone)
	trash.LastAttemptAt = trash.ResolvedAt

	recycling := domain.NewPickupSensor(domain.ServiceSubscription{AccountID: "A1", ServiceID: "S2", DisplayName: "Recycling"})
	recycling.LastAttemptAt = trash.ResolvedAt
	recycling.LastError = "unknown error: 502"

	return []domain.PickupSensor{trash, recycling}
}

func serve(t *testing.T, reader SensorReader, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	NewHandler(reader, zerolog.Nop()).Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, fakeReader{}, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListSensors(t *testing.T) {
	rec := serve(t, fakeReader{sensors: fixtureSensors()}, "/sensors")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Sensors []SensorView `json:"sensors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Sensors, 2)

	trash := body.Sensors[0]
	assert.Equal(t, "A1_S1", trash.UniqueID)
	assert.Equal(t, domain.SensorIcon, trash.Icon)
	assert.Equal(t, domain.SensorDeviceClass, trash.DeviceClass)
	require.NotNil(t, trash.State)
	assert.Equal(t, "2026-10-20T07:00:00-05:00", *trash.State)
	assert.True(t, trash.Available)

	recycling := body.Sensors[1]
	assert.Nil(t, recycling.State)
	assert.False(t, recycling.Available)
	assert.Equal(t, "unknown error: 502", recycling.LastError)
}

func TestListSensorsRendersNullState(t *testing.T) {
	rec := serve(t, fakeReader{sensors: fixtureSensors()[1:]}, "/sensors")

	assert.Contains(t, rec.Body.String(), `"state":null`)
}

func TestGetSensor(t *testing.T) {
	rec := serve(t, fakeReader{sensors: fixtureSensors()}, "/sensors/A1_S1")
	require.Equal(t, http.StatusOK, rec.Code)

	var view SensorView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Trash", view.Name)
}

func TestGetSensorNotFound(t *testing.T) {
	rec := serve(t, fakeReader{sensors: fixtureSensors()}, "/sensors/A1_S9")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSensorsBackendFailure(t *testing.T) {
	reader := fakeReader{err: errors.New("disk I/O error")}

	assert.Equal(t, http.StatusInternalServerError, serve(t, reader, "/sensors").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(t, reader, "/sensors/A1_S1").Code)
}
