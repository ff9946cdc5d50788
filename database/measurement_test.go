package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateMeasurementRoundsAndStamps(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "round@example.com")

	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", nil, nil)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	m, err := c.CreateMeasurement(ctx, user.ID, 21.567, sensor.ID)
	require.NoError(t, err)
	assert.Equal(t, 21.57, m.Value)
	assert.True(t, m.Timestamp.After(before))
	require.NotNil(t, m.Sensor)
	assert.Equal(t, sensor.ID, m.Sensor.ID)
}

func TestCreateMeasurementForeignSensor(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	sensor, err := c.CreateSensor(ctx, alice.ID, "BME280", "", nil, nil)
	require.NoError(t, err)

	_, err = c.CreateMeasurement(ctx, bob.ID, 21.5, sensor.ID)
	assert.ErrorIs(t, err, ErrCrossUserReference)

	// A sensor id that exists for nobody reads the same way.
	_, err = c.CreateMeasurement(ctx, bob.ID, 21.5, sensor.ID+100)
	assert.ErrorIs(t, err, ErrCrossUserReference)
}

func TestListMeasurementsScopedToUser(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	aliceSensor, err := c.CreateSensor(ctx, alice.ID, "BME280", "", nil, nil)
	require.NoError(t, err)
	bobSensor, err := c.CreateSensor(ctx, bob.ID, "DHT22", "", nil, nil)
	require.NoError(t, err)

	_, err = c.CreateMeasurement(ctx, alice.ID, 1.0, aliceSensor.ID)
	require.NoError(t, err)
	_, err = c.CreateMeasurement(ctx, bob.ID, 2.0, bobSensor.ID)
	require.NoError(t, err)

	measurements, err := c.ListMeasurements(ctx, alice.ID, MeasurementFilter{})
	require.NoError(t, err)
	require.Len(t, measurements, 1)
	assert.Equal(t, 1.0, measurements[0].Value)
}

func TestListMeasurementsBySensor(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "bysensor@example.com")

	s1, err := c.CreateSensor(ctx, user.ID, "one", "", nil, nil)
	require.NoError(t, err)
	s2, err := c.CreateSensor(ctx, user.ID, "two", "", nil, nil)
	require.NoError(t, err)

	_, err = c.CreateMeasurement(ctx, user.ID, 1.0, s1.ID)
	require.NoError(t, err)
	_, err = c.CreateMeasurement(ctx, user.ID, 2.0, s2.ID)
	require.NoError(t, err)

	measurements, err := c.ListMeasurements(ctx, user.ID, MeasurementFilter{SensorIDs: []uint{s2.ID}})
	require.NoError(t, err)
	require.Len(t, measurements, 1)
	assert.Equal(t, s2.ID, measurements[0].SensorID)
}

func TestListMeasurementsDateBoundsInclusive(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "dates@example.com")

	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", nil, nil)
	require.NoError(t, err)

	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
	}
	for i, v := range []float64{1, 2, 3} {
		m, err := c.CreateMeasurement(ctx, user.ID, v, sensor.ID)
		require.NoError(t, err)
		backdate(t, c, m.ID, day(10+i))
	}

	start := day(10)
	end := day(11)
	measurements, err := c.ListMeasurements(ctx, user.ID, MeasurementFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, measurements, 2)
	// Newest first.
	assert.Equal(t, 2.0, measurements[0].Value)
	assert.Equal(t, 1.0, measurements[1].Value)
}

func TestListMeasurementsLatestPerSensor(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "latest@example.com")

	s1, err := c.CreateSensor(ctx, user.ID, "one", "", nil, nil)
	require.NoError(t, err)
	s2, err := c.CreateSensor(ctx, user.ID, "two", "", nil, nil)
	require.NoError(t, err)

	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
	}
	seed := []struct {
		sensorID uint
		value    float64
		day      int
	}{
		{s1.ID, 1.0, 10},
		{s1.ID, 2.0, 12},
		{s2.ID, 3.0, 11},
		{s2.ID, 4.0, 9},
	}
	for _, row := range seed {
		m, err := c.CreateMeasurement(ctx, user.ID, row.value, row.sensorID)
		require.NoError(t, err)
		backdate(t, c, m.ID, day(row.day))
	}

	latest, err := c.ListMeasurements(ctx, user.ID, MeasurementFilter{Latest: true})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	values := map[uint]float64{}
	for _, m := range latest {
		values[m.SensorID] = m.Value
	}
	assert.Equal(t, 2.0, values[s1.ID])
	assert.Equal(t, 3.0, values[s2.ID])
}

func TestListMeasurementsLatestWithinDateBounds(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "latestbound@example.com")

	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", nil, nil)
	require.NoError(t, err)

	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
	}
	for i, v := range []float64{1, 2, 3} {
		m, err := c.CreateMeasurement(ctx, user.ID, v, sensor.ID)
		require.NoError(t, err)
		backdate(t, c, m.ID, day(10+i))
	}

	// The newest row overall falls outside the window, so latest picks the
	// newest row inside it.
	end := day(11)
	latest, err := c.ListMeasurements(ctx, user.ID, MeasurementFilter{
		Latest:  true,
		EndDate: &end,
	})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 2.0, latest[0].Value)
}

func TestUpdateMeasurement(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "update@example.com")

	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", nil, nil)
	require.NoError(t, err)
	other, err := c.CreateSensor(ctx, user.ID, "DHT22", "", nil, nil)
	require.NoError(t, err)

	m, err := c.CreateMeasurement(ctx, user.ID, 21.5, sensor.ID)
	require.NoError(t, err)

	value := 22.719
	updated, err := c.UpdateMeasurement(ctx, user.ID, m.ID, MeasurementUpdate{
		Value:    &value,
		SensorID: &other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 22.72, updated.Value)
	assert.Equal(t, other.ID, updated.SensorID)
	assert.Equal(t, m.Timestamp.Unix(), updated.Timestamp.Unix())
}

func TestUpdateMeasurementForeignSensorLeavesRowUnchanged(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	aliceSensor, err := c.CreateSensor(ctx, alice.ID, "BME280", "", nil, nil)
	require.NoError(t, err)
	bobSensor, err := c.CreateSensor(ctx, bob.ID, "DHT22", "", nil, nil)
	require.NoError(t, err)

	m, err := c.CreateMeasurement(ctx, alice.ID, 21.5, aliceSensor.ID)
	require.NoError(t, err)

	value := 99.0
	_, err = c.UpdateMeasurement(ctx, alice.ID, m.ID, MeasurementUpdate{
		Value:    &value,
		SensorID: &bobSensor.ID,
	})
	assert.ErrorIs(t, err, ErrCrossUserReference)

	got, err := c.GetMeasurement(ctx, alice.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 21.5, got.Value)
	assert.Equal(t, aliceSensor.ID, got.SensorID)
}

func TestUpdateMeasurementOtherUser(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	sensor, err := c.CreateSensor(ctx, alice.ID, "BME280", "", nil, nil)
	require.NoError(t, err)
	m, err := c.CreateMeasurement(ctx, alice.ID, 21.5, sensor.ID)
	require.NoError(t, err)

	value := 1.0
	_, err = c.UpdateMeasurement(ctx, bob.ID, m.ID, MeasurementUpdate{Value: &value})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteMeasurement(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	sensor, err := c.CreateSensor(ctx, alice.ID, "BME280", "", nil, nil)
	require.NoError(t, err)
	m, err := c.CreateMeasurement(ctx, alice.ID, 21.5, sensor.ID)
	require.NoError(t, err)

	err = c.DeleteMeasurement(ctx, bob.ID, m.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, c.DeleteMeasurement(ctx, alice.ID, m.ID))
	_, err = c.GetMeasurement(ctx, alice.ID, m.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNewestMeasurementTime(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	ts, err := c.NewestMeasurementTime(ctx)
	require.NoError(t, err)
	assert.Nil(t, ts)

	user := createTestUser(t, c, "stats@example.com")
	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", nil, nil)
	require.NoError(t, err)
	_, err = c.CreateMeasurement(ctx, user.ID, 21.5, sensor.ID)
	require.NoError(t, err)

	ts, err = c.NewestMeasurementTime(ctx)
	require.NoError(t, err)
	require.NotNil(t, ts)
}
