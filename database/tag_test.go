package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestListLocationsScopedToUser(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	_, err := c.CreateLocation(ctx, alice.ID, "Garden")
	require.NoError(t, err)
	_, err = c.CreateLocation(ctx, bob.ID, "Roof")
	require.NoError(t, err)

	locations, err := c.ListLocations(ctx, alice.ID, TagFilter{})
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Garden", locations[0].Name)
}

func TestListLocationsOrderedByName(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "order@example.com")

	for _, name := range []string{"Roof", "Attic", "Garden"} {
		_, err := c.CreateLocation(ctx, user.ID, name)
		require.NoError(t, err)
	}

	locations, err := c.ListLocations(ctx, user.ID, TagFilter{})
	require.NoError(t, err)
	require.Len(t, locations, 3)
	assert.Equal(t, "Attic", locations[0].Name)
	assert.Equal(t, "Garden", locations[1].Name)
	assert.Equal(t, "Roof", locations[2].Name)
}

func TestLocationIsAssignedAnnotation(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "assigned@example.com")

	garden, err := c.CreateLocation(ctx, user.ID, "Garden")
	require.NoError(t, err)
	_, err = c.CreateLocation(ctx, user.ID, "Attic")
	require.NoError(t, err)

	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", nil, &garden.ID)
	require.NoError(t, err)

	locations, err := c.ListLocations(ctx, user.ID, TagFilter{})
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.False(t, locations[0].IsAssigned) // Attic
	assert.True(t, locations[1].IsAssigned)  // Garden

	assigned, err := c.ListLocations(ctx, user.ID, TagFilter{AssignedOnly: true})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Garden", assigned[0].Name)

	// Deleting the last referencing sensor flips the flag back.
	require.NoError(t, c.DeleteSensor(ctx, user.ID, sensor.ID))
	assigned, err = c.ListLocations(ctx, user.ID, TagFilter{AssignedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, assigned)
}

func TestGetOrCreateLocationReusesRow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "reuse@example.com")

	first, err := c.GetOrCreateLocation(ctx, user.ID, "Garden")
	require.NoError(t, err)
	second, err := c.GetOrCreateLocation(ctx, user.ID, "Garden")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	locations, err := c.ListLocations(ctx, user.ID, TagFilter{})
	require.NoError(t, err)
	assert.Len(t, locations, 1)
}

func TestGetOrCreateLocationScopedToUser(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	aliceLoc, err := c.GetOrCreateLocation(ctx, alice.ID, "Garden")
	require.NoError(t, err)
	bobLoc, err := c.GetOrCreateLocation(ctx, bob.ID, "Garden")
	require.NoError(t, err)
	assert.NotEqual(t, aliceLoc.ID, bobLoc.ID)
}

func TestDeleteLocationDetachesSensors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "detach@example.com")

	garden, err := c.CreateLocation(ctx, user.ID, "Garden")
	require.NoError(t, err)
	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", nil, &garden.ID)
	require.NoError(t, err)

	require.NoError(t, c.DeleteLocation(ctx, user.ID, garden.ID))

	got, err := c.GetSensor(ctx, user.ID, sensor.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LocationID)
	assert.Nil(t, got.Location)
}

func TestDeleteLocationOtherUser(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice@example.com")
	bob := createTestUser(t, c, "bob@example.com")

	garden, err := c.CreateLocation(ctx, alice.ID, "Garden")
	require.NoError(t, err)

	err = c.DeleteLocation(ctx, bob.ID, garden.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = c.GetLocation(ctx, alice.ID, garden.ID)
	assert.NoError(t, err)
}

func TestGetOrCreateSensorTypeMatchesNameAndUnit(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "types@example.com")

	celsius, err := c.GetOrCreateSensorType(ctx, user.ID, "Temperature", "°C")
	require.NoError(t, err)
	again, err := c.GetOrCreateSensorType(ctx, user.ID, "Temperature", "°C")
	require.NoError(t, err)
	assert.Equal(t, celsius.ID, again.ID)

	// A different unit is a different sensor type.
	fahrenheit, err := c.GetOrCreateSensorType(ctx, user.ID, "Temperature", "°F")
	require.NoError(t, err)
	assert.NotEqual(t, celsius.ID, fahrenheit.ID)
}

func TestSensorTypeAssignedOnly(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "st@example.com")

	temp, err := c.CreateSensorType(ctx, user.ID, "Temperature", "°C")
	require.NoError(t, err)
	_, err = c.CreateSensorType(ctx, user.ID, "Humidity", "%")
	require.NoError(t, err)

	_, err = c.CreateSensor(ctx, user.ID, "BME280", "", &temp.ID, nil)
	require.NoError(t, err)

	assigned, err := c.ListSensorTypes(ctx, user.ID, TagFilter{AssignedOnly: true})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Temperature", assigned[0].Name)
	assert.True(t, assigned[0].IsAssigned)
}

func TestDeleteSensorTypeDetachesSensors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "stdel@example.com")

	temp, err := c.CreateSensorType(ctx, user.ID, "Temperature", "°C")
	require.NoError(t, err)
	sensor, err := c.CreateSensor(ctx, user.ID, "BME280", "", &temp.ID, nil)
	require.NoError(t, err)

	require.NoError(t, c.DeleteSensorType(ctx, user.ID, temp.ID))

	got, err := c.GetSensor(ctx, user.ID, sensor.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SensorTypeID)
}

func TestUpdateSensorTypePartial(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "stup@example.com")

	temp, err := c.CreateSensorType(ctx, user.ID, "Temperature", "°C")
	require.NoError(t, err)

	unit := "K"
	updated, err := c.UpdateSensorType(ctx, user.ID, temp.ID, SensorTypeUpdate{Unit: &unit})
	require.NoError(t, err)
	assert.Equal(t, "Temperature", updated.Name)
	assert.Equal(t, "K", updated.Unit)
}
