package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"maskedvaccine/internal/domain/vaccine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payload = vaccine.Payload{
	VaccineType:  "Influenza",
	Manufacturer: "Sanofi",
	BatchNumber:  "U1234",
	Date:         "2024-10-01",
	Site:         "City Clinic",
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Save(ctx, "1", payload))
	require.NoError(t, s.Save(ctx, "2", vaccine.DemoPayload))

	updated := payload
	updated.Notes = "booster"
	require.NoError(t, s.Save(ctx, "1", updated))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, s.Close())

	// данные переживают переоткрытие
	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]vaccine.Payload{"1": updated, "2": vaccine.DemoPayload}, got)
}

func TestStore_CancelledContext(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Save(ctx, "1", payload))
	_, err = s.Load(ctx)
	assert.Error(t, err)
}
