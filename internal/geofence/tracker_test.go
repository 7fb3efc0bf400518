package geofence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := NewTracker(nil)
	require.NoError(t, err)
	return tr
}

func TestAddZoneRejectsNonPositiveRadius(t *testing.T) {
	tr := newTestTracker(t)

	for _, radius := range []float64{0, -5} {
		_, err := tr.AddZone(ZoneInput{Name: "bad", RadiusMeters: radius})
		assert.ErrorIs(t, err, ErrInvalidZone)
	}
	assert.Empty(t, tr.ListZones(), "zone list must be unchanged after rejected creation")
}

func TestEntryAtZoneCenter(t *testing.T) {
	tr := newTestTracker(t)
	zone, err := tr.AddZone(ZoneInput{
		Name:         "Chennai depot",
		Center:       Point{Lat: 13.0827, Lon: 80.2707},
		RadiusMeters: 500,
		Kind:         ZoneKindWork,
	})
	require.NoError(t, err)

	w := Worker{ID: "w1", Name: "Asha"}
	alerts := tr.UpdateWorkerLocation(w, 13.0827, 80.2707)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertZoneEntry, alerts[0].Kind)
	assert.Equal(t, zone.ID, alerts[0].ZoneID)
	assert.Equal(t, "w1", alerts[0].WorkerID)
}

func TestExitEmitsSingleAlert(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.AddZone(ZoneInput{
		Name:         "site",
		Center:       Point{Lat: 13.0827, Lon: 80.2707},
		RadiusMeters: 500,
	})
	require.NoError(t, err)

	w := Worker{ID: "w1", Name: "Asha"}
	tr.UpdateWorkerLocation(w, 13.0827, 80.2707)

	// ~0.01 deg of latitude is ~1.1 km, well past the 500 m radius
	alerts := tr.UpdateWorkerLocation(w, 13.0927, 80.2707)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertZoneExit, alerts[0].Kind)
}

func TestNoDuplicateEntryWhileInside(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.AddZone(ZoneInput{
		Name:         "site",
		Center:       Point{Lat: 0, Lon: 0},
		RadiusMeters: 1000,
	})
	require.NoError(t, err)

	w := Worker{ID: "w1", Name: "Asha"}
	first := tr.UpdateWorkerLocation(w, 0, 0)
	require.Len(t, first, 1)

	for i := 0; i < 5; i++ {
		assert.Empty(t, tr.UpdateWorkerLocation(w, 0.001, 0.001))
	}
	assert.Len(t, tr.GetAllAlerts(), 1)
}

func TestEndToEndScenario(t *testing.T) {
	tr := newTestTracker(t)
	z1, err := tr.AddZone(ZoneInput{
		Name:         "Z1",
		Center:       Point{Lat: 0, Lon: 0},
		RadiusMeters: 1000,
	})
	require.NoError(t, err)

	w := Worker{ID: "W1", Name: "Juma"}

	entry := tr.UpdateWorkerLocation(w, 0, 0)
	require.Len(t, entry, 1)
	assert.Equal(t, AlertZoneEntry, entry[0].Kind)
	assert.Equal(t, z1.ID, entry[0].ZoneID)

	// (0.1, 0.1) is roughly 15 km from the origin
	exit := tr.UpdateWorkerLocation(w, 0.1, 0.1)
	require.Len(t, exit, 1)
	assert.Equal(t, AlertZoneExit, exit[0].Kind)
	assert.Equal(t, z1.ID, exit[0].ZoneID)

	history := tr.GetWorkerAlerts("W1")
	require.Len(t, history, 2)
	assert.Equal(t, AlertZoneExit, history[0].Kind, "newest first")
	assert.Equal(t, AlertZoneEntry, history[1].Kind)
}

func TestAlertLogCap(t *testing.T) {
	tr := newTestTracker(t)
	w := Worker{ID: "w1", Name: "Asha"}

	var oldest, newest Alert
	for i := 0; i < alertLogCap+20; i++ {
		a := tr.CreateSOSAlert(w, 0, 0, fmt.Sprintf("sos %d", i))
		if i == 0 {
			oldest = a
		}
		newest = a
	}

	all := tr.GetAllAlerts()
	assert.Len(t, all, alertLogCap)
	assert.Equal(t, newest.ID, all[0].ID, "newest entry survives at the front")
	for _, a := range all {
		assert.NotEqual(t, oldest.ID, a.ID, "oldest entry must have been evicted")
	}
}

func TestRemoveZone(t *testing.T) {
	tr := newTestTracker(t)
	zone, err := tr.AddZone(ZoneInput{Name: "site", RadiusMeters: 100})
	require.NoError(t, err)

	assert.False(t, tr.RemoveZone("no-such-zone"))
	assert.Len(t, tr.ListZones(), 1)

	assert.True(t, tr.RemoveZone(zone.ID))
	assert.Empty(t, tr.ListZones())
}

func TestRemoveZoneClearsMembership(t *testing.T) {
	tr := newTestTracker(t)
	zone, err := tr.AddZone(ZoneInput{Name: "site", Center: Point{Lat: 0, Lon: 0}, RadiusMeters: 1000})
	require.NoError(t, err)

	w := Worker{ID: "w1", Name: "Asha"}
	require.Len(t, tr.UpdateWorkerLocation(w, 0, 0), 1)

	tr.RemoveZone(zone.ID)
	recreated, err := tr.AddZone(ZoneInput{Name: "site", Center: Point{Lat: 0, Lon: 0}, RadiusMeters: 1000})
	require.NoError(t, err)

	// Membership did not leak from the removed zone onto the new one.
	alerts := tr.UpdateWorkerLocation(w, 0, 0)
	require.Len(t, alerts, 1)
	assert.Equal(t, recreated.ID, alerts[0].ZoneID)
	assert.Equal(t, AlertZoneEntry, alerts[0].Kind)
}

func TestUpdateZone(t *testing.T) {
	tr := newTestTracker(t)
	zone, err := tr.AddZone(ZoneInput{Name: "site", RadiusMeters: 100, Kind: ZoneKindWork})
	require.NoError(t, err)

	assert.Nil(t, tr.UpdateZone("no-such-zone", ZoneUpdate{}))

	name := "renamed"
	radius := 250.0
	updated := tr.UpdateZone(zone.ID, ZoneUpdate{Name: &name, RadiusMeters: &radius})
	require.NotNil(t, updated)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, 250.0, updated.RadiusMeters)
	assert.Equal(t, ZoneKindWork, updated.Kind)

	// the radius invariant holds through updates
	bad := -1.0
	updated = tr.UpdateZone(zone.ID, ZoneUpdate{RadiusMeters: &bad})
	require.NotNil(t, updated)
	assert.Equal(t, 250.0, updated.RadiusMeters)
}

func TestSOSDefaultMessage(t *testing.T) {
	tr := newTestTracker(t)
	w := Worker{ID: "w1", Name: "Asha"}

	a := tr.CreateSOSAlert(w, 1.5, 2.5, "")
	assert.Equal(t, AlertSOS, a.Kind)
	assert.Contains(t, a.Message, "Asha")
	require.NotNil(t, a.Location)
	assert.Equal(t, 1.5, a.Location.Lat)

	custom := tr.CreateSOSAlert(w, 0, 0, "help needed at gate 3")
	assert.Equal(t, "help needed at gate 3", custom.Message)
}

func TestInactivityAlert(t *testing.T) {
	tr := newTestTracker(t)
	w := Worker{ID: "w1", Name: "Asha"}

	a := tr.CreateInactivityAlert(w, nil)
	assert.Equal(t, AlertInactivity, a.Kind)
	assert.Nil(t, a.Location)
	assert.Contains(t, a.Message, "Asha")
}

func TestUnreadAndMarkRead(t *testing.T) {
	tr := newTestTracker(t)
	w := Worker{ID: "w1", Name: "Asha"}

	a := tr.CreateSOSAlert(w, 0, 0, "")
	b := tr.CreateSOSAlert(w, 0, 0, "")
	assert.Len(t, tr.GetUnreadAlerts(), 2)

	tr.MarkAlertAsRead(a.ID)
	unread := tr.GetUnreadAlerts()
	require.Len(t, unread, 1)
	assert.Equal(t, b.ID, unread[0].ID)

	// unknown id is a no-op
	tr.MarkAlertAsRead("no-such-alert")
	assert.Len(t, tr.GetUnreadAlerts(), 1)
}

func TestOverlappingZones(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.AddZone(ZoneInput{Name: "inner", Center: Point{Lat: 0, Lon: 0}, RadiusMeters: 500})
	require.NoError(t, err)
	_, err = tr.AddZone(ZoneInput{Name: "outer", Center: Point{Lat: 0, Lon: 0}, RadiusMeters: 5000})
	require.NoError(t, err)

	w := Worker{ID: "w1", Name: "Asha"}
	alerts := tr.UpdateWorkerLocation(w, 0, 0)
	assert.Len(t, alerts, 2, "one entry per overlapping zone")
}

func TestTrackerLoadsZonesFromStore(t *testing.T) {
	store := NewMemoryZoneStore()
	require.NoError(t, store.Insert(Zone{
		ID:           "z-persisted",
		Name:         "depot",
		Center:       Point{Lat: 0, Lon: 0},
		RadiusMeters: 1000,
	}))

	tr, err := NewTracker(store)
	require.NoError(t, err)
	require.Len(t, tr.ListZones(), 1)

	w := Worker{ID: "w1", Name: "Asha"}
	alerts := tr.UpdateWorkerLocation(w, 0, 0)
	require.Len(t, alerts, 1)
	assert.Equal(t, "z-persisted", alerts[0].ZoneID)
}

func TestTrackerMirrorsMutationsToStore(t *testing.T) {
	store := NewMemoryZoneStore()
	tr, err := NewTracker(store)
	require.NoError(t, err)

	zone, err := tr.AddZone(ZoneInput{Name: "site", RadiusMeters: 100})
	require.NoError(t, err)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, zone.ID, persisted[0].ID)

	tr.RemoveZone(zone.ID)
	persisted, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

type failingStore struct{}

func (failingStore) Load() ([]Zone, error) { return nil, nil }
func (failingStore) Insert(Zone) error     { return errors.New("db down") }
func (failingStore) Update(Zone) error     { return errors.New("db down") }
func (failingStore) Delete(string) error   { return errors.New("db down") }

func TestStoreFailureDoesNotBlockTracking(t *testing.T) {
	tr, err := NewTracker(failingStore{})
	require.NoError(t, err)

	zone, err := tr.AddZone(ZoneInput{Name: "site", Center: Point{Lat: 0, Lon: 0}, RadiusMeters: 1000})
	require.NoError(t, err, "persistence failure must not fail the call")
	assert.Len(t, tr.ListZones(), 1)

	alerts := tr.UpdateWorkerLocation(Worker{ID: "w1", Name: "Asha"}, 0, 0)
	require.Len(t, alerts, 1)
	assert.Equal(t, zone.ID, alerts[0].ZoneID)
}

func TestDistanceMeters(t *testing.T) {
	assert.Zero(t, DistanceMeters(13.0827, 80.2707, 13.0827, 80.2707))

	// one degree of latitude is ~111.2 km
	d := DistanceMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 500)

	// Nairobi CBD to Westlands, roughly 2.4 km
	d = DistanceMeters(-1.2864, 36.8172, -1.2676, 36.8070)
	assert.InDelta(t, 2350, d, 500)
}
