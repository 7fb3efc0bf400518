// Package geofence tracks workers against named circular zones and raises
// entry/exit/SOS/inactivity alerts. It is an in-process, best-effort tracking
// aid, not a system of record: unknown ids answer with zero values instead of
// errors, and the alert log is bounded.
package geofence

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Alert kinds.
const (
	AlertZoneEntry  = "zone_entry"
	AlertZoneExit   = "zone_exit"
	AlertSOS        = "sos"
	AlertInactivity = "inactivity"
)

// alertLogCap bounds the in-memory alert log system-wide. The cap is global
// rather than per worker: the log feeds the admin's recent-activity view,
// while durable per-worker history is the host application's concern.
const alertLogCap = 100

// ErrInvalidZone rejects zone creation with a non-positive radius.
var ErrInvalidZone = errors.New("zone radius must be positive")

// Worker identifies the subject of a location ping.
type Worker struct {
	ID   string
	Name string
}

// Alert is a timestamped tracking event tied to a worker.
type Alert struct {
	ID          string `json:"id"`
	WorkerID    string `json:"worker_id"`
	WorkerName  string `json:"worker_name"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	TimestampMs int64  `json:"timestamp_ms"`
	Location    *Point `json:"location,omitempty"`
	ZoneID      string `json:"zone_id,omitempty"`
	Read        bool   `json:"read"`
}

// Tracker holds the zone set, per-worker zone membership, and the bounded
// alert log. A single mutex guards all three: membership flip plus alert
// emit is a read-modify-write that must be atomic per (worker, zone) pair.
type Tracker struct {
	mu         sync.Mutex
	store      ZoneStore
	zones      map[string]Zone
	membership map[string]map[string]bool // worker id -> zone id -> inside
	alerts     []Alert                    // newest first
	now        func() time.Time
}

// NewTracker builds a tracker, loading any zones the store already holds.
// A nil store keeps the tracker purely in-memory.
func NewTracker(store ZoneStore) (*Tracker, error) {
	t := &Tracker{
		store:      store,
		zones:      make(map[string]Zone),
		membership: make(map[string]map[string]bool),
		now:        time.Now,
	}
	if store != nil {
		zones, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("loading zones: %w", err)
		}
		for _, z := range zones {
			t.zones[z.ID] = z
		}
	}
	return t, nil
}

// AddZone validates and registers a new zone, assigning it a fresh id.
// Membership for every known worker starts as outside.
func (t *Tracker) AddZone(in ZoneInput) (Zone, error) {
	if in.RadiusMeters <= 0 {
		return Zone{}, ErrInvalidZone
	}

	zone := Zone{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Center:       in.Center,
		RadiusMeters: in.RadiusMeters,
		Kind:         in.Kind,
		Description:  in.Description,
	}

	t.mu.Lock()
	t.zones[zone.ID] = zone
	t.mu.Unlock()

	t.persist(func(s ZoneStore) error { return s.Insert(zone) }, zone.ID)
	return zone, nil
}

// RemoveZone deletes a zone and every membership entry referencing it.
// Returns whether a zone was actually found and removed.
func (t *Tracker) RemoveZone(zoneID string) bool {
	t.mu.Lock()
	_, ok := t.zones[zoneID]
	if ok {
		delete(t.zones, zoneID)
		for _, zones := range t.membership {
			delete(zones, zoneID)
		}
	}
	t.mu.Unlock()

	if ok {
		t.persist(func(s ZoneStore) error { return s.Delete(zoneID) }, zoneID)
	}
	return ok
}

// UpdateZone merges the given fields into an existing zone and returns the
// updated copy, or nil if the id is unknown. A non-positive radius in the
// update is ignored so the radius invariant keeps holding.
func (t *Tracker) UpdateZone(zoneID string, upd ZoneUpdate) *Zone {
	t.mu.Lock()
	zone, ok := t.zones[zoneID]
	if !ok {
		t.mu.Unlock()
		return nil
	}
	if upd.Name != nil {
		zone.Name = *upd.Name
	}
	if upd.Center != nil {
		zone.Center = *upd.Center
	}
	if upd.RadiusMeters != nil && *upd.RadiusMeters > 0 {
		zone.RadiusMeters = *upd.RadiusMeters
	}
	if upd.Kind != nil {
		zone.Kind = *upd.Kind
	}
	if upd.Description != nil {
		zone.Description = *upd.Description
	}
	t.zones[zoneID] = zone
	t.mu.Unlock()

	t.persist(func(s ZoneStore) error { return s.Update(zone) }, zoneID)
	return &zone
}

// ListZones returns a snapshot of the current zone set.
func (t *Tracker) ListZones() []Zone {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Zone, 0, len(t.zones))
	for _, z := range t.zones {
		out = append(out, z)
	}
	return out
}

// UpdateWorkerLocation checks a location ping against every zone and returns
// the alerts raised by boundary crossings. A worker's first observed ping
// starts from outside every zone, so a ping inside a zone raises zone_entry.
// Repeated pings inside the same zone raise nothing further.
func (t *Tracker) UpdateWorkerLocation(w Worker, lat, lon float64) []Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	inside, ok := t.membership[w.ID]
	if !ok {
		inside = make(map[string]bool)
		t.membership[w.ID] = inside
	}

	var raised []Alert
	loc := Point{Lat: lat, Lon: lon}
	for id, zone := range t.zones {
		d := DistanceMeters(lat, lon, zone.Center.Lat, zone.Center.Lon)
		insideNow := d <= zone.RadiusMeters
		wasInside := inside[id]

		switch {
		case insideNow && !wasInside:
			inside[id] = true
			msg := fmt.Sprintf("%s entered zone %q", w.Name, zone.Name)
			raised = append(raised, t.appendAlertLocked(w, AlertZoneEntry, msg, &loc, id))
		case !insideNow && wasInside:
			inside[id] = false
			msg := fmt.Sprintf("%s left zone %q", w.Name, zone.Name)
			raised = append(raised, t.appendAlertLocked(w, AlertZoneExit, msg, &loc, id))
		}
	}
	return raised
}

// CreateSOSAlert unconditionally records an SOS from the worker. An empty
// message gets a default templated with the worker's name.
func (t *Tracker) CreateSOSAlert(w Worker, lat, lon float64, message string) Alert {
	if message == "" {
		message = fmt.Sprintf("%s triggered an SOS alarm", w.Name)
	}
	loc := Point{Lat: lat, Lon: lon}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendAlertLocked(w, AlertSOS, message, &loc, "")
}

// CreateInactivityAlert records that the worker has gone quiet. Deciding the
// inactivity threshold is the caller's job; the tracker runs no timers.
func (t *Tracker) CreateInactivityAlert(w Worker, lastKnown *Point) Alert {
	msg := fmt.Sprintf("%s has not reported a location recently", w.Name)

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendAlertLocked(w, AlertInactivity, msg, lastKnown, "")
}

// GetWorkerAlerts returns the worker's alerts in stored order (newest first).
func (t *Tracker) GetWorkerAlerts(workerID string) []Alert {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Alert
	for _, a := range t.alerts {
		if a.WorkerID == workerID {
			out = append(out, a)
		}
	}
	return out
}

// GetUnreadAlerts returns every alert not yet marked read, newest first.
func (t *Tracker) GetUnreadAlerts() []Alert {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Alert
	for _, a := range t.alerts {
		if !a.Read {
			out = append(out, a)
		}
	}
	return out
}

// MarkAlertAsRead flags the alert as read. Unknown ids are a no-op.
func (t *Tracker) MarkAlertAsRead(alertID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.alerts {
		if t.alerts[i].ID == alertID {
			t.alerts[i].Read = true
			return
		}
	}
}

// GetAllAlerts returns a snapshot of the alert log, newest first.
func (t *Tracker) GetAllAlerts() []Alert {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Alert, len(t.alerts))
	copy(out, t.alerts)
	return out
}

// appendAlertLocked prepends a new alert and trims the log to the cap.
// Callers must hold t.mu.
func (t *Tracker) appendAlertLocked(w Worker, kind, message string, loc *Point, zoneID string) Alert {
	alert := Alert{
		ID:          uuid.NewString(),
		WorkerID:    w.ID,
		WorkerName:  w.Name,
		Kind:        kind,
		Message:     message,
		TimestampMs: t.now().UnixMilli(),
		Location:    loc,
		ZoneID:      zoneID,
	}
	t.alerts = append([]Alert{alert}, t.alerts...)
	if len(t.alerts) > alertLogCap {
		t.alerts = t.alerts[:alertLogCap]
	}
	return alert
}

// persist mirrors a zone mutation to the store. Store failures are logged
// and swallowed: the in-memory copy stays authoritative and tracking keeps
// running.
func (t *Tracker) persist(op func(ZoneStore) error, zoneID string) {
	if t.store == nil {
		return
	}
	if err := op(t.store); err != nil {
		logrus.WithError(err).WithField("zone_id", zoneID).Warn("Failed to persist zone change; in-memory state retained.")
	}
}
