package geofence

import "sync"

// Zone kinds.
const (
	ZoneKindWork       = "work"
	ZoneKindRestricted = "restricted"
	ZoneKindSafe       = "safe"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Zone is a named circular region workers are tracked against.
type Zone struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Center       Point   `json:"center"`
	RadiusMeters float64 `json:"radius_meters"`
	Kind         string  `json:"kind"`
	Description  string  `json:"description,omitempty"`
}

// ZoneInput carries the operator-supplied fields for a new zone. The tracker
// assigns the id.
type ZoneInput struct {
	Name         string  `json:"name"`
	Center       Point   `json:"center"`
	RadiusMeters float64 `json:"radius_meters"`
	Kind         string  `json:"kind"`
	Description  string  `json:"description"`
}

// ZoneUpdate holds the fields that may be changed on an existing zone.
// Nil pointers leave the current value untouched.
type ZoneUpdate struct {
	Name         *string  `json:"name"`
	Center       *Point   `json:"center"`
	RadiusMeters *float64 `json:"radius_meters"`
	Kind         *string  `json:"kind"`
	Description  *string  `json:"description"`
}

// ZoneStore mirrors zone mutations to a persistence backend so the zone set
// survives restarts. The tracker keeps the authoritative in-memory copy and
// treats store failures as non-fatal.
type ZoneStore interface {
	Load() ([]Zone, error)
	Insert(z Zone) error
	Update(z Zone) error
	Delete(id string) error
}

// MemoryZoneStore is a ZoneStore backed by a map. Useful for tests and for
// deployments that do not need zones to survive a restart.
type MemoryZoneStore struct {
	mu    sync.Mutex
	zones map[string]Zone
}

func NewMemoryZoneStore() *MemoryZoneStore {
	return &MemoryZoneStore{zones: make(map[string]Zone)}
}

func (s *MemoryZoneStore) Load() ([]Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	return out, nil
}

func (s *MemoryZoneStore) Insert(z Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones[z.ID] = z
	return nil
}

func (s *MemoryZoneStore) Update(z Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones[z.ID] = z
	return nil
}

func (s *MemoryZoneStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.zones, id)
	return nil
}
