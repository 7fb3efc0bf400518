package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"

	"kazi_connect/internal/geofence"
	"kazi_connect/internal/models"
)

// GormZoneStore persists geofence zones to Postgres. Zone centers are stored
// as WKB POINTs (SRID 4326) so they remain queryable with PostGIS.
type GormZoneStore struct {
	db *gorm.DB
}

func NewGormZoneStore(db *gorm.DB) *GormZoneStore {
	return &GormZoneStore{db: db}
}

// Load returns every persisted zone. Rows whose center bytes fail to decode
// are skipped with a warning so one bad row cannot take tracking down.
func (s *GormZoneStore) Load() ([]geofence.Zone, error) {
	var rows []models.Zone
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	zones := make([]geofence.Zone, 0, len(rows))
	for _, row := range rows {
		center, err := decodeCenter(row.Center)
		if err != nil {
			logrus.WithError(err).WithField("zone_id", row.ID).Warn("Skipping zone with undecodable center geometry.")
			continue
		}
		zones = append(zones, geofence.Zone{
			ID:           row.ID,
			Name:         row.Name,
			Center:       center,
			RadiusMeters: row.RadiusMeters,
			Kind:         row.Kind,
			Description:  row.Description,
		})
	}
	return zones, nil
}

func (s *GormZoneStore) Insert(z geofence.Zone) error {
	row, err := toRow(z)
	if err != nil {
		return err
	}
	return s.db.Create(&row).Error
}

func (s *GormZoneStore) Update(z geofence.Zone) error {
	row, err := toRow(z)
	if err != nil {
		return err
	}
	return s.db.Save(&row).Error
}

func (s *GormZoneStore) Delete(id string) error {
	return s.db.Delete(&models.Zone{}, "id = ?", id).Error
}

func toRow(z geofence.Zone) (models.Zone, error) {
	center, err := encodeCenter(z.Center)
	if err != nil {
		return models.Zone{}, err
	}
	return models.Zone{
		ID:           z.ID,
		Name:         z.Name,
		Kind:         z.Kind,
		Description:  z.Description,
		RadiusMeters: z.RadiusMeters,
		Center:       center,
	}, nil
}

// encodeCenter converts a point into WKB bytes (X = lon, Y = lat).
func encodeCenter(p geofence.Point) ([]byte, error) {
	pt := geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}).SetSRID(4326)
	return wkb.Marshal(pt, binary.LittleEndian)
}

// decodeCenter converts WKB bytes back into a point.
func decodeCenter(raw []byte) (geofence.Point, error) {
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return geofence.Point{}, err
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return geofence.Point{}, fmt.Errorf("expected POINT geometry, got %T", g)
	}
	coords := pt.Coords()
	return geofence.Point{Lon: coords.X(), Lat: coords.Y()}, nil
}
