package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"kazi_connect/internal/geofence"
)

// tracker is the process-wide geofence tracker, wired in from main once the
// database (and with it the persistent zone store) is up.
var tracker *geofence.Tracker

// InitTracker installs the tracker used by the zone and tracking endpoints.
func InitTracker(t *geofence.Tracker) {
	tracker = t
}

// ZoneResponse mirrors geofence.Zone with the center as a GeoJSON string for
// API output.
type ZoneResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Description  string  `json:"description,omitempty"`
	RadiusMeters float64 `json:"radius_meters"`
	Center       string  `json:"center"` // GeoJSON Point
}

func toZoneResponse(z geofence.Zone) ZoneResponse {
	center, err := encodeCenterGeoJSON(z.Center)
	if err != nil {
		logrus.WithError(err).WithField("zone_id", z.ID).Error("Failed to encode zone center as GeoJSON.")
	}
	return ZoneResponse{
		ID:           z.ID,
		Name:         z.Name,
		Kind:         z.Kind,
		Description:  z.Description,
		RadiusMeters: z.RadiusMeters,
		Center:       center,
	}
}

// parseCenterGeoJSON parses a GeoJSON Point string into a geofence point.
func parseCenterGeoJSON(raw string) (geofence.Point, error) {
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return geofence.Point{}, err
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return geofence.Point{}, errors.New("center must be a GeoJSON Point")
	}
	coords := pt.Coords()
	return geofence.Point{Lon: coords.X(), Lat: coords.Y()}, nil
}

// encodeCenterGeoJSON converts a point back into a GeoJSON string.
func encodeCenterGeoJSON(p geofence.Point) (string, error) {
	pt := geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}).SetSRID(4326)
	b, err := gjson.Marshal(pt)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateZone registers a new geofence zone. Admin use.
func CreateZone(c *gin.Context) {
	var input struct {
		Name         string  `json:"name" binding:"required"`
		Kind         string  `json:"kind"`
		Description  string  `json:"description"`
		RadiusMeters float64 `json:"radius_meters" binding:"required"`
		Center       string  `json:"center" binding:"required"` // GeoJSON Point
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateZone: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	center, err := parseCenterGeoJSON(input.Center)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid center geometry: " + err.Error()})
		return
	}

	if input.Kind == "" {
		input.Kind = geofence.ZoneKindWork
	}

	zone, err := tracker.AddZone(geofence.ZoneInput{
		Name:         input.Name,
		Center:       center,
		RadiusMeters: input.RadiusMeters,
		Kind:         input.Kind,
		Description:  input.Description,
	})
	if err != nil {
		if errors.Is(err, geofence.ErrInvalidZone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create zone: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"zone": toZoneResponse(zone)})
}

// ListZones returns all geofence zones.
func ListZones(c *gin.Context) {
	zones := tracker.ListZones()
	out := make([]ZoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, toZoneResponse(z))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// UpdateZone merges partial fields into an existing zone.
func UpdateZone(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Name         *string  `json:"name"`
		Kind         *string  `json:"kind"`
		Description  *string  `json:"description"`
		RadiusMeters *float64 `json:"radius_meters"`
		Center       *string  `json:"center"` // GeoJSON Point
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	upd := geofence.ZoneUpdate{
		Name:         input.Name,
		Kind:         input.Kind,
		Description:  input.Description,
		RadiusMeters: input.RadiusMeters,
	}
	if input.Center != nil {
		center, err := parseCenterGeoJSON(*input.Center)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid center geometry: " + err.Error()})
			return
		}
		upd.Center = &center
	}

	zone := tracker.UpdateZone(id, upd)
	if zone == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"zone": toZoneResponse(*zone)})
}

// DeleteZone removes a zone by id.
func DeleteZone(c *gin.Context) {
	id := c.Param("id")
	if !tracker.RemoveZone(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Zone deleted"})
}

// ListAlerts returns the tracker's alert log, optionally filtered.
func ListAlerts(c *gin.Context) {
	var alerts []geofence.Alert
	switch {
	case c.Query("worker_id") != "":
		alerts = tracker.GetWorkerAlerts(c.Query("worker_id"))
	case c.Query("unread") == "true":
		alerts = tracker.GetUnreadAlerts()
	default:
		alerts = tracker.GetAllAlerts()
	}
	if alerts == nil {
		alerts = []geofence.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

// MarkAlertRead flags a tracker alert as read. Unknown ids are a no-op.
func MarkAlertRead(c *gin.Context) {
	tracker.MarkAlertAsRead(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Alert marked as read"})
}
