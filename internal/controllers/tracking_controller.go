package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"kazi_connect/internal/config"
	"kazi_connect/internal/geofence"
	"kazi_connect/internal/middleware"
	"kazi_connect/internal/models"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// trackingFrame defines the format of incoming JSON from a worker's device.
// Type selects between a location ping and an SOS.
type trackingFrame struct {
	Type      string    `json:"type"` // "location" or "sos"
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // GPS accuracy in meters
	Speed     float64   `json:"speed"`    // Speed in m/s
	Message   string    `json:"message"`  // SOS only
	Timestamp time.Time `json:"timestamp"`
}

// UnmarshalJSON handles devices that send timestamps without a timezone
// suffix by assuming UTC.
func (f *trackingFrame) UnmarshalJSON(data []byte) error {
	type alias trackingFrame
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*alias
	}{alias: (*alias)(f)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ts := aux.Timestamp
	if ts == "" {
		f.Timestamp = time.Now().UTC()
		return nil
	}
	if !strings.HasSuffix(ts, "Z") {
		if len(ts) < 6 || !strings.ContainsAny(ts[len(ts)-6:], "+-") {
			ts += "Z"
		}
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"raw_timestamp": aux.Timestamp,
			"parse_error":   err,
		}).Error("Failed to parse tracking frame timestamp.")
		return fmt.Errorf("invalid timestamp %q: %w", aux.Timestamp, err)
	}
	f.Timestamp = t
	return nil
}

// workerPresence records the last sighting of a connected worker for the
// inactivity sweep.
type workerPresence struct {
	worker geofence.Worker
	last   geofence.Point
	seenAt time.Time
}

// TrackingHub fans location updates and alerts out to monitoring clients
// (admins and businesses) and watches connected workers for inactivity.
type TrackingHub struct {
	monitors  map[*websocket.Conn]bool
	broadcast chan map[string]interface{}
	lastSeen  map[string]workerPresence
	mu        sync.Mutex
}

// inactivityThreshold is how long a connected worker may stay silent before
// the hub raises an inactivity alert for them.
const inactivityThreshold = 5 * time.Minute

// NewTrackingHub creates a hub and starts its broadcast and inactivity-sweep
// goroutines.
func NewTrackingHub() *TrackingHub {
	hub := &TrackingHub{
		monitors:  make(map[*websocket.Conn]bool),
		broadcast: make(chan map[string]interface{}, 100),
		lastSeen:  make(map[string]workerPresence),
	}
	go hub.run()
	go hub.sweepInactivity()
	return hub
}

// run delivers broadcast messages to every monitoring client.
func (h *TrackingHub) run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		for conn := range h.monitors {
			go func(c *websocket.Conn, m map[string]interface{}) {
				if err := c.WriteJSON(m); err != nil {
					if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
						logrus.WithField("conn_ptr", fmt.Sprintf("%p", c)).Info("Monitor connection closed during broadcast, unregistering.")
						h.UnregisterMonitor(c)
					} else {
						logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", c)).Warn("Failed to send broadcast message to monitor.")
					}
				}
			}(conn, msg)
		}
		h.mu.Unlock()
	}
}

// sweepInactivity periodically raises inactivity alerts for connected
// workers that have gone silent. The alert fires once; the worker re-arms
// the sweep with their next ping.
func (h *TrackingHub) sweepInactivity() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		var stale []workerPresence
		h.mu.Lock()
		for id, p := range h.lastSeen {
			if time.Since(p.seenAt) >= inactivityThreshold {
				stale = append(stale, p)
				delete(h.lastSeen, id)
			}
		}
		h.mu.Unlock()

		for _, p := range stale {
			last := p.last
			alert := tracker.CreateInactivityAlert(p.worker, &last)
			logrus.WithFields(logrus.Fields{
				"worker_id": p.worker.ID,
				"alert_id":  alert.ID,
			}).Warn("Worker inactive beyond threshold.")
			h.PublishAlert(alert)
			notifyAdmins(models.NotificationInactivity, "Worker inactive", alert.Message)
		}
	}
}

// RegisterMonitor registers a monitoring client connection with the hub.
func (h *TrackingHub) RegisterMonitor(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.monitors[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Monitor registered with TrackingHub.")
}

// UnregisterMonitor removes a disconnected monitoring client.
func (h *TrackingHub) UnregisterMonitor(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.monitors, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Monitor unregistered from TrackingHub.")
}

// touchWorker records a worker sighting for the inactivity sweep.
func (h *TrackingHub) touchWorker(w geofence.Worker, lat, lon float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSeen[w.ID] = workerPresence{
		worker: w,
		last:   geofence.Point{Lat: lat, Lon: lon},
		seenAt: time.Now(),
	}
}

// forgetWorker drops the worker from the inactivity sweep on disconnect.
func (h *TrackingHub) forgetWorker(workerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lastSeen, workerID)
}

// Publish queues a message for broadcast to monitors, dropping it if the
// channel is full.
func (h *TrackingHub) Publish(data map[string]interface{}) {
	select {
	case h.broadcast <- data:
	default:
		logrus.Warn("Tracking broadcast channel full, dropping message.")
	}
}

// PublishAlert broadcasts a geofence alert to monitors.
func (h *TrackingHub) PublishAlert(alert geofence.Alert) {
	h.Publish(map[string]interface{}{
		"type":  "alert",
		"alert": alert,
	})
}

var trackingHub = NewTrackingHub()

// authenticateForWebSocket validates the JWT token from the query string and
// resolves the caller's role. Workers additionally get their worker record.
func authenticateForWebSocket(c *gin.Context) (claims *middleware.Claims, worker *models.Worker, err error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		logrus.Warn("WebSocket connection attempt: Missing token query parameter.")
		return nil, nil, errors.New("missing authentication token")
	}

	claims, err = middleware.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token: %w", err)
	}

	switch claims.Role {
	case "worker":
		var w models.Worker
		if err := config.DB.Where("user_id = ?", claims.UserID).First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("worker profile not found for user ID %d", claims.UserID)
			}
			return nil, nil, fmt.Errorf("database error fetching worker profile for user ID %d: %w", claims.UserID, err)
		}
		return claims, &w, nil
	case "admin", "business":
		return claims, nil, nil
	default:
		return nil, nil, errors.New("unauthorized role for WebSocket connection")
	}
}

// HandleTrackingWebSocket is the Gin handler for all tracking WebSocket
// connections. Workers send location and SOS frames; admins and businesses
// receive the resulting updates and alerts.
func HandleTrackingWebSocket(c *gin.Context) {
	claims, worker, authErr := authenticateForWebSocket(c)
	if authErr != nil {
		logrus.WithError(authErr).Warn("WebSocket connection attempt failed.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	if claims.Role == "worker" {
		handleWorkerWebSocket(conn, worker)
	} else {
		handleMonitorWebSocket(conn, claims)
	}
}

// handleWorkerWebSocket reads tracking frames from a worker's device.
func handleWorkerWebSocket(conn *websocket.Conn, worker *models.Worker) {
	logrus.WithFields(logrus.Fields{
		"worker_id": worker.ID,
		"conn_ptr":  fmt.Sprintf("%p", conn),
	}).Info("Worker WebSocket connection established.")

	gw := geofence.Worker{
		ID:   strconv.FormatUint(uint64(worker.ID), 10),
		Name: worker.Name,
	}
	defer trackingHub.forgetWorker(gw.ID)

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("worker_id", worker.ID).Info("Worker WebSocket closed.")
			} else {
				logrus.WithError(err).Errorf("Error reading WebSocket message from Worker ID %d", worker.ID)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var frame trackingFrame
		if err := json.Unmarshal(p, &frame); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"worker_id": worker.ID,
				"payload":   string(p),
			}).Error("Error unmarshaling tracking frame from worker.")
			conn.WriteJSON(gin.H{"error": "Invalid tracking frame format. Check timestamp format."})
			continue
		}

		switch frame.Type {
		case "sos":
			processWorkerSOS(conn, frame, worker, gw)
		case "location", "":
			processWorkerLocation(conn, frame, worker, gw)
		default:
			conn.WriteJSON(gin.H{"error": fmt.Sprintf("unknown frame type %q", frame.Type)})
		}
	}
}

// handleMonitorWebSocket manages an admin or business monitoring connection.
func handleMonitorWebSocket(conn *websocket.Conn, claims *middleware.Claims) {
	logrus.WithFields(logrus.Fields{
		"user_id":  claims.UserID,
		"role":     claims.Role,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Monitor WebSocket connection established.")

	trackingHub.RegisterMonitor(conn)
	defer trackingHub.UnregisterMonitor(conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("user_id", claims.UserID).Info("Monitor WebSocket closed.")
			} else {
				logrus.WithError(err).Errorf("Error reading WebSocket message from monitor (User ID %d)", claims.UserID)
			}
			break
		}
		logrus.WithField("user_id", claims.UserID).Warn("Monitor client sent unexpected message. Ignoring.")
	}
}

// processWorkerSOS records and fans out an SOS alert.
func processWorkerSOS(conn *websocket.Conn, frame trackingFrame, worker *models.Worker, gw geofence.Worker) {
	alert := tracker.CreateSOSAlert(gw, frame.Latitude, frame.Longitude, frame.Message)

	logrus.WithFields(logrus.Fields{
		"worker_id": worker.ID,
		"alert_id":  alert.ID,
		"latitude":  frame.Latitude,
		"longitude": frame.Longitude,
	}).Warn("SOS alert received from worker.")

	trackingHub.PublishAlert(alert)
	notifyAdmins(models.NotificationSOS, "SOS alert", alert.Message)

	conn.WriteJSON(gin.H{"status": "sos_recorded", "alert_id": alert.ID})
}

// processWorkerLocation persists a significant location ping, runs it
// through the geofence tracker, and fans out the resulting alerts.
func processWorkerLocation(conn *websocket.Conn, frame trackingFrame, worker *models.Worker, gw geofence.Worker) {
	trackingHub.touchWorker(gw, frame.Latitude, frame.Longitude)

	// Fetch the last known location for this worker from the database.
	var lastLocation models.LocationHistory
	err := config.DB.Where("worker_id = ?", worker.ID).Order("created_at desc").First(&lastLocation).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Errorf("Database error fetching last location for Worker ID %d", worker.ID)
		conn.WriteJSON(gin.H{"error": "Database error fetching last location."})
		return
	}

	var distance, timeDiff float64
	if lastLocation.ID != 0 {
		distance = geofence.DistanceMeters(lastLocation.Latitude, lastLocation.Longitude, frame.Latitude, frame.Longitude)
		timeDiff = frame.Timestamp.Sub(lastLocation.Timestamp).Seconds()
	}

	speed := frame.Speed
	if speed < 0 {
		speed = 0
	}

	isSignificant, eventType := shouldSaveLocation(distance, speed, timeDiff, lastLocation)
	if isSignificant {
		saveLocation(conn, frame, worker, distance, speed > 0.5, eventType)
	} else {
		conn.WriteJSON(gin.H{"status": "received", "event_type": "insignificant"})
		logrus.WithFields(logrus.Fields{
			"worker_id":  worker.ID,
			"distance_m": fmt.Sprintf("%.2f", distance),
		}).Debug("Worker location received - minor movement, not saved.")
	}

	// Geofence evaluation runs on every ping: boundary crossings matter even
	// when the movement is too small to be worth persisting.
	alerts := tracker.UpdateWorkerLocation(gw, frame.Latitude, frame.Longitude)
	for _, alert := range alerts {
		trackingHub.PublishAlert(alert)
		kind := models.NotificationZoneEntry
		if alert.Kind == geofence.AlertZoneExit {
			kind = models.NotificationZoneExit
		}
		notifyAdmins(kind, "Zone alert", alert.Message)
		logrus.WithFields(logrus.Fields{
			"worker_id": worker.ID,
			"zone_id":   alert.ZoneID,
			"kind":      alert.Kind,
		}).Info("Geofence alert raised.")
	}
	if len(alerts) > 0 {
		conn.WriteJSON(gin.H{"status": "alerts_raised", "alerts": alerts})
	}
}

// saveLocation persists the ping and publishes it to monitoring clients.
func saveLocation(conn *websocket.Conn, frame trackingFrame, worker *models.Worker, distance float64, isMoving bool, eventType string) {
	record := models.LocationHistory{
		WorkerID:         worker.ID,
		Latitude:         frame.Latitude,
		Longitude:        frame.Longitude,
		Accuracy:         frame.Accuracy,
		Speed:            frame.Speed,
		IsMoving:         isMoving,
		DistanceFromLast: distance,
		Timestamp:        frame.Timestamp,
		EventType:        eventType,
	}

	if err := config.DB.Create(&record).Error; err != nil {
		logrus.WithError(err).Errorf("Failed to save location for Worker ID %d", worker.ID)
		conn.WriteJSON(gin.H{"error": "Failed to save location."})
		return
	}

	conn.WriteJSON(gin.H{
		"status":      "saved",
		"event_type":  eventType,
		"distance":    distance,
		"is_moving":   isMoving,
		"timestamp":   frame.Timestamp.Format(time.RFC3339Nano),
		"sequence_id": record.ID,
	})

	trackingHub.Publish(map[string]interface{}{
		"type":        "location",
		"worker_id":   worker.ID,
		"worker_name": worker.Name,
		"latitude":    frame.Latitude,
		"longitude":   frame.Longitude,
		"accuracy":    frame.Accuracy,
		"speed":       frame.Speed,
		"timestamp":   frame.Timestamp.Format(time.RFC3339Nano),
		"event_type":  eventType,
		"is_moving":   isMoving,
		"sequence_id": record.ID,
	})
}

// shouldSaveLocation decides if a location update is significant enough to
// persist.
func shouldSaveLocation(distance, speed, timeDiff float64, lastLocation models.LocationHistory) (bool, string) {
	const minDistanceForSave = 5.0
	const minTimeDiffForSave = 10.0
	const minSpeedForMoving = 0.5
	const maxSpeedForStopped = 1.0

	if lastLocation.ID == 0 {
		return true, "initial"
	}

	if distance >= minDistanceForSave {
		return true, "move"
	}

	if lastLocation.IsMoving && speed < maxSpeedForStopped && timeDiff >= minTimeDiffForSave {
		return true, "stopped"
	}

	if !lastLocation.IsMoving && speed >= minSpeedForMoving && timeDiff >= minTimeDiffForSave {
		return true, "started"
	}

	const periodicSaveInterval = 60 * time.Second
	if time.Since(lastLocation.Timestamp) >= periodicSaveInterval {
		return true, "periodic"
	}

	return false, "insignificant"
}

// ListRecentLocations returns the latest persisted pings. Administrative use.
func ListRecentLocations(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	var locations []models.LocationHistory
	query := config.DB.Order("created_at desc").Limit(limit)
	if workerID := c.Query("worker_id"); workerID != "" {
		query = query.Where("worker_id = ?", workerID)
	}
	if err := query.Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing locations: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": locations})
}
