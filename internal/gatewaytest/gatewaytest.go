// FilePath: internal/gatewaytest/gatewaytest.go

// Package gatewaytest runs an in-memory stand-in for the platform gateway
// so client packages can be tested against real HTTP exchanges: auth with
// rotating tokens, plant/device CRUD, photo uploads and canned analytics
// data, plus request counters for polling and refresh-cycle assertions.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/models"
)

const (
	// DefaultEmail and DefaultPassword are the accepted login credentials.
	DefaultEmail    = "tester@plantsense.dev"
	DefaultPassword = "hunter2"

	tokenExpiresIn = 3600
)

// Gateway is the fake backend. All exported mutators are safe for
// concurrent use with in-flight requests.
type Gateway struct {
	Server *httptest.Server

	mu sync.Mutex

	user    models.User
	plants  map[string]*models.Plant
	devices map[string]*models.Device

	metrics []models.Metric
	latest  *models.LatestMeasurement
	trend   *models.TrendAnalysis
	health  models.AnalyticsHealth

	tokenSeq       int
	validAccess    map[string]bool
	refreshToken   string
	refreshRevoked bool
	rejectAccess   bool

	counts          map[string]int
	idempotencyKeys map[string][]string
}

// New starts the fake gateway.
func New() *Gateway {
	now := time.Now().UTC().Format(time.RFC3339)
	g := &Gateway{
		user: models.User{
			ID:        nuts.NID("usr", 12),
			Email:     DefaultEmail,
			FirstName: "Terra",
			LastName:  "Cotta",
			FullName:  "Terra Cotta",
			IsActive:  true,
			Roles:     []string{"user"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		plants:      make(map[string]*models.Plant),
		devices:     make(map[string]*models.Device),
		validAccess:     make(map[string]bool),
		counts:          make(map[string]int),
		idempotencyKeys: make(map[string][]string),
		health: models.AnalyticsHealth{
			Status:    "healthy",
			Service:   "analytics",
			InfluxDB:  "connected",
			Timestamp: now,
		},
	}

	router := mux.NewRouter()
	router.Use(g.countRequests)
	g.setupRoutes(router)
	g.Server = httptest.NewServer(handlers.RecoveryHandler()(router))
	return g
}

// Close shuts the fake gateway down.
func (g *Gateway) Close() {
	g.Server.Close()
}

// URL returns the base URL of the fake gateway.
func (g *Gateway) URL() string {
	return g.Server.URL
}

func (g *Gateway) setupRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", g.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", g.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", g.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", g.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/analytics/health", g.handleAnalyticsHealth).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(g.authenticate)

	protected.HandleFunc("/users/{id}", g.handleGetUser).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}", g.handleUpdateUser).Methods(http.MethodPut)
	protected.HandleFunc("/users/{id}/photo", g.handleUserPhoto).Methods(http.MethodPost)
	protected.HandleFunc("/users/{id}/photo", g.handleDeleteUserPhoto).Methods(http.MethodDelete)
	protected.HandleFunc("/users/{id}/photo/metadata", g.handleUserPhotoMetadata).Methods(http.MethodGet)

	protected.HandleFunc("/plants", g.handleListPlants).Methods(http.MethodGet)
	protected.HandleFunc("/plants", g.handleCreatePlant).Methods(http.MethodPost)
	protected.HandleFunc("/plants/{id}", g.handleGetPlant).Methods(http.MethodGet)
	protected.HandleFunc("/plants/{id}", g.handleUpdatePlant).Methods(http.MethodPut)
	protected.HandleFunc("/plants/{id}", g.handleDeletePlant).Methods(http.MethodDelete)
	protected.HandleFunc("/plants/{id}/photo", g.handlePlantPhoto).Methods(http.MethodPost)
	protected.HandleFunc("/plants/{id}/alerts", g.handlePlantAlerts).Methods(http.MethodGet)

	protected.HandleFunc("/devices", g.handleListDevices).Methods(http.MethodGet)
	protected.HandleFunc("/devices", g.handleCreateDevice).Methods(http.MethodPost)
	protected.HandleFunc("/devices/{id}", g.handleGetDevice).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id}", g.handleUpdateDevice).Methods(http.MethodPut)
	protected.HandleFunc("/devices/{id}", g.handleDeleteDevice).Methods(http.MethodDelete)

	protected.HandleFunc("/analytics/metrics", g.handleSupportedMetrics).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/latest/{controller}", g.handleLatest).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/report/{metric}", g.handleSingleReport).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/multi-report", g.handleMultiReport).Methods(http.MethodPost)
	protected.HandleFunc("/analytics/trends/{metric}", g.handleTrends).Methods(http.MethodGet)
}

// countRequests records one count per "METHOD /path/template" key.
func (g *Gateway) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				key := r.Method + " " + template
				g.mu.Lock()
				g.counts[key]++
				if ik := r.Header.Get("Idempotency-Key"); ik != "" {
					g.idempotencyKeys[key] = append(g.idempotencyKeys[key], ik)
				}
				g.mu.Unlock()
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Requests returns how often "METHOD /path/template" was served, e.g.
// Requests("GET /api/v1/analytics/latest/{controller}").
func (g *Gateway) Requests(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[key]
}

// IdempotencyKeys returns the Idempotency-Key header values seen on a
// "METHOD /path/template" route, in arrival order.
func (g *Gateway) IdempotencyKeys(key string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.idempotencyKeys[key]...)
}

// authenticate enforces a valid bearer token on protected routes.
func (g *Gateway) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		g.mu.Lock()
		valid := !g.rejectAccess && token != "" && g.validAccess[token]
		g.mu.Unlock()
		if !valid {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// issueTokens mints a fresh pair and registers the access token.
func (g *Gateway) issueTokens() models.Tokens {
	g.tokenSeq++
	access := fmt.Sprintf("access-%d", g.tokenSeq)
	refresh := fmt.Sprintf("refresh-%d", g.tokenSeq)
	g.validAccess[access] = true
	g.refreshToken = refresh
	return models.Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    tokenExpiresIn,
	}
}

// ExpireAccessTokens invalidates all issued access tokens so the next
// authenticated request gets a 401.
func (g *Gateway) ExpireAccessTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.validAccess = make(map[string]bool)
}

// RejectAllAccessTokens makes the protected routes answer 401 even for
// freshly issued tokens. Refresh keeps working, so clients that retry
// after a refresh hit a second 401.
func (g *Gateway) RejectAllAccessTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rejectAccess = true
}

// RevokeRefreshToken makes subsequent refresh calls fail with 401.
func (g *Gateway) RevokeRefreshToken() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshRevoked = true
}

// User returns the fixture account.
func (g *Gateway) User() models.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// AddPlant seeds a plant and returns it.
func (g *Gateway) AddPlant(name, species string) models.Plant {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	plant := &models.Plant{
		ID:        nuts.NID("plant", 12),
		Name:      name,
		Species:   species,
		UserID:    g.user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.plants[plant.ID] = plant
	return *plant
}

// AddDevice seeds a device and returns it.
func (g *Gateway) AddDevice(name string, category models.DeviceCategory) models.Device {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	device := &models.Device{
		ID:        nuts.NID("dev", 12),
		Name:      name,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.devices[device.ID] = device
	return *device
}

// Auth handlers

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var credentials models.LoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if credentials.Email != g.user.Email || credentials.Password != DefaultPassword {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid credentials"})
		return
	}
	tokens := g.issueTokens()
	respondJSON(w, http.StatusOK, models.AuthResponse{
		User:         g.user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var data models.RegisterData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data.Email == "" {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid registration data"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	g.user = models.User{
		ID:        nuts.NID("usr", 12),
		Email:     data.Email,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		FullName:  data.FirstName + " " + data.LastName,
		IsActive:  true,
		Roles:     []string{"user"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	tokens := g.issueTokens()
	respondJSON(w, http.StatusCreated, models.AuthResponse{
		User:         g.user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func (g *Gateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refreshRevoked || body.RefreshToken == "" || body.RefreshToken != g.refreshToken {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "refresh token rejected"})
		return
	}
	respondJSON(w, http.StatusOK, g.issueTokens())
}

func (g *Gateway) handleLogout(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.validAccess = make(map[string]bool)
	g.refreshToken = ""
	w.WriteHeader(http.StatusNoContent)
}

// User handlers

func (g *Gateway) handleGetUser(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if mux.Vars(r)["id"] != g.user.ID {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "user not found"})
		return
	}
	respondJSON(w, http.StatusOK, g.user)
}

func (g *Gateway) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var update models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if mux.Vars(r)["id"] != g.user.ID {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "user not found"})
		return
	}
	if update.FirstName != nil {
		g.user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		g.user.LastName = *update.LastName
	}
	if update.Email != nil {
		g.user.Email = *update.Email
	}
	g.user.FullName = g.user.FirstName + " " + g.user.LastName
	g.user.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	respondJSON(w, http.StatusOK, g.user)
}

func (g *Gateway) handleUserPhoto(w http.ResponseWriter, r *http.Request) {
	if _, _, err := r.FormFile("file"); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "missing file"})
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	url := "/static/" + g.user.ID + ".jpg"
	g.user.ProfilePhotoURL = &url
	respondJSON(w, http.StatusOK, g.user)
}

func (g *Gateway) handleDeleteUserPhoto(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user.ProfilePhotoURL = nil
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) handleUserPhotoMetadata(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]any{
		"has_photo": g.user.ProfilePhotoURL != nil,
	})
}

// Plant handlers

func (g *Gateway) handleListPlants(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	plants := make([]models.Plant, 0, len(g.plants))
	for _, plant := range g.plants {
		plants = append(plants, *plant)
	}
	respondJSON(w, http.StatusOK, plants)
}

func (g *Gateway) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	plant, ok := g.plants[mux.Vars(r)["id"]]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "plant not found"})
		return
	}
	respondJSON(w, http.StatusOK, plant)
}

func (g *Gateway) handleCreatePlant(w http.ResponseWriter, r *http.Request) {
	var data models.PlantCreate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data.Name == "" {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid plant data"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	plant := &models.Plant{
		ID:        nuts.NID("plant", 12),
		Name:      data.Name,
		Species:   data.Species,
		UserID:    data.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if data.Description != "" {
		plant.Description = &data.Description
	}
	g.plants[plant.ID] = plant
	respondJSON(w, http.StatusCreated, plant)
}

func (g *Gateway) handleUpdatePlant(w http.ResponseWriter, r *http.Request) {
	var data models.PlantUpdate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	plant, ok := g.plants[mux.Vars(r)["id"]]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "plant not found"})
		return
	}
	plant.Name = data.Name
	plant.Species = data.Species
	if data.Description != "" {
		plant.Description = &data.Description
	}
	plant.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	respondJSON(w, http.StatusOK, plant)
}

func (g *Gateway) handleDeletePlant(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := g.plants[id]; !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "plant not found"})
		return
	}
	delete(g.plants, id)
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) handlePlantPhoto(w http.ResponseWriter, r *http.Request) {
	_, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "missing file"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	plant, ok := g.plants[mux.Vars(r)["id"]]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "plant not found"})
		return
	}
	filename := header.Filename
	plant.PhotoFilename = &filename
	plant.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	respondJSON(w, http.StatusOK, plant)
}

func (g *Gateway) handlePlantAlerts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, []models.PlantAlert{})
}

// Device handlers

func (g *Gateway) handleListDevices(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	devices := make([]models.Device, 0, len(g.devices))
	for _, device := range g.devices {
		devices = append(devices, *device)
	}
	respondJSON(w, http.StatusOK, devices)
}

func (g *Gateway) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	device, ok := g.devices[mux.Vars(r)["id"]]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "device not found"})
		return
	}
	respondJSON(w, http.StatusOK, device)
}

func (g *Gateway) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var data models.DeviceCreate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data.Name == "" || !data.Category.Valid() {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid device data"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	device := &models.Device{
		ID:        nuts.NID("dev", 12),
		Name:      data.Name,
		Category:  data.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if data.Description != "" {
		device.Description = &data.Description
	}
	if data.Version != "" {
		device.Version = &data.Version
	}
	g.devices[device.ID] = device
	respondJSON(w, http.StatusCreated, device)
}

func (g *Gateway) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var data models.DeviceUpdate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	device, ok := g.devices[mux.Vars(r)["id"]]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "device not found"})
		return
	}
	device.Name = data.Name
	if data.Description != "" {
		device.Description = &data.Description
	}
	if data.Version != "" {
		device.Version = &data.Version
	}
	if data.Category != "" {
		device.Category = data.Category
	}
	device.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	respondJSON(w, http.StatusOK, device)
}

func (g *Gateway) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := g.devices[id]; !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "device not found"})
		return
	}
	delete(g.devices, id)
	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func queryInt(r *http.Request, name string) int {
	value, _ := strconv.Atoi(r.URL.Query().Get(name))
	return value
}
