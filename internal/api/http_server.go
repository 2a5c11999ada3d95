package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"driveshare/internal/catalog"
	"driveshare/internal/config"
	"driveshare/internal/database"
	"driveshare/internal/domain"
	"driveshare/internal/export"
	"driveshare/internal/geocode"
	"driveshare/internal/identity"
	"driveshare/internal/metrics"
	"driveshare/internal/models"
	"driveshare/internal/service"
	"driveshare/internal/watch"
)

// HTTPServer exposes the marketplace API.
type HTTPServer struct {
	cfg      config.APIConfig
	listings domain.ListingService
	bookings domain.BookingService
	catalog  *catalog.Client
	hub      *watch.Hub
	exporter *export.Exporter
	server   *http.Server
	auth     *HTTPAuth
}

func NewHTTPServer(
	cfg config.APIConfig,
	listings domain.ListingService,
	bookings domain.BookingService,
	catalogClient *catalog.Client,
	hub *watch.Hub,
	exporter *export.Exporter,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		listings: listings,
		bookings: bookings,
		catalog:  catalogClient,
		hub:      hub,
		exporter: exporter,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/catalog", srv.handleCatalog)
	mux.HandleFunc("/api/v1/listings", srv.handleListings)
	mux.HandleFunc("/api/v1/listings/draft", srv.handleDraft)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/watch", srv.handleWatch)
	mux.HandleFunc("/api/v1/bookings/export", srv.handleExport)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingAction)

	handler := loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	log.Printf("HTTP API listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GET /api/v1/catalog?make=au
func (s *HTTPServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("catalog")

	entries, err := s.catalog.Fetch(r.Context())
	if err != nil {
		// The catalog is reference data; an unreachable source renders
		// as an empty catalog rather than a failed request.
		writeJSON(w, http.StatusOK, map[string]any{"vehicles": []models.VehicleCatalogEntry{}})
		return
	}

	matched := catalog.Search(entries, r.URL.Query().Get("make"))
	if matched == nil {
		matched = []models.VehicleCatalogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": matched})
}

// POST /api/v1/listings submits a draft; GET lists (mine by default,
// ?scope=all for everything).
func (s *HTTPServer) handleListings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		metrics.IncHTTP("listings_submit")

		var draft models.ListingDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		listing, err := s.listings.Submit(r.Context(), &draft)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, listing)

	case http.MethodGet:
		metrics.IncHTTP("listings_list")

		var (
			listings []models.Listing
			err      error
		)
		if r.URL.Query().Get("scope") == "all" {
			listings, err = s.listings.AllListings(r.Context())
		} else {
			listings, err = s.listings.OwnerListings(r.Context())
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if listings == nil {
			listings = []models.Listing{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"listings": listings})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET /api/v1/listings/draft returns the caller's saved draft; PUT
// stores it.
func (s *HTTPServer) handleDraft(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		draft, err := s.listings.Draft(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if draft == nil {
			writeJSON(w, http.StatusOK, map[string]any{"draft": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"draft": draft})

	case http.MethodPut:
		var draft models.ListingDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.listings.SaveDraft(r.Context(), &draft); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// POST /api/v1/bookings creates a booking request; GET lists the
// caller's bookings as owner.
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		metrics.IncHTTP("bookings_create")

		var booking models.Booking
		if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(booking.Owner) == "" || strings.TrimSpace(booking.BookingDate) == "" {
			writeError(w, http.StatusBadRequest, "owner and booking_date are required")
			return
		}

		created, err := s.bookings.Create(r.Context(), &booking)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		metrics.IncHTTP("bookings_list")

		bookings, err := s.bookings.OwnerBookings(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if bookings == nil {
			bookings = []models.Booking{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// POST /api/v1/bookings/{id}/approve or /decline, with an optional
// {"version": n} body for the optimistic guard.
func (s *HTTPServer) handleBookingAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	bookingID, action := parts[0], parts[1]

	var body struct {
		Version int64 `json:"version"`
	}
	if r.Body != nil {
		// An empty body means "resolve whatever is current"
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	var (
		booking *models.Booking
		err     error
	)
	switch action {
	case "approve":
		metrics.IncHTTP("bookings_approve")
		booking, err = s.bookings.Approve(r.Context(), bookingID, body.Version)
	case "decline":
		metrics.IncHTTP("bookings_decline")
		booking, err = s.bookings.Decline(r.Context(), bookingID, body.Version)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// GET /api/v1/bookings/watch streams the caller's booking snapshots as
// server-sent events until the client disconnects.
func (s *HTTPServer) handleWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	owner, ok := identity.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no authenticated user")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	metrics.IncHTTP("bookings_watch")

	snapshots, cancel, err := s.hub.Watch(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open stream")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// GET /api/v1/bookings/export writes the caller's bookings to an XLSX
// file and serves it.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	owner, ok := identity.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no authenticated user")
		return
	}
	metrics.IncHTTP("bookings_export")

	bookings, err := s.bookings.OwnerBookings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	path, err := s.exporter.OwnerBookings(owner, bookings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=bookings.xlsx")
	http.ServeFile(w, r, path)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmptyAddress):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, geocode.ErrNoMatch):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, geocode.ErrUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, service.ErrNotBookingOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrAlreadyResolved),
		errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrListingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)
		log.Printf("http method=%s path=%s status=%d dur=%s", r.Method, r.URL.Path, recorder.status, dur)
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush lets the logging middleware wrap SSE responses.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
