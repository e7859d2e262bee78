package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"rooms_svc/internal/app"
	"rooms_svc/internal/domain"
)

type Handlers struct {
	Rooms        *app.RoomQueryService
	Reservations *app.ReservationService
	Master       *app.MasterService
	SearchRPS    int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	rps := h.SearchRPS
	if rps <= 0 {
		rps = 10
	}
	s.mux.With(RateLimit(rate.Limit(rps), rps*2)).Post("/v1/rooms/search", h.searchRooms)

	s.mux.Get("/v1/rooms", h.listRooms)
	s.mux.Get("/v1/rooms/{roomId}", h.getRoom)

	s.mux.Route("/v1/reservations", func(r chi.Router) {
		r.Get("/", h.listReservations)
		r.Post("/", h.createReservation)
		r.Post("/block", h.blockRoom)
		r.Post("/close", h.closeRoom)
		r.Get("/{id}", h.getReservation)
		r.Delete("/{id}", h.deleteReservation)
		r.Post("/{id}/payments", h.registerPayment)
		r.Post("/{id}/check-in", h.checkIn)
		r.Post("/{id}/check-out", h.checkOut)
		r.Post("/{id}/rating", h.addRating)
		r.Post("/{id}/cancel", h.cancelReservation)
	})

	// Thin master-data admin surface; every write here fans out as a
	// change event.
	s.mux.Route("/v1/master", func(r chi.Router) {
		r.Post("/rooms", h.saveMasterRoom)
		r.Put("/rooms/{id}", h.saveMasterRoom)
		r.Delete("/rooms/{id}", h.deleteMasterRoom)
		r.Post("/rates", h.createRate)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainErr maps the domain taxonomy onto HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeProblem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return false
	}
	return true
}

// ---- rooms & search ----

type searchRequest struct {
	CheckIn           *time.Time `json:"checkIn"`
	CheckOut          *time.Time `json:"checkOut"`
	GuestCount        *int       `json:"guestCount"`
	MinPrice          *float64   `json:"minPrice"`
	MaxPrice          *float64   `json:"maxPrice"`
	MinCategory       *int       `json:"minCategory"`
	MaxCategory       *int       `json:"maxCategory"`
	Amenities         []string   `json:"amenities"`
	Lat               *float64   `json:"lat"`
	Lon               *float64   `json:"long"`
	MaxDistanceMeters *float64   `json:"maxDistanceMeters"`
}

func (h *Handlers) searchRooms(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.Rooms.SearchAvailable(r.Context(), domain.SearchCriteria{
		CheckIn:           req.CheckIn,
		CheckOut:          req.CheckOut,
		GuestCount:        req.GuestCount,
		MinPrice:          req.MinPrice,
		MaxPrice:          req.MaxPrice,
		MinCategory:       req.MinCategory,
		MaxCategory:       req.MaxCategory,
		Amenities:         req.Amenities,
		Lat:               req.Lat,
		Lon:               req.Lon,
		MaxDistanceMeters: req.MaxDistanceMeters,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if out == nil {
		out = []domain.RoomProjection{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	out, err := h.Rooms.ListRooms(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if out == nil {
		out = []domain.RoomProjection{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roomId"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "roomId must be a number")
		return
	}
	room, err := h.Rooms.GetRoom(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// ---- reservations ----

type reservationRequest struct {
	RoomID     int64     `json:"roomId"`
	GuestID    string    `json:"guestId"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	TotalPrice float64   `json:"totalPrice"`
}

func (r reservationRequest) toDomain() domain.Reservation {
	return domain.Reservation{
		RoomID:     r.RoomID,
		GuestID:    r.GuestID,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		TotalPrice: r.TotalPrice,
	}
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Reservations.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Reservations.List(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if out == nil {
		out = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reservations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) deleteReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.Reservations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) registerPayment(w http.ResponseWriter, r *http.Request) {
	var p domain.Payment
	if !decodeJSON(w, r, &p) {
		return
	}
	res, err := h.Reservations.RegisterPayment(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) checkIn(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reservations.CheckIn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) checkOut(w http.ResponseWriter, r *http.Request) {
	// Host review is optional on check-out.
	var review *domain.Review
	if r.ContentLength != 0 {
		review = &domain.Review{}
		if !decodeJSON(w, r, review) {
			return
		}
	}
	res, err := h.Reservations.CheckOut(r.Context(), chi.URLParam(r, "id"), review)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) addRating(w http.ResponseWriter, r *http.Request) {
	var review domain.Review
	if !decodeJSON(w, r, &review) {
		return
	}
	res, err := h.Reservations.AddClientRating(r.Context(), chi.URLParam(r, "id"), review)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reservations.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) blockRoom(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Reservations.Block(r.Context(), req.toDomain())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) closeRoom(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Reservations.Close(r.Context(), req.toDomain())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ---- master admin ----

type masterRoomRequest struct {
	Number     string `json:"number"`
	RoomTypeID int64  `json:"roomTypeId"`
	HotelID    *int64 `json:"hotelId"`
}

func (h *Handlers) saveMasterRoom(w http.ResponseWriter, r *http.Request) {
	var req masterRoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	room := domain.Room{Number: req.Number, RoomTypeID: req.RoomTypeID, HotelID: req.HotelID}
	if idStr := chi.URLParam(r, "id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Input", "id must be a number")
			return
		}
		room.ID = id
	}
	saved, err := h.Master.SaveRoom(r.Context(), room)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	status := http.StatusOK
	if room.ID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (h *Handlers) deleteMasterRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "id must be a number")
		return
	}
	if err := h.Master.DeleteRoom(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rateRequest struct {
	RoomTypeID   int64      `json:"roomTypeId"`
	NightlyPrice float64    `json:"nightlyPrice"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
}

func (h *Handlers) createRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rate, err := h.Master.CreateRate(r.Context(), domain.Rate{
		RoomTypeID:   req.RoomTypeID,
		NightlyPrice: req.NightlyPrice,
		Start:        req.Start,
		End:          req.End,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rate)
}
