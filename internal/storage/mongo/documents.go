package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rooms_svc/internal/domain"
)

// geoPoint is GeoJSON: coordinates are [longitude, latitude].
type geoPoint struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

func newGeoPoint(lat, lon float64) geoPoint {
	return geoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

type hotelDoc struct {
	ID           int64    `bson:"id"`
	Name         string   `bson:"name"`
	Address      string   `bson:"address"`
	Location     geoPoint `bson:"location"`
	Phone        string   `bson:"phone,omitempty"`
	ContactEmail string   `bson:"contactEmail,omitempty"`
	Category     int      `bson:"category"`
}

type summaryDoc struct {
	ReservationID string    `bson:"reservationId"`
	CheckIn       time.Time `bson:"checkIn"`
	CheckOut      time.Time `bson:"checkOut"`
	TotalPrice    float64   `bson:"totalPrice"`
	State         string    `bson:"state"`
}

type roomDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RoomID       int64              `bson:"roomId"`
	Number       string             `bson:"number"`
	RoomTypeID   int64              `bson:"roomTypeId"`
	RoomTypeName string             `bson:"roomTypeName"`
	RoomTypeDesc string             `bson:"roomTypeDescription"`
	Capacity     int                `bson:"capacity"`
	NightlyPrice float64            `bson:"nightlyPrice"`
	Amenities    []string           `bson:"amenities"`
	Hotel        *hotelDoc          `bson:"hotel,omitempty"`
	Reservations []summaryDoc       `bson:"reservations"`
}

type paymentDoc struct {
	Method        string    `bson:"method"`
	TransactionID string    `bson:"transactionId"`
	Amount        float64   `bson:"amount"`
	Status        string    `bson:"status"`
	Date          time.Time `bson:"date"`
}

type reviewDoc struct {
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

type reservationDoc struct {
	ID           string       `bson:"_id"`
	RoomID       int64        `bson:"roomId"`
	GuestID      string       `bson:"guestId,omitempty"`
	CheckIn      time.Time    `bson:"checkIn"`
	CheckOut     time.Time    `bson:"checkOut"`
	TotalPrice   float64      `bson:"totalPrice"`
	Payments     []paymentDoc `bson:"payments"`
	State        string       `bson:"state"`
	Status       string       `bson:"status"`
	HostReview   *reviewDoc   `bson:"hostReview,omitempty"`
	ClientReview *reviewDoc   `bson:"clientReview,omitempty"`
}

// ---- mappers ----

func toHotelDoc(h *domain.HotelSnapshot) *hotelDoc {
	if h == nil {
		return nil
	}
	return &hotelDoc{
		ID:           h.ID,
		Name:         h.Name,
		Address:      h.Address,
		Location:     newGeoPoint(h.Lat, h.Lon),
		Phone:        h.Phone,
		ContactEmail: h.ContactEmail,
		Category:     h.Category,
	}
}

func fromHotelDoc(h *hotelDoc) *domain.HotelSnapshot {
	if h == nil {
		return nil
	}
	return &domain.HotelSnapshot{
		ID:           h.ID,
		Name:         h.Name,
		Address:      h.Address,
		Lat:          h.Location.Coordinates[1],
		Lon:          h.Location.Coordinates[0],
		Phone:        h.Phone,
		ContactEmail: h.ContactEmail,
		Category:     h.Category,
	}
}

func toSummaryDoc(s domain.ReservationSummary) summaryDoc {
	return summaryDoc{
		ReservationID: s.ReservationID,
		CheckIn:       s.CheckIn,
		CheckOut:      s.CheckOut,
		TotalPrice:    s.TotalPrice,
		State:         string(s.State),
	}
}

func fromRoomDoc(d roomDoc) domain.RoomProjection {
	summaries := make([]domain.ReservationSummary, 0, len(d.Reservations))
	for _, s := range d.Reservations {
		summaries = append(summaries, domain.ReservationSummary{
			ReservationID: s.ReservationID,
			CheckIn:       s.CheckIn,
			CheckOut:      s.CheckOut,
			TotalPrice:    s.TotalPrice,
			State:         domain.ReservationState(s.State),
		})
	}
	p := domain.RoomProjection{
		RoomID:       d.RoomID,
		Number:       d.Number,
		RoomTypeID:   d.RoomTypeID,
		RoomTypeName: d.RoomTypeName,
		RoomTypeDesc: d.RoomTypeDesc,
		Capacity:     d.Capacity,
		NightlyPrice: d.NightlyPrice,
		Amenities:    d.Amenities,
		Hotel:        fromHotelDoc(d.Hotel),
		Reservations: summaries,
	}
	if !d.ID.IsZero() {
		p.ID = d.ID.Hex()
	}
	return p
}

func toReservationDoc(r domain.Reservation) reservationDoc {
	payments := make([]paymentDoc, 0, len(r.Payments))
	for _, p := range r.Payments {
		payments = append(payments, paymentDoc{
			Method:        p.Method,
			TransactionID: p.TransactionID,
			Amount:        p.Amount,
			Status:        string(p.Status),
			Date:          p.Date,
		})
	}
	return reservationDoc{
		ID:           r.ID,
		RoomID:       r.RoomID,
		GuestID:      r.GuestID,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		TotalPrice:   r.TotalPrice,
		Payments:     payments,
		State:        string(r.State),
		Status:       r.Status,
		HostReview:   toReviewDoc(r.HostReview),
		ClientReview: toReviewDoc(r.ClientReview),
	}
}

func fromReservationDoc(d reservationDoc) domain.Reservation {
	payments := make([]domain.Payment, 0, len(d.Payments))
	for _, p := range d.Payments {
		payments = append(payments, domain.Payment{
			Method:        p.Method,
			TransactionID: p.TransactionID,
			Amount:        p.Amount,
			Status:        domain.PaymentStatus(p.Status),
			Date:          p.Date,
		})
	}
	return domain.Reservation{
		ID:           d.ID,
		RoomID:       d.RoomID,
		GuestID:      d.GuestID,
		CheckIn:      d.CheckIn,
		CheckOut:     d.CheckOut,
		TotalPrice:   d.TotalPrice,
		Payments:     payments,
		State:        domain.ReservationState(d.State),
		Status:       d.Status,
		HostReview:   fromReviewDoc(d.HostReview),
		ClientReview: fromReviewDoc(d.ClientReview),
	}
}

func toReviewDoc(r *domain.Review) *reviewDoc {
	if r == nil {
		return nil
	}
	return &reviewDoc{Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
}

func fromReviewDoc(r *reviewDoc) *domain.Review {
	if r == nil {
		return nil
	}
	return &domain.Review{Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
}
