package domain

import "time"

type ReservationState string

const (
	StateReservada  ReservationState = "RESERVADA"  // created, no payment yet
	StateConfirmada ReservationState = "CONFIRMADA" // at least one approved payment
	StateEfectuada  ReservationState = "EFECTUADA"  // guest checked in
	StateFinalizada ReservationState = "FINALIZADA" // checked out, reviewed and fully paid
	StateAdeudada   ReservationState = "ADEUDADA"   // checked out owing payment or review
	StateCancelada  ReservationState = "CANCELADA"  // cancelled before any payment
	StateBloqueada  ReservationState = "BLOQUEADA"  // owner block, room not offered
	StateCerrada    ReservationState = "CERRADA"    // owner closed the room
)

// BlocksAvailability reports whether a summary in this state makes its
// date range unavailable. RESERVADA holds nothing; cancelled and
// checked-out states no longer occupy the room.
func (s ReservationState) BlocksAvailability() bool {
	switch s {
	case StateConfirmada, StateEfectuada, StateBloqueada, StateCerrada:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentPending  PaymentStatus = "PENDING"
	PaymentRejected PaymentStatus = "REJECTED"
)

// Payment is an already-resolved fact from the payment side; entries are
// appended to a reservation and never mutated or removed.
type Payment struct {
	Method        string        `json:"method"`
	TransactionID string        `json:"transactionId"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	Date          time.Time     `json:"date"`
}

type Review struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reservation is owned exclusively by the ledger; the room projection only
// carries a derived summary of it.
type Reservation struct {
	ID           string           `json:"id"`
	RoomID       int64            `json:"roomId"`
	GuestID      string           `json:"guestId,omitempty"`
	CheckIn      time.Time        `json:"checkIn"`
	CheckOut     time.Time        `json:"checkOut"`
	TotalPrice   float64          `json:"totalPrice"`
	Payments     []Payment        `json:"payments"`
	State        ReservationState `json:"state"`
	Status       string           `json:"status"` // human-readable mirror of State
	HostReview   *Review          `json:"hostReview,omitempty"`
	ClientReview *Review          `json:"clientReview,omitempty"`
}

// SetState keeps the status mirror in lockstep with the state.
func (r *Reservation) SetState(s ReservationState) {
	r.State = s
	r.Status = string(s)
}

// ApprovedTotal sums the amounts of APPROVED payments.
func (r *Reservation) ApprovedTotal() float64 {
	var sum float64
	for _, p := range r.Payments {
		if p.Status == PaymentApproved {
			sum += p.Amount
		}
	}
	return sum
}

// HasApprovedPayment reports whether any payment was approved.
func (r *Reservation) HasApprovedPayment() bool {
	for _, p := range r.Payments {
		if p.Status == PaymentApproved {
			return true
		}
	}
	return false
}

// Summary derives the projection-embedded record for this reservation.
func (r *Reservation) Summary() ReservationSummary {
	return ReservationSummary{
		ReservationID: r.ID,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		TotalPrice:    r.TotalPrice,
		State:         r.State,
	}
}
