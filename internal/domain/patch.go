package domain

// ProjectionPatch is the only mutation vocabulary for projection fields.
// It carries absolute values, never deltas, so applying the same patch
// twice (duplicate or out-of-order delivery) converges to the same
// document. Nil fields are left untouched.
type ProjectionPatch struct {
	NightlyPrice *float64
	Capacity     *int
	Amenities    []string // replaces the whole list when non-nil
}

func (p ProjectionPatch) IsZero() bool {
	return p.NightlyPrice == nil && p.Capacity == nil && p.Amenities == nil
}

// SummaryPatch retargets the state of one embedded reservation summary,
// matched by reservation id.
type SummaryPatch struct {
	ReservationID string
	State         ReservationState
}
