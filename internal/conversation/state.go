// Package conversation is the per-user dialog state machine. Step is a pure
// function over (session, event); side effects are returned as values and
// executed by the transport layer, which keeps the dialog logic testable
// without Telegram.
package conversation

// State identifies a dialog step.
type State string

const (
	// StateBrowsing is the initial and resting state.
	StateBrowsing State = "browsing"
	// StateAwaitingCartItem means one item is chosen but not checked out.
	StateAwaitingCartItem State = "awaiting_cart_item"
	// StateWaitingReservationDate expects the reservation date as free text.
	StateWaitingReservationDate State = "waiting_reservation_date"
	// StateWaitingReservationTime expects the reservation time as free text.
	StateWaitingReservationTime State = "waiting_reservation_time"
	// StateWaitingReservationPeople expects the party size as free text.
	StateWaitingReservationPeople State = "waiting_reservation_people"
)

// Scratch holds the transient values carried between dialog turns. It is
// cleared whenever a flow completes or restarts.
type Scratch struct {
	Item  string
	Price int
	Date  string
	Time  string
}

// Session is the full transient dialog state of one user.
type Session struct {
	State   State
	Scratch Scratch
}

// NewSession returns a fresh browsing session with empty scratch data.
func NewSession() Session {
	return Session{State: StateBrowsing}
}
