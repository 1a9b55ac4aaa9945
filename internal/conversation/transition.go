package conversation

import (
	"strconv"
	"strings"
)

// Step applies one event to a session and returns the next session plus the
// effects to execute. It never touches storage or the network.
func Step(sess Session, ev Event) (Session, []Effect) {
	switch e := ev.(type) {
	case Start:
		// Restart always resets the dialog, even mid-reservation.
		return NewSession(), []Effect{ShowMain{}}

	case ShowMenu:
		return sess, []Effect{ShowCategories{}}

	case CategoryChosen:
		return sess, []Effect{ShowItems{Category: e.Name}}

	case ItemChosen:
		// The cart holds exactly one pending item; a new selection
		// overwrites whatever was chosen before.
		sess.State = StateAwaitingCartItem
		sess.Scratch = Scratch{Item: e.Name, Price: e.Price}
		return sess, []Effect{ItemAdded{Name: e.Name, Price: e.Price}}

	case Checkout:
		if sess.Scratch.Item == "" {
			return sess, []Effect{EmptyCart{}}
		}
		order := PlaceOrder{Item: sess.Scratch.Item, Price: sess.Scratch.Price}
		return NewSession(), []Effect{order}

	case ReserveTable:
		sess.State = StateWaitingReservationDate
		sess.Scratch = Scratch{}
		return sess, []Effect{AskDate{}}

	case ShowPoints:
		return sess, []Effect{ReportPoints{}}

	case FreeText:
		return stepText(sess, e.Text)
	}

	return sess, []Effect{ShowHelp{}}
}

func stepText(sess Session, text string) (Session, []Effect) {
	switch sess.State {
	case StateWaitingReservationDate:
		// Date and time are stored verbatim: the production flow accepts
		// whatever the user typed, so no format validation here.
		sess.Scratch.Date = text
		sess.State = StateWaitingReservationTime
		return sess, []Effect{AskTime{}}

	case StateWaitingReservationTime:
		sess.Scratch.Time = text
		sess.State = StateWaitingReservationPeople
		return sess, []Effect{AskPeople{}}

	case StateWaitingReservationPeople:
		book := BookTable{
			Date:   sess.Scratch.Date,
			Time:   sess.Scratch.Time,
			People: ParsePeople(text),
		}
		return NewSession(), []Effect{book}
	}

	return sess, []Effect{ShowHelp{}}
}

// ParsePeople converts raw input into a party size. Lenient: anything that
// does not parse as a positive integer becomes 1 instead of failing the flow.
func ParsePeople(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
