package session

import (
	"sync"
	"testing"

	"github.com/m3rciful/bistrobot/internal/conversation"
)

func TestSessionsIsolatedPerUser(t *testing.T) {
	m := NewManager()

	m.Do(1, func(sess *conversation.Session) {
		sess.State = conversation.StateWaitingReservationDate
		sess.Scratch.Date = "2025-12-31"
	})
	m.Do(2, func(sess *conversation.Session) {
		sess.State = conversation.StateAwaitingCartItem
		sess.Scratch.Item = "Тирамису"
	})

	one := m.Peek(1)
	two := m.Peek(2)
	if one.Scratch.Item != "" || one.State != conversation.StateWaitingReservationDate {
		t.Fatalf("user 1 session contaminated: %+v", one)
	}
	if two.Scratch.Date != "" || two.State != conversation.StateAwaitingCartItem {
		t.Fatalf("user 2 session contaminated: %+v", two)
	}
}

func TestDoSerializesSameUser(t *testing.T) {
	m := NewManager()

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			m.Do(7, func(sess *conversation.Session) {
				// Price doubles as a counter; without per-user
				// serialization this increment would race.
				sess.Scratch.Price++
			})
		}()
	}
	wg.Wait()

	if got := m.Peek(7).Scratch.Price; got != n {
		t.Fatalf("counter = %d, want %d", got, n)
	}
}

func TestConcurrentReservationFlows(t *testing.T) {
	m := NewManager()

	run := func(userID int64, date, tod string) {
		m.Do(userID, func(sess *conversation.Session) {
			*sess, _ = conversation.Step(*sess, conversation.ReserveTable{})
		})
		m.Do(userID, func(sess *conversation.Session) {
			*sess, _ = conversation.Step(*sess, conversation.FreeText{Text: date})
		})
		m.Do(userID, func(sess *conversation.Session) {
			*sess, _ = conversation.Step(*sess, conversation.FreeText{Text: tod})
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); run(1, "2025-12-30", "18:00") }()
	go func() { defer wg.Done(); run(2, "2025-12-31", "20:00") }()
	wg.Wait()

	one := m.Peek(1)
	two := m.Peek(2)
	if one.Scratch.Date != "2025-12-30" || one.Scratch.Time != "18:00" {
		t.Fatalf("user 1 scratch leaked: %+v", one.Scratch)
	}
	if two.Scratch.Date != "2025-12-31" || two.Scratch.Time != "20:00" {
		t.Fatalf("user 2 scratch leaked: %+v", two.Scratch)
	}
}

func TestReset(t *testing.T) {
	m := NewManager()
	m.Do(1, func(sess *conversation.Session) {
		sess.State = conversation.StateWaitingReservationPeople
		sess.Scratch = conversation.Scratch{Date: "2025-12-31", Time: "19:00"}
	})

	m.Reset(1)

	if got := m.Peek(1); got != conversation.NewSession() {
		t.Fatalf("session not reset: %+v", got)
	}
}
