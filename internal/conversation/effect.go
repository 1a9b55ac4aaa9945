package conversation

// Effect is an instruction for the transport layer: a message to send or a
// record to persist. Effects are applied in order.
type Effect interface{ isEffect() }

// ShowMain greets the user and presents the main keyboard. The executor
// registers the user on this effect.
type ShowMain struct{}

// ShowCategories lists catalog categories as inline buttons.
type ShowCategories struct{}

// ShowItems lists the items of one category with prices.
type ShowItems struct {
	Category string
}

// ItemAdded confirms the pending selection.
type ItemAdded struct {
	Name  string
	Price int
}

// PlaceOrder persists the pending selection as an order and awards points.
type PlaceOrder struct {
	Item  string
	Price int
}

// EmptyCart tells the user there is nothing to check out.
type EmptyCart struct{}

// AskDate prompts for the reservation date.
type AskDate struct{}

// AskTime prompts for the reservation time.
type AskTime struct{}

// AskPeople prompts for the party size.
type AskPeople struct{}

// BookTable persists the collected reservation and awards points.
type BookTable struct {
	Date   string
	Time   string
	People int
}

// ReportPoints replies with the current balance.
type ReportPoints struct{}

// ShowHelp replies with the fallback help text.
type ShowHelp struct{}

func (ShowMain) isEffect()       {}
func (ShowCategories) isEffect() {}
func (ShowItems) isEffect()      {}
func (ItemAdded) isEffect()      {}
func (PlaceOrder) isEffect()     {}
func (EmptyCart) isEffect()      {}
func (AskDate) isEffect()        {}
func (AskTime) isEffect()        {}
func (AskPeople) isEffect()      {}
func (BookTable) isEffect()      {}
func (ReportPoints) isEffect()   {}
func (ShowHelp) isEffect()       {}
