package conversation

// Event is an inbound occurrence the state machine reacts to.
type Event interface{ isEvent() }

// Start is the /start command.
type Start struct{}

// ShowMenu is the main-keyboard menu button.
type ShowMenu struct{}

// CategoryChosen is a category inline button press.
type CategoryChosen struct {
	Name string
}

// ItemChosen is an item inline button press. Price rides in the button
// payload so the selection stays valid even if the catalog changes later.
type ItemChosen struct {
	Name  string
	Price int
}

// Checkout is the /checkout command.
type Checkout struct{}

// ReserveTable is the main-keyboard reservation button.
type ReserveTable struct{}

// ShowPoints is the main-keyboard balance button.
type ShowPoints struct{}

// FreeText is any other text message; it only advances reservation flows.
type FreeText struct {
	Text string
}

func (Start) isEvent()          {}
func (ShowMenu) isEvent()       {}
func (CategoryChosen) isEvent() {}
func (ItemChosen) isEvent()     {}
func (Checkout) isEvent()       {}
func (ReserveTable) isEvent()   {}
func (ShowPoints) isEvent()     {}
func (FreeText) isEvent()       {}
