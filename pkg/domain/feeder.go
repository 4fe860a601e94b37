package domain

// DefaultFeedAmount is the hunger relief an auto-feeder delivers per feed.
const DefaultFeedAmount = 20

// AutoFeeder is fitted to a containment unit and feeds its occupant every
// Interval time units, paying half the feed amount (rounded up) in food.
type AutoFeeder struct {
	Interval int  `json:"interval"`
	Amount   int  `json:"amount"`
	Elapsed  int  `json:"elapsed"`
	Active   bool `json:"active"`
}

// NewAutoFeeder returns an active feeder. A non-positive amount selects
// DefaultFeedAmount.
func NewAutoFeeder(interval, amount int) AutoFeeder {
	if amount <= 0 {
		amount = DefaultFeedAmount
	}
	return AutoFeeder{Interval: interval, Amount: amount, Active: true}
}

// FoodCost is the food consumed per feed.
func (f AutoFeeder) FoodCost() int { return (f.Amount + 1) / 2 }

// Advance adds elapsed time and reports whether a feed is due. A due feeder
// restarts its timer whether or not the feed can be paid for. Inactive
// feeders do not advance.
func (f *AutoFeeder) Advance(elapsed int) bool {
	if !f.Active || elapsed <= 0 {
		return false
	}
	f.Elapsed += elapsed
	if f.Elapsed < f.Interval {
		return false
	}
	f.Elapsed = 0
	return true
}
