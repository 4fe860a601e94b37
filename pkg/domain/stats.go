package domain

// Stats is a creature stat block. Stats also doubles as a delta when applied
// through Boost.
type Stats struct {
	HP      int `json:"hp" yaml:"hp"`
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Speed   int `json:"speed" yaml:"speed"`
}

// DefaultStats is the stat block of a freshly constructed creature.
var DefaultStats = Stats{HP: 100, Attack: 10, Defense: 10, Speed: 10}

// Boost adds delta to s. HP, Attack and Defense never drop below zero and
// Speed never drops below one.
func (s Stats) Boost(delta Stats) Stats {
	out := Stats{
		HP:      s.HP + delta.HP,
		Attack:  s.Attack + delta.Attack,
		Defense: s.Defense + delta.Defense,
		Speed:   s.Speed + delta.Speed,
	}
	out.HP = max(out.HP, 0)
	out.Attack = max(out.Attack, 0)
	out.Defense = max(out.Defense, 0)
	out.Speed = max(out.Speed, 1)
	return out
}
