package character

// MeridianCount is the fixed number of body channels.
const MeridianCount = 12

// MaxStage is the highest meridian breakthrough stage.
const MaxStage = 3

// MaxPurity is the absolute purity ceiling.
const MaxPurity = 100.0

// MeridianNames lists the channels in their fixed order.
var MeridianNames = [MeridianCount]string{
	"lung",
	"large_intestine",
	"stomach",
	"spleen",
	"heart",
	"small_intestine",
	"bladder",
	"kidney",
	"pericardium",
	"triple_burner",
	"gallbladder",
	"liver",
}

// stageCaps is the purity ceiling reached at each breakthrough stage.
var stageCaps = [MaxStage + 1]float64{50, 80, 95, 100}

// EffectiveCap returns the purity ceiling for stage. Stages beyond MaxStage
// clamp to MaxPurity; negative stages use the natural cap.
//
// Postcondition: 50 <= result <= 100.
func EffectiveCap(stage int) float64 {
	switch {
	case stage < 0:
		return stageCaps[0]
	case stage > MaxStage:
		return MaxPurity
	default:
		return stageCaps[stage]
	}
}

// Meridian is one body channel.
//
// Invariant: 0 <= Purity <= EffectiveCap(Stage); 0 <= Stage <= MaxStage.
type Meridian struct {
	Name   string  `json:"name"`
	Open   bool    `json:"open"`
	Purity float64 `json:"purity"`
	Stage  int     `json:"stage"`
}

// Cap returns the meridian's current purity ceiling.
func (m Meridian) Cap() float64 { return EffectiveCap(m.Stage) }

// AddPurity raises purity by delta, clamped to the current cap.
//
// Postcondition: 0 <= Purity <= Cap().
func (m *Meridian) AddPurity(delta float64) {
	m.Purity = clamp(m.Purity+delta, 0, m.Cap())
}

// Damage lowers purity by amount, flooring at zero. Stage is never reduced.
//
// Postcondition: Purity >= 0.
func (m *Meridian) Damage(amount float64) {
	m.Purity = clamp(m.Purity-amount, 0, m.Cap())
}
