package character

import "fmt"

// Realm is one of the eight ordered cultivation tiers.
type Realm int

const (
	Mortal Realm = iota
	QiCondensation
	FoundationEstablishment
	CoreFormation
	NascentSoul
	SoulTransformation
	DivineTransformation
	ImmortalAscension
)

// RealmCount is the number of realms.
const RealmCount = 8

var realmNames = [RealmCount]string{
	"mortal",
	"qi_condensation",
	"foundation_establishment",
	"core_formation",
	"nascent_soul",
	"soul_transformation",
	"divine_transformation",
	"immortal_ascension",
}

// realmHealthMultipliers scales derived health for both players and enemies.
var realmHealthMultipliers = [RealmCount]float64{1.0, 1.5, 2.5, 4.0, 7.0, 12.0, 20.0, 35.0}

// String returns the snake_case realm key.
func (r Realm) String() string {
	if !r.Valid() {
		return fmt.Sprintf("realm(%d)", int(r))
	}
	return realmNames[r]
}

// Valid reports whether r is one of the eight defined realms.
func (r Realm) Valid() bool { return r >= Mortal && r <= ImmortalAscension }

// Terminal reports whether no breakthrough is defined beyond r.
func (r Realm) Terminal() bool { return r == ImmortalAscension }

// Next returns the realm above r. The terminal realm returns itself.
func (r Realm) Next() Realm {
	if r >= ImmortalAscension {
		return ImmortalAscension
	}
	return r + 1
}

// HealthMultiplier returns the derived-health multiplier for r.
//
// Precondition: r.Valid().
func (r Realm) HealthMultiplier() float64 {
	return realmHealthMultipliers[r]
}

// ParseRealm resolves a snake_case realm key.
//
// Postcondition: Returns the realm or a non-nil error for unknown keys.
func ParseRealm(s string) (Realm, error) {
	for i, name := range realmNames {
		if name == s {
			return Realm(i), nil
		}
	}
	return Mortal, fmt.Errorf("character: unknown realm %q", s)
}

// MarshalText encodes r as its key.
func (r Realm) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("character: cannot marshal invalid realm %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a realm key.
func (r *Realm) UnmarshalText(text []byte) error {
	v, err := ParseRealm(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
