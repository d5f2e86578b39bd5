package character

import (
	"fmt"
	"math"
)

// Element is one of the five fixed elemental categories.
type Element int

const (
	Metal Element = iota
	Wood
	Water
	Fire
	Earth
)

// ElementCount is the number of elements.
const ElementCount = 5

// AllElements lists the elements in enumeration order.
var AllElements = [ElementCount]Element{Metal, Wood, Water, Fire, Earth}

var elementNames = [ElementCount]string{"metal", "wood", "water", "fire", "earth"}

// generates is the generating cycle: Wood→Fire→Earth→Metal→Water→Wood.
var generates = [ElementCount]Element{
	Metal: Water,
	Wood:  Fire,
	Water: Wood,
	Fire:  Earth,
	Earth: Metal,
}

// controls is the controlling cycle: Wood→Earth→Water→Fire→Metal→Wood.
var controls = [ElementCount]Element{
	Metal: Wood,
	Wood:  Earth,
	Water: Fire,
	Fire:  Metal,
	Earth: Water,
}

// String returns the lowercase element key.
func (e Element) String() string {
	if e < Metal || e > Earth {
		return fmt.Sprintf("element(%d)", int(e))
	}
	return elementNames[e]
}

// Generates returns the element e feeds in the generating cycle.
func (e Element) Generates() Element { return generates[e] }

// Controls returns the element e restrains in the controlling cycle.
func (e Element) Controls() Element { return controls[e] }

// ControlledBy returns the element whose controlling target is e.
func (e Element) ControlledBy() Element {
	for _, other := range AllElements {
		if controls[other] == e {
			return other
		}
	}
	panic("character: controlling cycle is not a permutation")
}

// ParseElement resolves a lowercase element key.
func ParseElement(s string) (Element, error) {
	for i, name := range elementNames {
		if name == s {
			return Element(i), nil
		}
	}
	return Metal, fmt.Errorf("character: unknown element %q", s)
}

// MarshalText encodes e as its key.
func (e Element) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText decodes an element key.
func (e *Element) UnmarshalText(text []byte) error {
	v, err := ParseElement(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Affinities holds an affinity in [0, 100] per element.
type Affinities [ElementCount]float64

// Primary returns the element with the highest affinity.
// Ties resolve to the earliest element in enumeration order.
func (a Affinities) Primary() Element {
	best := Metal
	for _, e := range AllElements[1:] {
		if a[e] > a[best] {
			best = e
		}
	}
	return best
}

// Add raises e by delta, clamping the result to [0, 100].
//
// Postcondition: 0 <= a[e] <= 100.
func (a *Affinities) Add(e Element, delta float64) {
	a[e] = clamp(a[e]+delta, 0, MaxAffinity)
}

// CountAtLeast returns how many elements in set (or all elements when set is
// nil) have an affinity >= threshold.
func (a Affinities) CountAtLeast(threshold float64, set []Element) int {
	if set == nil {
		set = AllElements[:]
	}
	n := 0
	for _, e := range set {
		if a[e] >= threshold {
			n++
		}
	}
	return n
}

// MaxAffinity is the ceiling for every elemental affinity.
const MaxAffinity = 100.0

// ComplementaryElements returns the realm-gated set of elements unlocked
// around primary:
//   - realm >= QiCondensation adds the element primary generates
//   - realm >= CoreFormation adds the element primary controls
//   - realm >= DivineTransformation adds the element that controls primary
//
// Postcondition: 0 <= len(result) <= 3; primary is never included.
func ComplementaryElements(primary Element, realm Realm) []Element {
	var out []Element
	if realm >= QiCondensation {
		out = append(out, primary.Generates())
	}
	if realm >= CoreFormation {
		out = append(out, primary.Controls())
	}
	if realm >= DivineTransformation {
		out = append(out, primary.ControlledBy())
	}
	return out
}

// clamp bounds v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
