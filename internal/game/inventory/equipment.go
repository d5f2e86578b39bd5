package inventory

// Slot identifies an equipment slot.
type Slot string

const (
	SlotWeapon   Slot = "weapon"
	SlotRobe     Slot = "robe"
	SlotRing     Slot = "ring"
	SlotAmulet   Slot = "amulet"
	SlotTalisman Slot = "talisman"
)

var validSlots = map[Slot]bool{
	SlotWeapon:   true,
	SlotRobe:     true,
	SlotRing:     true,
	SlotAmulet:   true,
	SlotTalisman: true,
}
