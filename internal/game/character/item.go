package character

// ItemKind discriminates the inventory variants.
type ItemKind string

// Kind constants for Item.Kind.
const (
	KindArmor        ItemKind = "armor"
	KindShield       ItemKind = "shield"
	KindAugmentation ItemKind = "augmentation"
	KindGear         ItemKind = "gear"
)

// Item is one inventory entry. The set of implementations is closed:
// *Armor, *Shield, *Augmentation and *Gear.
type Item interface {
	Kind() ItemKind
	Equipped() bool
	item()
}

// ArmorStats is the base definition of an armor.
type ArmorStats struct {
	Type        string
	MaxDexBonus *int
	EACBonus    int
	KACBonus    int
	// Powered armor replaces the wearer's strength with Strength when it is > 0.
	Powered  bool
	Strength int
}

// ArmorOverrides are per-item values that take precedence over ArmorStats when non-nil.
type ArmorOverrides struct {
	Type        *string
	MaxDexBonus *int
	EACBonus    *int
	KACBonus    *int
}

// Armor is a worn armor item.
type Armor struct {
	IsEquipped bool
	Base       ArmorStats
	Overrides  ArmorOverrides
}

func (*Armor) Kind() ItemKind   { return KindArmor }
func (a *Armor) Equipped() bool { return a.IsEquipped }
func (*Armor) item()            {}

// MaxDexBonus returns the effective dexterity cap and whether one applies.
func (a *Armor) MaxDexBonus() (int, bool) {
	return firstSet(a.Overrides.MaxDexBonus, a.Base.MaxDexBonus)
}

// EACBonus returns the effective energy armor class bonus.
func (a *Armor) EACBonus() int {
	if a.Overrides.EACBonus != nil {
		return *a.Overrides.EACBonus
	}
	return a.Base.EACBonus
}

// KACBonus returns the effective kinetic armor class bonus.
func (a *Armor) KACBonus() int {
	if a.Overrides.KACBonus != nil {
		return *a.Overrides.KACBonus
	}
	return a.Base.KACBonus
}

// Type returns the effective armor type tag as recorded, e.g. "light".
func (a *Armor) Type() string {
	if a.Overrides.Type != nil {
		return *a.Overrides.Type
	}
	return a.Base.Type
}

// ShieldStats is the base definition of a shield.
type ShieldStats struct {
	MaxDexBonus  *int
	WieldACBonus int
}

// ShieldOverrides are per-item values that take precedence over ShieldStats when non-nil.
type ShieldOverrides struct {
	MaxDexBonus  *int
	WieldACBonus *int
}

// Shield is a carried shield.
type Shield struct {
	IsEquipped bool
	Base       ShieldStats
	Overrides  ShieldOverrides
}

func (*Shield) Kind() ItemKind   { return KindShield }
func (s *Shield) Equipped() bool { return s.IsEquipped }
func (*Shield) item()            {}

// MaxDexBonus returns the effective dexterity cap and whether one applies.
func (s *Shield) MaxDexBonus() (int, bool) {
	return firstSet(s.Overrides.MaxDexBonus, s.Base.MaxDexBonus)
}

// WieldACBonus returns the effective armor class bonus while wielded.
func (s *Shield) WieldACBonus() int {
	if s.Overrides.WieldACBonus != nil {
		return *s.Overrides.WieldACBonus
	}
	return s.Base.WieldACBonus
}

// Augmentation is an installed augmentation; SelectedOptions holds option ids.
type Augmentation struct {
	IsEquipped      bool
	Options         []Option
	SelectedOptions []string
}

func (*Augmentation) Kind() ItemKind   { return KindAugmentation }
func (a *Augmentation) Equipped() bool { return a.IsEquipped }
func (*Augmentation) item()            {}

// SelectedOption returns the first selected option id, or "" when nothing is selected.
func (a *Augmentation) SelectedOption() string {
	if len(a.SelectedOptions) == 0 {
		return ""
	}
	return a.SelectedOptions[0]
}

// Gear is any other inventory entry; it never contributes to derived statistics.
type Gear struct {
	IsEquipped bool
	Type       string
}

func (*Gear) Kind() ItemKind   { return KindGear }
func (g *Gear) Equipped() bool { return g.IsEquipped }
func (*Gear) item()            {}

// EquippedArmor returns the first equipped armor, or nil.
func (r *Record) EquippedArmor() *Armor {
	for _, it := range r.Inventory {
		if a, ok := it.(*Armor); ok && a.IsEquipped {
			return a
		}
	}
	return nil
}

// EquippedShield returns the first equipped shield, or nil.
func (r *Record) EquippedShield() *Shield {
	for _, it := range r.Inventory {
		if s, ok := it.(*Shield); ok && s.IsEquipped {
			return s
		}
	}
	return nil
}

// EquippedPoweredArmor returns the first equipped powered armor, or nil.
func (r *Record) EquippedPoweredArmor() *Armor {
	for _, it := range r.Inventory {
		if a, ok := it.(*Armor); ok && a.IsEquipped && a.Base.Powered {
			return a
		}
	}
	return nil
}

// EquippedAugmentations returns every equipped augmentation in inventory order.
func (r *Record) EquippedAugmentations() []*Augmentation {
	var out []*Augmentation
	for _, it := range r.Inventory {
		if a, ok := it.(*Augmentation); ok && a.IsEquipped {
			out = append(out, a)
		}
	}
	return out
}

func firstSet(vals ...*int) (int, bool) {
	for _, v := range vals {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}
