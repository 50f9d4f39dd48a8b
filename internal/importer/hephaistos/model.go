package hephaistos

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KeyValue is a selected option reference; Value holds the option id.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OptionEffect is an identified effect string.
type OptionEffect struct {
	ID     string `json:"id"`
	Effect string `json:"effect"`
}

// InlineCharacter is a character as returned by the inline GraphQL field set.
// Legacy documents carry ID; permalink documents carry ReadOnlyPermalinkID.
type InlineCharacter struct {
	ID                  string              `json:"id"`
	ReadOnlyPermalinkID string              `json:"readOnlyPermalinkId"`
	Name                string              `json:"name"`
	Inventory           []InlineItem        `json:"inventory"`
	Theme               InlineThemeChoice   `json:"theme"`
	Race                InlineRaceChoice    `json:"race"`
	Vitals              InlineVitals        `json:"vitals"`
	AbilityScores       InlineAbilityScores `json:"abilityScores"`
	Classes             []InlineClassLevel  `json:"classes"`
	Feats               []InlineFeat        `json:"feats"`
	Conditions          ConditionSet        `json:"conditions"`
}

// InlineItem is one inventory entry. Only the fields for its __typename are populated.
type InlineItem struct {
	Typename             string              `json:"__typename"`
	IsEquipped           bool                `json:"isEquipped"`
	ArmorType            *string             `json:"armorType"`
	MaxDexBonusOverride  *int                `json:"maxDexBonusOverride"`
	EACBonusOverride     *int                `json:"eacBonusOverride"`
	KACBonusOverride     *int                `json:"kacBonusOverride"`
	WieldACBonusOverride *int                `json:"wieldAcBonusOverride"`
	Armor                *InlineArmor        `json:"armor"`
	Shield               *InlineShield       `json:"shield"`
	Augmentation         *InlineAugmentation `json:"augmentation"`
	SelectedOptions      []KeyValue          `json:"selectedOptions"`
}

// InlineArmor is the base definition of an armor; PoweredArmor carries Strength.
type InlineArmor struct {
	Typename    string `json:"__typename"`
	Type        string `json:"type"`
	MaxDexBonus *int   `json:"maxDexBonus"`
	EACBonus    int    `json:"eacBonus"`
	KACBonus    int    `json:"kacBonus"`
	Strength    int    `json:"strength"`
}

// InlineShield is the base definition of a shield.
type InlineShield struct {
	MaxDexBonus  *int `json:"maxDexBonus"`
	WieldACBonus int  `json:"wieldAcBonus"`
}

// InlineAugmentation is the base definition of an augmentation.
type InlineAugmentation struct {
	Type    string         `json:"type"`
	Options []OptionEffect `json:"options"`
}

// InlineThemeChoice is the selected theme and its chosen benefit options.
type InlineThemeChoice struct {
	SelectedBenefitOptions []KeyValue `json:"selectedBenefitOptions"`
	Theme                  struct {
		Benefits []InlineBenefit `json:"benefits"`
	} `json:"theme"`
}

// InlineBenefit is one theme benefit.
type InlineBenefit struct {
	Effect  string         `json:"effect"`
	Options []OptionEffect `json:"options"`
}

// InlineRaceChoice is the selected race and its chosen adjustment.
type InlineRaceChoice struct {
	SelectedAdjustment string `json:"selectedAdjustment"`
	Race               struct {
		HitPoints         int            `json:"hitPoints"`
		AbilityAdjustment []OptionEffect `json:"abilityAdjustment"`
	} `json:"race"`
}

// InlinePool is a damage counter.
type InlinePool struct {
	Damage int `json:"damage"`
}

// InlineVitals holds the damage counters and temporary hit points.
type InlineVitals struct {
	Temporary int        `json:"temporary"`
	Health    InlinePool `json:"health"`
	Stamina   InlinePool `json:"stamina"`
}

// InlineCustomBonus is a player-entered ability bonus.
type InlineCustomBonus struct {
	Value  int  `json:"value"`
	Active bool `json:"active"`
}

// InlineAbility holds one ability's raw inputs.
type InlineAbility struct {
	CustomBonus []InlineCustomBonus `json:"customBonus"`
	Damage      int                 `json:"damage"`
	PointBuy    int                 `json:"pointBuy"`
	Override    *int                `json:"override"`
}

// InlineAbilityScores is keyed by three-letter ability names.
type InlineAbilityScores struct {
	Method    string        `json:"method"`
	Increases [][]string    `json:"increases"`
	Str       InlineAbility `json:"str"`
	Dex       InlineAbility `json:"dex"`
	Con       InlineAbility `json:"con"`
	Int       InlineAbility `json:"int"`
	Wis       InlineAbility `json:"wis"`
	Cha       InlineAbility `json:"cha"`
}

// InlineClassLevel is a class and the levels taken in it.
type InlineClassLevel struct {
	Levels int `json:"levels"`
	Class  struct {
		BaseStaminaPoints           int      `json:"baseStaminaPoints"`
		HitPoints                   int      `json:"hitPoints"`
		ArmorProficiencyDescription string   `json:"armorProficiencyDescription"`
		ArmorProficiency            []string `json:"armorProficiency"`
	} `json:"class"`
}

// InlineFeat is an acquired feat.
type InlineFeat struct {
	Feat struct {
		Benefit string `json:"benefit"`
	} `json:"feat"`
}

// Envelope is a character as returned by the JSON field set: the builder's own
// serialized document plus metadata.
type Envelope struct {
	ReadOnlyPermalinkID string `json:"readOnlyPermalinkId"`
	Name                string `json:"name"`
	JSON                string `json:"json"`
	// Updated is milliseconds since the Unix epoch.
	Updated int64 `json:"updated"`
}

// Document is the builder's serialized character, as embedded in Envelope.JSON.
type Document struct {
	Name          string          `json:"name"`
	AbilityScores DocAbilityScore `json:"abilityScores"`
	Vitals        DocVitals       `json:"vitals"`
	Race          struct {
		HitPoints int `json:"hitPoints"`
	} `json:"race"`
	Classes    []DocClass   `json:"classes"`
	Feats      DocFeats     `json:"feats"`
	Inventory  []DocItem    `json:"inventory"`
	Conditions ConditionSet `json:"conditions"`
}

// DocAbilityScore is keyed by full ability names.
type DocAbilityScore struct {
	Method       string     `json:"method"`
	Increases    [][]string `json:"increases"`
	Strength     DocAbility `json:"strength"`
	Dexterity    DocAbility `json:"dexterity"`
	Constitution DocAbility `json:"constitution"`
	Intelligence DocAbility `json:"intelligence"`
	Wisdom       DocAbility `json:"wisdom"`
	Charisma     DocAbility `json:"charisma"`
}

// DocAbility holds one ability's raw inputs. ScoreBonuses already include racial,
// theme and augmentation adjustments.
type DocAbility struct {
	Override     *int            `json:"override"`
	PointBuy     int             `json:"pointBuy"`
	Damage       int             `json:"damage"`
	ScoreBonuses []DocScoreBonus `json:"scoreBonuses"`
}

// DocScoreBonus is one resolved score bonus.
type DocScoreBonus struct {
	Value  int    `json:"value"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

// DocPool is a resource with its recorded maximum and damage.
type DocPool struct {
	Max    int `json:"max"`
	Damage int `json:"damage"`
}

// DocVitals holds the damage counters and temporary hit points.
type DocVitals struct {
	Temporary int     `json:"temporary"`
	Health    DocPool `json:"health"`
	Stamina   DocPool `json:"stamina"`
}

// DocClass is a class with its levels.
type DocClass struct {
	Name                        string   `json:"name"`
	BaseHitPoints               int      `json:"baseHitPoints"`
	BaseStaminaPoints           int      `json:"baseStaminaPoints"`
	Levels                      int      `json:"levels"`
	ArmorProficiency            []string `json:"armorProficiency"`
	ArmorProficiencyDescription string   `json:"armorProficiencyDescription"`
}

// DocFeats holds the acquired feats.
type DocFeats struct {
	AcquiredFeats []DocFeat `json:"acquiredFeats"`
}

// DocFeat is an acquired feat with its structured benefit effects.
type DocFeat struct {
	Name          string            `json:"name"`
	BenefitEffect []DocBenefitEntry `json:"benefitEffect"`
}

// DocBenefitEntry wraps one structured bonus.
type DocBenefitEntry struct {
	Bonus struct {
		Value struct {
			Int *int `json:"int"`
		} `json:"value"`
		Property  string `json:"property"`
		BonusType string `json:"bonusType"`
	} `json:"bonus"`
}

// DocItem is a flattened inventory entry discriminated by Type.
type DocItem struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	IsEquipped   bool   `json:"isEquipped"`
	ArmorType    string `json:"armorType"`
	MaxDexBonus  *int   `json:"maxDexBonus"`
	EACBonus     int    `json:"eacBonus"`
	KACBonus     int    `json:"kacBonus"`
	WieldACBonus int    `json:"wieldAcBonus"`
	Strength     int    `json:"strength"`
}

// NamedCondition is one entry of a condition mapping. Older documents flag it with
// "override", newer ones with "active".
type NamedCondition struct {
	Name     string
	Override json.RawMessage
	Active   json.RawMessage
}

// ConditionSet is a condition mapping decoded in document key order.
type ConditionSet []NamedCondition

// UnmarshalJSON decodes the mapping token by token so key order survives.
func (c *ConditionSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("conditions: expected object, got %v", tok)
	}
	var out ConditionSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("conditions: expected key, got %v", tok)
		}
		var flags struct {
			Override json.RawMessage `json:"override"`
			Active   json.RawMessage `json:"active"`
		}
		if err := dec.Decode(&flags); err != nil {
			return fmt.Errorf("conditions: decoding %q: %w", name, err)
		}
		out = append(out, NamedCondition{Name: name, Override: flags.Override, Active: flags.Active})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// truthy reports whether a raw JSON value is truthy: true, a non-zero number,
// a non-empty string, or any array or object.
func truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 't', '[', '{':
		return true
	case 'f', 'n':
		return false
	case '"':
		return len(v) > 2
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return false
	}
	return n != 0
}
