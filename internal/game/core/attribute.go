package core

import (
	"fmt"
	"strings"
)

// Attribute is a bitset of the dynamic markers a side can see on a cell
type Attribute uint8

const (
	AttrMyFort Attribute = 1 << iota
	AttrEnemyFort
	AttrMyPosition
	AttrEnemyPosition
	AttrMyTreasure

	AttrNone Attribute = 0
)

var attributeNames = []struct {
	attr Attribute
	name string
}{
	{AttrMyFort, "my_fort"},
	{AttrEnemyFort, "enemy_fort"},
	{AttrMyPosition, "my_position"},
	{AttrEnemyPosition, "enemy_position"},
	{AttrMyTreasure, "my_treasure"},
}

// NewAttributes combines markers and panics if the combination is impossible
func NewAttributes(attrs ...Attribute) Attribute {
	var a Attribute
	for _, attr := range attrs {
		a |= attr
	}
	if err := a.Check(); err != nil {
		panic(err)
	}
	return a
}

// Check rejects combinations that cannot exist on one cell
func (a Attribute) Check() error {
	if a.Has(AttrMyFort) && a.Has(AttrEnemyFort) {
		return fmt.Errorf("%w: %s", ErrConflictingAttributes, a)
	}
	return nil
}

func (a Attribute) Has(attr Attribute) bool { return a&attr == attr && attr != 0 }

// HasFort reports whether either side's fort stands here
func (a Attribute) HasFort() bool { return a&(AttrMyFort|AttrEnemyFort) != 0 }

func (a Attribute) String() string {
	if a == AttrNone {
		return "none"
	}
	var parts []string
	for _, n := range attributeNames {
		if a&n.attr != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// AttributeFromString parses a single marker name
func AttributeFromString(s string) (Attribute, error) {
	for _, n := range attributeNames {
		if n.name == s {
			return n.attr, nil
		}
	}
	return AttrNone, fmt.Errorf("unknown attribute %q", s)
}

// Names lists the individual marker names set in a
func (a Attribute) Names() []string {
	var names []string
	for _, n := range attributeNames {
		if a&n.attr != 0 {
			names = append(names, n.name)
		}
	}
	return names
}
