package library

//go:generate go tool stringer --linecomment --type ItemKind --output item_string.go

import (
	"log/slog"

	"github.com/ardnew/windeq/lang"
)

// ItemKind identifies the variant held by an [Item].
type ItemKind uint8

const (
	ItemNone      ItemKind = iota // none
	ItemFormula                   // formula
	ItemGroup                     // group
	ItemDirectory                 // directory
)

// Item is the result of a lookup: exactly one of a Formula, a Group or a
// Directory. The zero Item holds nothing.
type Item struct {
	formula *lang.Formula
	group   *Group
	dir     *Directory
}

// FormulaItem returns an Item holding f.
func FormulaItem(f *lang.Formula) Item { return Item{formula: f} }

// GroupItem returns an Item holding g.
func GroupItem(g *Group) Item { return Item{group: g} }

// DirectoryItem returns an Item holding d.
func DirectoryItem(d *Directory) Item { return Item{dir: d} }

// Kind reports which variant it holds.
func (it Item) Kind() ItemKind {
	switch {
	case it.formula != nil:
		return ItemFormula
	case it.group != nil:
		return ItemGroup
	case it.dir != nil:
		return ItemDirectory
	}

	return ItemNone
}

// Formula returns the held Formula, if any.
func (it Item) Formula() (*lang.Formula, bool) { return it.formula, it.formula != nil }

// Group returns the held Group, if any.
func (it Item) Group() (*Group, bool) { return it.group, it.group != nil }

// Directory returns the held Directory, if any.
func (it Item) Directory() (*Directory, bool) { return it.dir, it.dir != nil }

// String returns the display form of the held value.
func (it Item) String() string {
	switch it.Kind() {
	case ItemFormula:
		return it.formula.String()
	case ItemGroup:
		return it.group.String()
	case ItemDirectory:
		return it.dir.String()
	}

	return ""
}

// pushDefaults returns a copy of it with scope pushed into the held value.
func (it Item) pushDefaults(scope lang.Scope, force bool) Item {
	switch it.Kind() {
	case ItemFormula:
		return FormulaItem(it.formula.WithDefaults(scope))
	case ItemGroup:
		return GroupItem(it.group.PushDefaults(scope))
	case ItemDirectory:
		return DirectoryItem(it.dir.PushDefaults(scope, force))
	}

	return it
}

// Combine applies op to two Items. Formulas combine under every operator;
// two Groups or two Directories merge under addition. Any other pairing
// fails with [lang.ErrType].
func Combine(op lang.Op, a, b Item) (Item, error) {
	ka, kb := a.Kind(), b.Kind()

	switch {
	case ka == ItemFormula && kb == ItemFormula:
		return FormulaItem(lang.Combine(op, a.formula, b.formula)), nil

	case op == lang.OpAdd && ka == ItemGroup && kb == ItemGroup:
		return GroupItem(a.group.Merge(b.group)), nil

	case op == lang.OpAdd && ka == ItemDirectory && kb == ItemDirectory:
		return DirectoryItem(a.dir.Merge(b.dir)), nil
	}

	return Item{}, lang.ErrType.With(
		slog.String("operator", op.String()),
		slog.String("left", ka.String()),
		slog.String("right", kb.String()),
	)
}
