package core

import (
	"strconv"
	"strings"
)

// Wishlist format:
//
//	Wishlist: Anna
//	Parent-PIN: 1234
//	Child-PIN: 5678
//	Items:
//	* Lego Castle;Toys
//	* Harry Potter;Books;true
//	---
//	Wishlist: Ben
//	...
//
// Item lines are "name;category" with an optional bought flag.

const (
	wishlistKey      = "Wishlist"
	parentPinKey     = "Parent-PIN"
	childPinKey      = "Child-PIN"
	itemsSectionMark = "Items:"
	itemDetailPrefix = "*"
	itemDelimiter    = ";"
	minItemFields    = 2
	maxItemFields    = 3
)

var wishlistGrammar = Grammar{
	HeaderKeys:   []string{wishlistKey, parentPinKey, childPinKey},
	Markers:      []string{itemsSectionMark, blockSeparator},
	DetailPrefix: itemDetailPrefix,
	Delimiter:    itemDelimiter,
}

// WishlistParser parses wishlists and links items to gift categories.
type WishlistParser struct{}

type wishlistState struct {
	list       *Wishlist
	headerLine int
	items      int
	seen       map[string]bool
}

func (s *wishlistState) close() error {
	if s.list != nil && s.items == 0 {
		return newError(EmptyWishlistSection, s.headerLine)
	}
	s.list = nil
	s.items = 0
	return nil
}

// Parse implements Parser.
func (WishlistParser) Parse(content string, refs References) ([]*WishlistItem, error) {
	tokens, err := Tokenize(content, wishlistGrammar)
	if err != nil {
		return nil, err
	}
	if at, before := appearsBefore(content, itemsSectionMark, wishlistKey+":"); before {
		return nil, newError(ItemsSectionBeforeWishlist, at)
	}

	var (
		st         = wishlistState{seen: make(map[string]bool)}
		items      []*WishlistItem
		categories = newCategoryResolver(refs.Categories)
	)

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenHeader:
			if err := st.header(tok); err != nil {
				return nil, err
			}

		case TokenMarker:
			if tok.Text == blockSeparator {
				if err := st.close(); err != nil {
					return nil, err
				}
			}

		case TokenDetail:
			if st.list == nil {
				return nil, newError(MissingWishlistName, tok.Line)
			}
			if st.list.ParentPin == "" || st.list.ChildPin == "" {
				return nil, newError(MissingPin, tok.Line)
			}

			item, category, err := parseWishlistItem(tok)
			if err != nil {
				return nil, err
			}
			item.Wishlist = st.list
			item.Category = categories.Resolve(category, nil)

			items = append(items, item)
			st.items++
		}
	}

	if err := st.close(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, newError(EmptyWishlistSection, 0)
	}
	return items, nil
}

func (s *wishlistState) header(tok Token) error {
	if tok.Key == wishlistKey {
		if err := s.close(); err != nil {
			return err
		}
		if tooLong(tok.Value, MaxWishlistNameLen) {
			return newError(WishlistNameTooLong, tok.Line)
		}
		if s.seen[tok.Value] {
			return &ImportError{Kind: DuplicateWishlistName, Line: tok.Line, Detail: tok.Value}
		}
		s.seen[tok.Value] = true
		s.list = &Wishlist{Name: tok.Value}
		s.headerLine = tok.Line
		return nil
	}

	if s.list == nil {
		return newError(MissingWishlistName, tok.Line)
	}

	pin := &s.list.ParentPin
	if tok.Key == childPinKey {
		pin = &s.list.ChildPin
	}
	if *pin != "" {
		return newError(DuplicatePin, tok.Line)
	}
	if tooLong(tok.Value, MaxPinLen) {
		return newError(PinTooLong, tok.Line)
	}
	if !isDigits(tok.Value) {
		return newError(PinNotNumeric, tok.Line)
	}
	*pin = tok.Value
	return nil
}

// parseWishlistItem validates "name;category[;bought]" and returns the
// item together with the category name to resolve.
func parseWishlistItem(tok Token) (*WishlistItem, string, error) {
	f := tok.Fields
	if len(f) < minItemFields || len(f) > maxItemFields {
		return nil, "", &ImportError{Kind: IncorrectFieldCount, Line: tok.Line, Detail: "expected 2 or 3 fields"}
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
		if f[i] == "" {
			return nil, "", newError(EmptyField, tok.Line)
		}
	}

	name, category := f[0], f[1]
	if tooLong(name, MaxItemNameLen) {
		return nil, "", newError(ItemNameTooLong, tok.Line)
	}
	if tooLong(category, MaxCategoryLen) {
		return nil, "", newError(CategoryTooLong, tok.Line)
	}

	item := &WishlistItem{ItemName: name}
	if len(f) == maxItemFields {
		bought, err := strconv.ParseBool(f[2])
		if err != nil {
			return nil, "", &ImportError{Kind: InvalidBoughtFlag, Line: tok.Line, Detail: f[2]}
		}
		item.Bought = bought
	}
	return item, category, nil
}
