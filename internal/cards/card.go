package cards

import (
	"fmt"
	"strings"
)

// Card is a single card as the server encodes it: 0..51, value = c % 13
// (0 = deuce, 12 = ace) and suit = c / 13.
type Card int

// Reserved byte values in the compact card blob.
const (
	FaceDown Card = 254
	NoCard   Card = 255
)

// Suit constants
const (
	Clubs    = 0
	Diamonds = 1
	Hearts   = 2
	Spades   = 3
)

// Value constants (card % 13)
const (
	Two = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// New creates a card from a value (0-12) and suit (0-3).
func New(value, suit int) Card {
	return Card(suit*13 + value)
}

// Valid reports whether c is a real, face-up card.
func (c Card) Valid() bool {
	return c >= 0 && c < 52
}

// IsFaceDown reports whether c is the face-down sentinel.
func (c Card) IsFaceDown() bool {
	return c == FaceDown
}

// Value returns the rank index 0..12 used by the ranking entry points.
func (c Card) Value() int {
	return int(c) % 13
}

// Face returns the face value 2..14.
func (c Card) Face() int {
	return int(c)%13 + 2
}

// Suit returns the suit index 0..3.
func (c Card) Suit() int {
	return int(c) / 13
}

// IsRed returns true for hearts and diamonds.
func (c Card) IsRed() bool {
	s := c.Suit()
	return c.Valid() && (s == Hearts || s == Diamonds)
}

// String returns the short form, e.g. "As", "Td". Face-down cards render as "??".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Value()]) + string(suitChars[c.Suit()])
}

// Symbol returns the glyph form, e.g. "A♠", "10♥".
func (c Card) Symbol() string {
	if !c.Valid() {
		return "🂠"
	}
	rank := string(rankChars[c.Value()])
	if c.Value() == Ten {
		rank = "10"
	}
	return rank + []string{"♣", "♦", "♥", "♠"}[c.Suit()]
}

// ParseValue parses a rank glyph ("2".."10", "T", "J", "Q", "K", "A").
func ParseValue(s string) (int, error) {
	if s == "10" {
		return Ten, nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid rank: %q", s)
	}
	i := strings.IndexByte(rankChars, upper(s[0]))
	if i < 0 {
		return 0, fmt.Errorf("invalid rank: %q", s)
	}
	return i, nil
}

// ParseSuit parses a suit letter (c, d, h, s) or glyph (♣, ♦, ♥, ♠).
func ParseSuit(s string) (int, error) {
	switch s {
	case "c", "C", "♣":
		return Clubs, nil
	case "d", "D", "♦":
		return Diamonds, nil
	case "h", "H", "♥":
		return Hearts, nil
	case "s", "S", "♠":
		return Spades, nil
	}
	return 0, fmt.Errorf("invalid suit: %q", s)
}

// Parse parses a card like "As", "10h" or "K♦".
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "??" {
		return FaceDown, nil
	}
	for i := range s {
		if i == 0 {
			continue
		}
		if _, err := ParseValue(s[:i]); err != nil {
			continue
		}
		if suit, err := ParseSuit(s[i:]); err == nil {
			value, _ := ParseValue(s[:i])
			return New(value, suit), nil
		}
	}
	return 0, fmt.Errorf("invalid card string: %s", s)
}

// ParseList parses a whitespace-separated list of cards.
func ParseList(s string) (Cards, error) {
	fields := strings.Fields(s)
	out := make(Cards, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
