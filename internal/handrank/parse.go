package handrank

import (
	"errors"
	"regexp"
	"strings"

	"github.com/lox/pokertable/internal/cards"
)

// ParseStatus enumerates the outcomes of ParseHand, in the order they are checked.
type ParseStatus int

const (
	StatusOk ParseStatus = iota
	StatusInvalidHand
	StatusCardsMissing
	StatusSuitsMissing
	StatusAllCardsShouldHaveOneSuit
	StatusInsufficientCardsAndDuplicates
	StatusInsufficientCards
	StatusDuplicatesDetected
)

var (
	ErrInvalidHand                    = errors.New("invalid hand")
	ErrCardsMissing                   = errors.New("cards missing")
	ErrSuitsMissing                   = errors.New("suits missing")
	ErrAllCardsShouldHaveOneSuit      = errors.New("all cards should have one suit")
	ErrInsufficientCardsAndDuplicates = errors.New("insufficient cards and duplicates detected")
	ErrInsufficientCards              = errors.New("insufficient cards")
	ErrDuplicatesDetected             = errors.New("duplicates detected")
)

var statusErrors = map[ParseStatus]error{
	StatusInvalidHand:                    ErrInvalidHand,
	StatusCardsMissing:                   ErrCardsMissing,
	StatusSuitsMissing:                   ErrSuitsMissing,
	StatusAllCardsShouldHaveOneSuit:      ErrAllCardsShouldHaveOneSuit,
	StatusInsufficientCardsAndDuplicates: ErrInsufficientCardsAndDuplicates,
	StatusInsufficientCards:              ErrInsufficientCards,
	StatusDuplicatesDetected:             ErrDuplicatesDetected,
}

// Err returns the sentinel error for the status, or nil for StatusOk.
func (s ParseStatus) Err() error {
	return statusErrors[s]
}

func (s ParseStatus) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusInvalidHand:
		return "InvalidHand"
	case StatusCardsMissing:
		return "CardsMissing"
	case StatusSuitsMissing:
		return "SuitsMissing"
	case StatusAllCardsShouldHaveOneSuit:
		return "AllCardsShouldHaveOneSuit"
	case StatusInsufficientCardsAndDuplicates:
		return "InsufficientCardsAndDuplicates"
	case StatusInsufficientCards:
		return "InsufficientCards"
	case StatusDuplicatesDetected:
		return "DuplicatesDetected"
	default:
		return "Unknown"
	}
}

const maxParseCards = 9

var (
	tokenPattern = regexp.MustCompile(`^(?:10|[2-9TJQKA])*[♠♣♥♦shdc]*$`)
	rankPattern  = regexp.MustCompile(`10|[2-9TJQKA]`)
	suitPattern  = regexp.MustCompile(`[♠♣♥♦shdc]`)
)

// ParseHand parses text such as "A♠ 10♠ 8♠ 7♠ 2♠ A♣ 3♣" into a Hand.
func ParseHand(text string) (Hand, error) {
	h, status := parse(text)
	if status != StatusOk {
		return Hand{}, status.Err()
	}
	return h, nil
}

// CheckHand returns the parse status of text without building a hand.
func CheckHand(text string) ParseStatus {
	_, status := parse(text)
	return status
}

func parse(text string) (Hand, ParseStatus) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 || len(tokens) > maxParseCards {
		return Hand{}, StatusInvalidHand
	}
	for _, tok := range tokens {
		if !tokenPattern.MatchString(tok) {
			return Hand{}, StatusInvalidHand
		}
	}

	joined := strings.Join(tokens, " ")
	if !rankPattern.MatchString(joined) {
		return Hand{}, StatusCardsMissing
	}
	if !suitPattern.MatchString(joined) {
		return Hand{}, StatusSuitsMissing
	}

	parsed := make(cards.Cards, 0, len(tokens))
	for _, tok := range tokens {
		ranks := rankPattern.FindAllString(tok, -1)
		suits := suitPattern.FindAllString(tok, -1)
		if len(ranks) != 1 || len(suits) != 1 {
			return Hand{}, StatusAllCardsShouldHaveOneSuit
		}
		value, err := cards.ParseValue(ranks[0])
		if err != nil {
			return Hand{}, StatusInvalidHand
		}
		suit, err := cards.ParseSuit(suits[0])
		if err != nil {
			return Hand{}, StatusInvalidHand
		}
		parsed = append(parsed, cards.New(value, suit))
	}

	seen := make(map[cards.Card]bool, len(parsed))
	duplicates := false
	for _, c := range parsed {
		if seen[c] {
			duplicates = true
		}
		seen[c] = true
	}

	switch {
	case len(parsed) < 5 && duplicates:
		return Hand{}, StatusInsufficientCardsAndDuplicates
	case len(parsed) < 5:
		return Hand{}, StatusInsufficientCards
	case duplicates:
		return Hand{}, StatusDuplicatesDetected
	}

	h, err := FromCards(parsed)
	if err != nil {
		return Hand{}, StatusInvalidHand
	}
	return h, StatusOk
}
