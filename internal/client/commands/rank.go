package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/handrank"
	"github.com/lox/pokertable/internal/tui"
)

// RankCommand ranks hands offline and reports the winners
type RankCommand struct {
	Hands []string `arg:"" help:"Hands to rank, e.g. 'A♠ K♠ Q♠ J♠ 10♠ 2♦ 3♣' (quoted, hole cards first)" required:"true"`
	Omaha bool     `help:"Rank as Omaha: exactly two of the first four cards are used"`
}

// Run does not need a server connection, so it ignores the global flags.
func (cmd *RankCommand) Run() error {
	hands, err := parseHands(cmd.Hands)
	if err != nil {
		return err
	}

	variant := handrank.Holdem
	if cmd.Omaha {
		variant = handrank.Omaha
	}

	ranks, err := handrank.RankAll(context.Background(), hands, variant)
	if err != nil {
		return err
	}
	winners := handrank.Winners(ranks)

	for i, r := range ranks {
		line := fmt.Sprintf("%d. %s  %s", i+1, renderHand(hands[i], r), describe(hands[i], r))
		if slices.Contains(winners, i) {
			line = tui.SuccessStyle.Render(line + "  winner")
		}
		fmt.Println(line)
	}
	return nil
}

func parseHands(texts []string) ([]handrank.Hand, error) {
	hands := make([]handrank.Hand, 0, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		h, err := handrank.ParseHand(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hand %d: %s\n", i+1, handrank.CheckHand(text))
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		hands = append(hands, h)
	}
	return hands, nil
}

func describe(h handrank.Hand, r handrank.CardRank) string {
	if r.Type == handrank.Invalid {
		return tui.InfoStyle.Render("not enough cards")
	}
	return handrank.Describe(h, r).String()
}

// renderHand prints the hand with the cards that make up the rank highlighted.
func renderHand(h handrank.Hand, r handrank.CardRank) string {
	parts := make([]string, h.Len())
	for i := range h.Cards {
		c := toCard(h, i)
		if r.Type != handrank.Invalid && slices.Contains(r.WinnerCardsSet[:], i) {
			parts[i] = tui.RenderCard(c)
		} else {
			parts[i] = tui.InfoStyle.Render(c.Symbol())
		}
	}
	return strings.Join(parts, " ")
}

func toCard(h handrank.Hand, i int) cards.Card {
	suit := 0
	for m := h.Suits[i]; m > 1; m >>= 1 {
		suit++
	}
	return cards.New(h.Cards[i]-2, suit)
}
