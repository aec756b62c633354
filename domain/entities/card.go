package entities

import "strconv"

// Suit of a playing card
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}

func (s Suit) String() string {
	if s < Spades || s > Clubs {
		return "?"
	}
	return suitSymbols[s]
}

// Rank of a playing card, Ace is 1 and King is 13
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return strconv.Itoa(int(r))
	}
}

// Card is a single playing card
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Value is the card's blackjack value with aces counted high
func (c Card) Value() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= 10:
		return 10
	default:
		return int(c.Rank)
	}
}

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// NewDeck returns an unshuffled standard 52-card deck
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Hand is an ordered set of dealt cards
type Hand []Card

// Value counts aces as 11 and downgrades them to 1, one at a time, while the
// hand is over 21.
func (h Hand) Value() int {
	total, aces := 0, 0
	for _, card := range h {
		total += card.Value()
		if card.Rank == Ace {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsBust reports a value over 21
func (h Hand) IsBust() bool {
	return h.Value() > 21
}

// IsTwentyOne reports a value of exactly 21
func (h Hand) IsTwentyOne() bool {
	return h.Value() == 21
}

// Strings renders each card
func (h Hand) Strings() []string {
	out := make([]string, len(h))
	for i, card := range h {
		out[i] = card.String()
	}
	return out
}
