package blackjack

import (
	"fmt"
	"strings"

	"levelbot/bot/common"
	"levelbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const hiddenCard = "🂠"

func formatCards(hand entities.Hand, hideFirst bool) string {
	cards := make([]string, 0, len(hand))
	for idx, card := range hand {
		if idx == 0 && hideFirst {
			cards = append(cards, hiddenCard)
			continue
		}
		cards = append(cards, "`"+card.String()+"`")
	}
	return strings.Join(cards, " ")
}

// outcomeLine describes how a finished hand ended
func outcomeLine(hand *entities.BlackjackHand) string {
	switch hand.Outcome {
	case entities.BlackjackOutcomeBlackjack:
		return "Blackjack! You win 3:2."
	case entities.BlackjackOutcomeWin:
		return "You win!"
	case entities.BlackjackOutcomePush:
		if hand.Natural {
			return "Both have blackjack. Push."
		}
		return "Push."
	case entities.BlackjackOutcomeSurrender:
		return "You surrendered. Refunded half your bet."
	case entities.BlackjackOutcomeLose:
		switch {
		case hand.Natural:
			return "Dealer has blackjack. You lose."
		case hand.PlayerHand.IsBust() && hand.Doubled:
			return "You bust after doubling."
		case hand.PlayerHand.IsBust():
			return "You bust. You lose."
		default:
			return "Dealer wins."
		}
	default:
		return ""
	}
}

func footerText(symbol string, hand *entities.BlackjackHand) string {
	if !hand.Finished {
		return "Your move: Hit, Stand, Double or Surrender."
	}
	line := outcomeLine(hand)
	if hand.Expired {
		line = "Hand idle, stood automatically. " + line
	}
	return fmt.Sprintf("%s New balance: %s", line, common.FormatAmount(symbol, hand.NewBalance))
}

func embedColor(hand *entities.BlackjackHand) int {
	if !hand.Finished {
		return common.ColorPrimary
	}
	switch net := hand.Net(); {
	case net > 0:
		return common.ColorSuccess
	case net < 0:
		return common.ColorDanger
	default:
		return common.ColorWarning
	}
}

// buildHandEmbed renders a hand. The dealer's first card stays hidden until
// the hand is finished.
func buildHandEmbed(symbol string, hand *entities.BlackjackHand) *discordgo.MessageEmbed {
	dealerValue := "?"
	if hand.Finished {
		dealerValue = fmt.Sprintf("%d", hand.DealerValue())
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🃏 Blackjack: Bet %s", common.FormatAmount(symbol, hand.Bet)),
		Color: embedColor(hand),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("Your hand (%d)", hand.PlayerValue()),
				Value: formatCards(hand.PlayerHand, false),
			},
			{
				Name:  fmt.Sprintf("Dealer (%s)", dealerValue),
				Value: formatCards(hand.DealerHand, !hand.Finished),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footerText(symbol, hand)},
	}
}

// buildButtons returns the action row for a hand in progress, nil once finished
func buildButtons(ownerID int64, hand *entities.BlackjackHand) []discordgo.MessageComponent {
	if hand.Finished {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: customID(actionHit, ownerID)},
				discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: customID(actionStand, ownerID)},
				discordgo.Button{Label: "Double", Style: discordgo.SuccessButton, CustomID: customID(actionDouble, ownerID)},
				discordgo.Button{Label: "Surrender", Style: discordgo.DangerButton, CustomID: customID(actionSurrender, ownerID)},
			},
		},
	}
}
