// Package telegram posts new registrations to the organisers' chat so payment
// screenshots can be reviewed as they arrive.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"meal-coupon/registration"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tgbotapi.BotAPI the alerter uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Alerter implements registration.Notifier.
type Alerter struct {
	bot    Sender
	chatID int64
	menu   registration.Menu
}

func New(token string, chatID int64, menu registration.Menu) (*Alerter, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	b.Debug = false
	return NewWithSender(b, chatID, menu), nil
}

func NewWithSender(bot Sender, chatID int64, menu registration.Menu) *Alerter {
	return &Alerter{bot: bot, chatID: chatID, menu: menu}
}

func (a *Alerter) Notify(ctx context.Context, reg registration.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(a.chatID, a.Text(reg))
	msg.DisableWebPagePreview = true
	if _, err := a.bot.Send(msg); err != nil {
		return &registration.UpstreamError{Service: "telegram", Err: err}
	}
	return nil
}

// Text is the plain text alert for reg.
func (a *Alerter) Text(reg registration.Registration) string {
	var meals []string
	for _, c := range a.menu.Categories() {
		if n := reg.MealCounts[c]; n > 0 {
			meals = append(meals, fmt.Sprintf("%s x%d", c, n))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New registration: %s (%s)\n", reg.TeamName, reg.College)
	fmt.Fprintf(&b, "Contact: %s, %s\n", reg.ContactName, reg.Phone)
	fmt.Fprintf(&b, "Meals: %s, total ₹%d\n", strings.Join(meals, ", "), reg.TotalPrice)
	fmt.Fprintf(&b, "Payment ref: %s", reg.PaymentReference)
	if reg.PaymentProofRef != "" {
		fmt.Fprintf(&b, "\nProof: %s", reg.PaymentProofRef)
	}
	return b.String()
}
