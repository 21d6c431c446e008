package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"meal-coupon/coupon"
	"meal-coupon/registration"
)

var couponTemplate = template.Must(template.New("coupon").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Your meal coupon</title></head>
<body style="background-color: #f9fafb; margin: 0; padding: 0; font-family: Arial, sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <tr>
      <td style="background: #1a1a1a; padding: 32px 20px; text-align: center; border-radius: 12px; color: #ffffff;">
        <h1 style="font-size: 22px;">Hi {{.Name}}, your meal coupon is ready</h1>
        <p style="color: #9ca3af;">Team <strong>{{.Team}}</strong></p>
        <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">{{.Code}}</p>
        <img src="{{.QRImageURL}}" alt="Coupon QR code" width="220" height="220" style="background: #ffffff; padding: 8px; border-radius: 8px;">
        <table cellpadding="6" style="margin: 24px auto; color: #e5e7eb;">
          {{range .Meals}}<tr><td>{{.Category}}</td><td style="text-align: right;">{{.Count}}</td></tr>{{end}}
          <tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>&#8377;{{.Total}}</strong></td></tr>
        </table>
        <p style="color: #9ca3af; font-size: 14px;">Show this QR code or the code above at the food counter. It can be redeemed once.</p>
      </td>
    </tr>
  </table>
</body>
</html>
`))

type mealLine struct {
	Category registration.Category
	Count    int
}

type couponData struct {
	Name       string
	Team       string
	Code       string
	QRImageURL string
	Meals      []mealLine
	Total      int64
}

// Dispatcher emails a registration its coupon. It implements registration.Notifier.
type Dispatcher struct {
	mailer   Mailer
	codec    *coupon.Codec
	menu     registration.Menu
	endpoint string
}

func NewDispatcher(mailer Mailer, codec *coupon.Codec, menu registration.Menu, qrEndpoint string) *Dispatcher {
	return &Dispatcher{mailer: mailer, codec: codec, menu: menu, endpoint: qrEndpoint}
}

func (d *Dispatcher) Notify(ctx context.Context, reg registration.Registration) error {
	html, err := d.Render(reg)
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, Message{
		To:      reg.Email,
		Subject: fmt.Sprintf("Your meal coupon, code %s", reg.VerificationCode),
		HTML:    html,
	})
}

// Render builds the coupon email body for reg.
func (d *Dispatcher) Render(reg registration.Registration) (string, error) {
	payload, err := d.codec.Encode(reg.ID, reg.VerificationCode)
	if err != nil {
		return "", fmt.Errorf("encode coupon payload: %w", err)
	}

	data := couponData{
		Name:       reg.ContactName,
		Team:       reg.TeamName,
		Code:       reg.VerificationCode,
		QRImageURL: coupon.HostedImageURL(d.endpoint, payload, coupon.DefaultImageSize),
		Total:      reg.TotalPrice,
	}
	if data.Name == "" {
		data.Name = reg.TeamName
	}
	for _, c := range d.menu.Categories() {
		if n := reg.MealCounts[c]; n > 0 {
			data.Meals = append(data.Meals, mealLine{Category: c, Count: n})
		}
	}

	var buf bytes.Buffer
	if err := couponTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render coupon email: %w", err)
	}
	return buf.String(), nil
}
