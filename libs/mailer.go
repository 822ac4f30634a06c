package libs

import (
	"errors"
	"fmt"
	"strings"

	"medcart/config"
	"medcart/models"

	"gopkg.in/gomail.v2"
)

var ErrSMTPNotConfigured = errors.New("SMTP configuration missing")

type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	storeName string
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return nil, ErrSMTPNotConfigured
	}

	return &Mailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:      cfg.SMTPFrom,
		storeName: cfg.StoreName,
	}, nil
}

func (m *Mailer) SendOrderConfirmation(toEmail string, order models.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s - %s", shortID(order.ID), m.storeName))
	msg.SetBody("text/html", orderConfirmationBody(m.storeName, order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func orderConfirmationBody(storeName string, order models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			item.Name, item.Quantity, FormatRupee(item.UnitPrice*float64(item.Quantity)))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
        <h2 style="color: #0f766e;">%s</h2>
        <p>Thank you for your order!</p>
        <p><strong>Order Number:</strong> %s</p>
        <p><strong>Payment:</strong> %s</p>
        <table style="width: 100%%;">%s</table>
        <p>Subtotal: %s<br>Delivery: %s<br>Platform fee: %s<br>Discount: -%s</p>
        <p><strong>Total Amount: %s</strong></p>
        <p>Delivering to %s, %s, %s %s</p>
    </div>
</body>
</html>`,
		storeName, order.ID, strings.ToUpper(order.PaymentMethod), rows.String(),
		FormatRupee(order.Subtotal), FormatRupee(order.DeliveryFee), FormatRupee(order.PlatformFee),
		FormatRupee(order.Discount), FormatRupee(order.TotalAmount),
		order.Address.AddressLine1, order.Address.City, order.Address.State, order.Address.PostalCode)
}

// FormatRupee renders an amount with Indian digit grouping, e.g. ₹1,23,456.50.
func FormatRupee(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	str := fmt.Sprintf("%.2f", amount)
	whole, frac := str[:len(str)-3], str[len(str)-2:]

	var grouped string
	if len(whole) <= 3 {
		grouped = whole
	} else {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}

	out := "₹" + grouped + "." + frac
	if negative {
		out = "-" + out
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
