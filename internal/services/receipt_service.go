package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/nivash/building-service/internal/config"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/utils"
)

const rentReceiptEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f4f4f4; margin: 0; padding: 0; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #dddddd; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #2e7d32; margin-bottom: 15px; }
.data-label { font-weight: bold; }
ul { list-style-type: none; padding: 0; }
li { margin-bottom: 8px; }
.footer { margin-top: 20px; font-size: 12px; color: #777777; text-align: center; }
</style>
</head>
<body>
<div class="container">
<p class="header">Rent Payment Received</p>
<p>Hi %s,</p>
<p>We have received your rent payment for <strong>%s %d</strong>. Here is your receipt.</p>
<ul>
  <li><span class="data-label">Apartment:</span> %s (Block %s, Floor %d)</li>
  <li><span class="data-label">Rent:</span> $%.2f</li>
  <li><span class="data-label">Discount:</span> $%.2f (%d%%)</li>
  <li><span class="data-label">Amount Paid:</span> $%.2f</li>
  <li><span class="data-label">Transaction ID:</span> %s</li>
</ul>
<div class="footer">The Nivash Team</div>
</div>
</body>
</html>`

// ReceiptService emails a receipt after a ledger entry is written.
// Delivery failures never affect the payment itself.
type ReceiptService struct {
	cfg            *config.Config
	sendgridClient *sendgrid.Client
}

func NewReceiptService(cfg *config.Config) *ReceiptService {
	return &ReceiptService{
		cfg:            cfg,
		sendgridClient: sendgrid.NewSendClient(cfg.SendgridAPIKey),
	}
}

func (s *ReceiptService) SendReceipt(ctx context.Context, p models.Payment) error {
	from := mail.NewEmail(s.cfg.OrganizationName, s.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(p.TenantName, p.TenantEmail)

	subject := fmt.Sprintf("Rent receipt for %s %d", p.Month, p.Year)
	plainTextContent := fmt.Sprintf(
		"Hi %s, we received your rent payment of $%.2f for %s %d (apartment %s). Transaction ID: %s.",
		p.TenantName, cents(p.FinalCents), p.Month, p.Year, p.ApartmentNo, p.StripePaymentIntentID,
	)
	htmlContent := fmt.Sprintf(rentReceiptEmailHTML,
		p.TenantName,
		p.Month, p.Year,
		p.ApartmentNo, p.Block, p.Floor,
		cents(p.OriginalRentCents),
		cents(p.DiscountCents), p.DiscountPercent,
		cents(p.FinalCents),
		p.StripePaymentIntentID,
	)

	msg := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)
	if s.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	if _, err := s.sendgridClient.SendWithContext(ctx, msg); err != nil {
		return err
	}
	utils.Logger.Infof("Sent rent receipt to %s for %s %d", p.TenantEmail, p.Month, p.Year)
	return nil
}

func cents(c int64) float64 { return float64(c) / 100 }
