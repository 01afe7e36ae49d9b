package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/storefront/internal/models"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramService handles sending back-office notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
	apiBase     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		apiBase:     defaultTelegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithAPIBase points the service at another Bot API host.
func (s *TelegramService) WithAPIBase(base string) *TelegramService {
	s.apiBase = strings.TrimRight(base, "/")
	return s
}

// Enabled reports whether both the bot token and admin chat are configured.
func (s *TelegramService) Enabled() bool {
	return s != nil && s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// FormatPrice formats an amount in minor units with thousand separators.
func FormatPrice(amount int64, currency string) string {
	if currency == "" {
		currency = "VND"
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	str := strconv.FormatInt(amount, 10)
	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return sign + result.String() + " " + currency
}

var paymentMethodLabels = map[models.PaymentMethod]string{
	models.PaymentMethodCOD:          "Cash on delivery",
	models.PaymentMethodBankTransfer: "Bank transfer",
	models.PaymentMethodVNPay:        "VNPay",
	models.PaymentMethodMomo:         "MoMo",
}

// NotifyNewOrder sends a summary of a freshly placed order to the admin chat.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	if !s.Enabled() {
		return nil
	}
	return s.SendToAdmin(ctx, FormatOrderMessage(order))
}

// FormatOrderMessage renders the HTML body used for new-order notifications.
func FormatOrderMessage(order *models.Order) string {
	var items strings.Builder
	for i, item := range order.Items {
		name := item.ProductName
		if item.VariantLabel != "" {
			name += " (" + item.VariantLabel + ")"
		}
		items.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(name),
			item.Quantity,
			FormatPrice(item.UnitPrice, order.Currency),
			FormatPrice(item.LineTotal, order.Currency),
		))
	}

	payment := paymentMethodLabels[order.PaymentMethod]
	if payment == "" {
		payment = string(order.PaymentMethod)
	}

	var discount string
	if order.Discount > 0 {
		discount = fmt.Sprintf("<b>Coupon:</b> %s (-%s)\n",
			html.EscapeString(order.CouponCode), FormatPrice(order.Discount, order.Currency))
	}

	message := fmt.Sprintf(`<b>NEW ORDER</b>
<b>Order:</b> %s
<b>Customer:</b> %s
<b>Phone:</b> %s
<b>Ship to:</b> %s
<b>Items:</b>
%s%s<b>Shipping:</b> %s
<b>Total:</b> %s
<b>Payment:</b> %s`,
		order.OrderNumber,
		html.EscapeString(order.CustomerName),
		html.EscapeString(order.CustomerPhone),
		html.EscapeString(order.ShippingAddress),
		items.String(),
		discount,
		FormatPrice(order.ShippingFee, order.Currency),
		FormatPrice(order.Total, order.Currency),
		payment,
	)

	return strings.TrimSpace(message)
}

// NotifyStatusChange tells the admin chat that an order moved to a new status.
func (s *TelegramService) NotifyStatusChange(ctx context.Context, order *models.Order, actor string) error {
	if !s.Enabled() {
		return nil
	}

	message := fmt.Sprintf(`<b>ORDER UPDATED</b>
<b>Order:</b> %s
<b>Status:</b> %s
<b>Payment:</b> %s
<b>By:</b> %s`,
		order.OrderNumber,
		order.Status,
		order.PaymentStatus,
		html.EscapeString(actor),
	)

	return s.SendToAdmin(ctx, message)
}
