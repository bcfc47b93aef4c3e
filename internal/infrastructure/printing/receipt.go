package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/sales"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// currencySymbols maps ISO 4217 codes to display symbols for receipts
var currencySymbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
}

// groupingPrinter renders decimal amounts with thousands separators
var groupingPrinter = message.NewPrinter(language.English)

// ReceiptRenderer builds a sale receipt and renders it to PDF.
// Receipts are rendered on 80mm thermal paper by default.
type ReceiptRenderer struct {
	pdfRenderer PDFRenderer
	paperSize   PaperSize
	timeout     time.Duration
	logger      *zap.Logger
	tmpl        *template.Template
}

// ReceiptRendererOption is a functional option for configuring ReceiptRenderer
type ReceiptRendererOption func(*ReceiptRenderer)

// WithReceiptLogger sets a custom logger
func WithReceiptLogger(logger *zap.Logger) ReceiptRendererOption {
	return func(r *ReceiptRenderer) {
		r.logger = logger
	}
}

// WithReceiptPaperSize sets the paper size for receipts
func WithReceiptPaperSize(size PaperSize) ReceiptRendererOption {
	return func(r *ReceiptRenderer) {
		r.paperSize = size
	}
}

// WithReceiptTimeout sets the rendering timeout
func WithReceiptTimeout(d time.Duration) ReceiptRendererOption {
	return func(r *ReceiptRenderer) {
		r.timeout = d
	}
}

// NewReceiptRenderer creates a new ReceiptRenderer backed by the given PDF renderer
func NewReceiptRenderer(pdfRenderer PDFRenderer, opts ...ReceiptRendererOption) (*ReceiptRenderer, error) {
	tmpl, err := template.New("receipt").Funcs(receiptFuncMap()).Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt template: %w", err)
	}

	r := &ReceiptRenderer{
		pdfRenderer: pdfRenderer,
		paperSize:   PaperSizeReceipt80,
		logger:      zap.NewNop(),
		tmpl:        tmpl,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// receiptData is the template context for a receipt
type receiptData struct {
	Store        *identity.Store
	Sale         *sales.Sale
	Symbol       string
	GeneratedAt  time.Time
	ShowDelivery bool
}

// RenderReceipt renders a PDF receipt for a settled sale
func (r *ReceiptRenderer) RenderReceipt(ctx context.Context, store *identity.Store, sale *sales.Sale) ([]byte, error) {
	if store == nil || sale == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "store and sale are required", nil)
	}

	symbol, ok := currencySymbols[strings.ToUpper(store.Currency)]
	if !ok {
		symbol = store.Currency + " "
	}

	data := receiptData{
		Store:        store,
		Sale:         sale,
		Symbol:       symbol,
		GeneratedAt:  time.Now(),
		ShowDelivery: sale.DeliveryType == sales.DeliveryDelivery,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to execute receipt template", err)
	}

	result, err := r.pdfRenderer.Render(ctx, &RenderRequest{
		HTML:      buf.String(),
		PaperSize: r.paperSize,
		Margins:   Margins{Top: 3, Right: 3, Bottom: 3, Left: 3},
		Title:     "Receipt " + sale.DisplayCode,
		Timeout:   r.timeout,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("receipt rendered",
		zap.String("display_code", sale.DisplayCode),
		zap.Int("bytes", len(result.PDFData)))

	return result.PDFData, nil
}

// Close releases the underlying PDF renderer
func (r *ReceiptRenderer) Close() error {
	return r.pdfRenderer.Close()
}

// receiptFuncMap returns the template functions used by the receipt template
func receiptFuncMap() template.FuncMap {
	return template.FuncMap{
		"money":         formatMoney,
		"formatDate":    func(t time.Time) string { return t.Format("02 Jan 2006") },
		"formatTime":    func(t time.Time) string { return t.Format("02 Jan 2006 15:04") },
		"percent":       formatPercent,
		"upper":         strings.ToUpper,
		"channelLabel":  channelLabel,
		"paymentLabel":  paymentLabel,
		"deliveryLabel": deliveryLabel,
	}
}

// formatMoney formats a decimal amount with thousands separators and two decimals
func formatMoney(d decimal.Decimal) string {
	units := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(units)).Abs().Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents >= 100 {
		// Rounding carried over into the next unit
		units++
		cents -= 100
	}
	return groupingPrinter.Sprintf("%d", units) + fmt.Sprintf(".%02d", cents)
}

// formatPercent renders a rate like 0.075 as "7.5%"
func formatPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).String() + "%"
}

func channelLabel(c sales.Channel) string {
	switch c {
	case sales.ChannelPOS:
		return "In store"
	case sales.ChannelOnline:
		return "Online"
	}
	return string(c)
}

func paymentLabel(p sales.PaymentMethod) string {
	switch p {
	case sales.PaymentCash:
		return "Cash"
	case sales.PaymentCard:
		return "Card"
	case sales.PaymentTransfer:
		return "Bank transfer"
	}
	return string(p)
}

func deliveryLabel(d sales.DeliveryType) string {
	switch d {
	case sales.DeliveryPickup:
		return "Pickup"
	case sales.DeliveryDelivery:
		return "Delivery"
	}
	return string(d)
}

// receiptTemplate is the HTML template for an 80mm thermal receipt
const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: 'Courier New', monospace; font-size: 11px; color: #000; width: 72mm; }
  .center { text-align: center; }
  .right { text-align: right; }
  .bold { font-weight: bold; }
  .store-name { font-size: 14px; font-weight: bold; }
  .divider { border-top: 1px dashed #000; margin: 6px 0; }
  table { width: 100%; border-collapse: collapse; }
  td { vertical-align: top; padding: 1px 0; }
  .qty { width: 12%; }
  .amount { width: 26%; text-align: right; }
  .totals td { padding: 1px 0; }
  .grand-total { font-size: 13px; font-weight: bold; }
  .footer { margin-top: 8px; font-size: 10px; }
</style>
</head>
<body>
  <div class="center">
    <div class="store-name">{{ .Store.Name }}</div>
    {{- if .Store.Address }}<div>{{ .Store.Address }}</div>{{ end }}
    {{- if .Store.ContactPhone }}<div>Tel: {{ .Store.ContactPhone }}</div>{{ end }}
  </div>
  <div class="divider"></div>
  <table>
    <tr><td>Receipt</td><td class="right bold">{{ .Sale.DisplayCode }}</td></tr>
    <tr><td>Date</td><td class="right">{{ formatTime .Sale.CreatedAt }}</td></tr>
    <tr><td>Channel</td><td class="right">{{ channelLabel .Sale.Channel }}</td></tr>
    <tr><td>Payment</td><td class="right">{{ paymentLabel .Sale.PaymentMethod }}</td></tr>
    {{- if .Sale.Customer.Name }}
    <tr><td>Customer</td><td class="right">{{ .Sale.Customer.Name }}</td></tr>
    {{- end }}
  </table>
  <div class="divider"></div>
  <table>
    {{- range .Sale.Items }}
    <tr>
      <td colspan="3">{{ .ProductName }}</td>
    </tr>
    <tr>
      <td class="qty">{{ .Quantity }}x</td>
      <td>{{ $.Symbol }}{{ money .UnitPrice }}</td>
      <td class="amount">{{ $.Symbol }}{{ money .LineTotal }}</td>
    </tr>
    {{- end }}
  </table>
  <div class="divider"></div>
  <table class="totals">
    <tr><td>Subtotal</td><td class="right">{{ .Symbol }}{{ money .Sale.Subtotal }}</td></tr>
    <tr><td>VAT ({{ percent .Sale.VATRate }})</td><td class="right">{{ .Symbol }}{{ money .Sale.TaxAmount }}</td></tr>
    <tr class="grand-total"><td>TOTAL</td><td class="right">{{ .Symbol }}{{ money .Sale.Total }}</td></tr>
  </table>
  {{- if .ShowDelivery }}
  <div class="divider"></div>
  <table>
    <tr><td>Delivery</td><td class="right">{{ deliveryLabel .Sale.DeliveryType }}</td></tr>
    {{- if .Sale.DeliveryAddress }}
    <tr><td colspan="2">{{ .Sale.DeliveryAddress }}</td></tr>
    {{- end }}
  </table>
  {{- end }}
  <div class="divider"></div>
  <div class="center footer">
    <div>Thank you for your purchase!</div>
    <div>Prices include VAT where applicable.</div>
  </div>
</body>
</html>`
