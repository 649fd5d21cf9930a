package tools

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
)

// ProductDetails is the subset of a product the orchestrator may see and
// narrate. Price is present only when the product has a usable price.
type ProductDetails struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Unit   string   `json:"unit"`
	Price  *float64 `json:"price,omitempty"`
}

// Envelope is the uniform result shape of every tool call. Status comes
// from the closed vocabulary in entity.OutcomeStatus; Message is the
// human-readable text the orchestrator narrates from. Nothing below the
// boundary ever raises: failures become status "error" with a generic
// message that leaks no internals.
type Envelope struct {
	Status         entity.OutcomeStatus `json:"status"`
	Message        string               `json:"message"`
	ProductDetails *ProductDetails      `json:"product_details,omitempty"`
}

func detailsFor(p *entity.Product) *ProductDetails {
	if p == nil {
		return nil
	}
	d := &ProductDetails{
		ID:     p.ID,
		Name:   p.Name,
		Status: string(p.Status),
		Unit:   p.Unit,
	}
	if p.HasUsablePrice() {
		price := p.Price.Decimal.InexactFloat64()
		d.Price = &price
	}
	return d
}

const (
	msgGenericError    = "Tuve un problema al procesar tu solicitud. Por favor intenta de nuevo."
	msgInvalidQuantity = "La cantidad debe ser un número igual o mayor a cero."
	msgEmptyCart       = "Tu carrito de compras está vacío en este momento."
)

func errorEnvelope(message string) Envelope {
	return Envelope{Status: entity.OutcomeError, Message: message}
}

// lookupEnvelope renders a product lookup outcome in the voice the
// orchestrator relays to the customer.
func lookupEnvelope(status entity.OutcomeStatus, query string, p *entity.Product) Envelope {
	env := Envelope{Status: status, ProductDetails: detailsFor(p)}
	switch status {
	case entity.OutcomeSuccess:
		env.Message = fmt.Sprintf("¡Sí tenemos %s! Cuesta $%s.", p.Name, p.Price.Decimal.StringFixed(2))
	case entity.OutcomePriceNotFound:
		env.Message = fmt.Sprintf("Encontré el producto '%s', pero no tengo su precio en este momento.", p.Name)
	case entity.OutcomeOutOfStock:
		env.Message = fmt.Sprintf("Lo siento, por el momento se nos agotó el producto '%s'.", p.Name)
	case entity.OutcomeUnconfirmed:
		env.Message = fmt.Sprintf("Permíteme un momento para confirmar si tenemos '%s' y su precio.", p.Name)
	case entity.OutcomeNotAvailable:
		env.Message = fmt.Sprintf("Lo siento, no manejamos el producto '%s'.", p.Name)
		env.ProductDetails = nil
	case entity.OutcomeNotFound:
		env.Message = fmt.Sprintf("No encontré un producto parecido a '%s'.", query)
	default:
		return errorEnvelope(msgGenericError)
	}
	return env
}

func cartSummaryText(view *entity.CartView) string {
	if view == nil || view.Empty() {
		return msgEmptyCart
	}
	var lines []string
	for _, l := range view.Lines {
		lines = append(lines, fmt.Sprintf("%sx %s ($%s c/u)",
			l.Quantity.String(), l.Name, l.UnitPrice.StringFixed(2)))
	}
	return fmt.Sprintf("En tu carrito tienes:\n- %s\n\nEl total es de $%s.",
		strings.Join(lines, "\n- "), view.GrandTotal.StringFixed(2))
}

func grandTotal(view *entity.CartView) string {
	if view == nil {
		return decimal.Zero.StringFixed(2)
	}
	return view.GrandTotal.StringFixed(2)
}
