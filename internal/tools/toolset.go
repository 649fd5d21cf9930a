// Package tools is the invocation boundary between the conversational
// orchestrator and the commerce core. Each operation is a narrowly-typed
// callable taking only what an orchestrator can populate from conversation
// text: a product name and a bare number. Identity and storage are trusted
// context carried by the Toolset itself and can never be supplied, or
// overridden, by the caller.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/service"
)

// Tool names, as the orchestrator knows them.
const (
	ToolBuscarProducto    = "buscar_producto"
	ToolAgregarAlCarrito  = "agregar_al_carrito"
	ToolVerCarrito        = "ver_carrito"
	ToolRemoverDelCarrito = "remover_del_carrito"
	ToolModificarCantidad = "modificar_cantidad"
)

// Toolset binds the five tools to one conversation's trusted context.
type Toolset struct {
	business      *entity.Business
	customerPhone string
	catalog       *service.CatalogService
	cart          *service.CartService
	log           *slog.Logger
}

func NewToolset(
	business *entity.Business,
	customerPhone string,
	catalog *service.CatalogService,
	cart *service.CartService,
	log *slog.Logger,
) *Toolset {
	return &Toolset{
		business:      business,
		customerPhone: customerPhone,
		catalog:       catalog,
		cart:          cart,
		log: log.With(
			"business_id", business.ID,
			"customer", customerPhone,
		),
	}
}

// Names lists the tools this set exposes.
func (t *Toolset) Names() []string {
	return []string{
		ToolBuscarProducto,
		ToolAgregarAlCarrito,
		ToolVerCarrito,
		ToolRemoverDelCarrito,
		ToolModificarCantidad,
	}
}

// BuscarProducto looks a product up by free-text name and quotes it
// according to its availability state.
func (t *Toolset) BuscarProducto(ctx context.Context, nombreProducto string) Envelope {
	return t.run(ToolBuscarProducto, func() Envelope {
		lookup, err := t.catalog.Lookup(ctx, t.business.ID, nombreProducto, t.customerPhone)
		if err != nil {
			t.log.Error("product lookup failed", "query", nombreProducto, "err", err)
			return errorEnvelope(msgGenericError)
		}
		return lookupEnvelope(lookup.Status, nombreProducto, lookup.Product)
	})
}

// AgregarAlCarrito adds cantidad of a product to the customer's cart.
func (t *Toolset) AgregarAlCarrito(ctx context.Context, nombreProducto string, cantidad float64) Envelope {
	return t.run(ToolAgregarAlCarrito, func() Envelope {
		qty, ok := toQuantity(cantidad)
		if !ok {
			return errorEnvelope(msgInvalidQuantity)
		}
		result, err := t.cart.Add(ctx, t.business.ID, t.customerPhone, nombreProducto, qty)
		if err != nil {
			t.log.Error("cart add failed", "query", nombreProducto, "err", err)
			return errorEnvelope(msgGenericError)
		}
		if result.Status != entity.OutcomeSuccess {
			return lookupEnvelope(result.Status, nombreProducto, result.Product)
		}
		if qty.IsZero() {
			// Adding zero changes nothing; say so instead of narrating
			// an add that did not happen.
			return Envelope{
				Status: entity.OutcomeSuccess,
				Message: fmt.Sprintf("No agregué '%s' porque la cantidad indicada fue 0. Tu carrito queda igual, con un total de $%s.",
					result.Product.Name, grandTotal(result.Cart)),
				ProductDetails: detailsFor(result.Product),
			}
		}
		return Envelope{
			Status: entity.OutcomeSuccess,
			Message: fmt.Sprintf("¡Listo! Agregué %sx '%s' a tu carrito. El total de tu pedido ahora es de $%s.",
				qty.String(), result.Product.Name, grandTotal(result.Cart)),
			ProductDetails: detailsFor(result.Product),
		}
	})
}

// VerCarrito returns the cart contents from the durable store. This is the
// single source of truth for totals.
func (t *Toolset) VerCarrito(ctx context.Context) Envelope {
	return t.run(ToolVerCarrito, func() Envelope {
		result, err := t.cart.View(ctx, t.business.ID, t.customerPhone)
		if err != nil {
			t.log.Error("cart view failed", "err", err)
			return errorEnvelope(msgGenericError)
		}
		return Envelope{Status: result.Status, Message: cartSummaryText(result.Cart)}
	})
}

// RemoverDelCarrito deletes a product's line from the cart. Removing an
// absent line is success, not an error.
func (t *Toolset) RemoverDelCarrito(ctx context.Context, nombreProducto string) Envelope {
	return t.run(ToolRemoverDelCarrito, func() Envelope {
		result, err := t.cart.Remove(ctx, t.business.ID, t.customerPhone, nombreProducto)
		if err != nil {
			t.log.Error("cart remove failed", "query", nombreProducto, "err", err)
			return errorEnvelope(msgGenericError)
		}
		if result.Status != entity.OutcomeSuccess {
			return lookupEnvelope(result.Status, nombreProducto, result.Product)
		}
		return Envelope{
			Status: entity.OutcomeSuccess,
			Message: fmt.Sprintf("He eliminado '%s' de tu carrito. El nuevo total es de $%s.",
				result.Product.Name, grandTotal(result.Cart)),
		}
	})
}

// ModificarCantidad sets a line to exactly nuevaCantidad; zero deletes it.
func (t *Toolset) ModificarCantidad(ctx context.Context, nombreProducto string, nuevaCantidad float64) Envelope {
	return t.run(ToolModificarCantidad, func() Envelope {
		qty, ok := toQuantity(nuevaCantidad)
		if !ok {
			return errorEnvelope(msgInvalidQuantity)
		}
		result, err := t.cart.SetQuantity(ctx, t.business.ID, t.customerPhone, nombreProducto, qty)
		if err != nil {
			t.log.Error("cart set failed", "query", nombreProducto, "err", err)
			return errorEnvelope(msgGenericError)
		}
		if result.Status != entity.OutcomeSuccess {
			return lookupEnvelope(result.Status, nombreProducto, result.Product)
		}
		if qty.IsZero() {
			return Envelope{
				Status: entity.OutcomeSuccess,
				Message: fmt.Sprintf("He eliminado '%s' de tu carrito. El nuevo total es de $%s.",
					result.Product.Name, grandTotal(result.Cart)),
			}
		}
		return Envelope{
			Status: entity.OutcomeSuccess,
			Message: fmt.Sprintf("Actualicé la cantidad de '%s' a %s. El nuevo total de tu pedido es de $%s.",
				result.Product.Name, qty.String(), grandTotal(result.Cart)),
			ProductDetails: detailsFor(result.Product),
		}
	})
}

// Invoke dispatches a tool call by name with orchestrator-supplied
// arguments. Only the declared parameters are read; any identity fields the
// caller smuggles in (business_id, customer_phone and the like) are ignored
// in favor of the Toolset's trusted context.
func (t *Toolset) Invoke(ctx context.Context, tool string, args map[string]any) Envelope {
	switch tool {
	case ToolBuscarProducto:
		name, ok := stringArg(args, "nombre_producto")
		if !ok {
			return errorEnvelope("El parámetro 'nombre_producto' es obligatorio.")
		}
		return t.BuscarProducto(ctx, name)
	case ToolAgregarAlCarrito:
		name, ok := stringArg(args, "nombre_producto")
		if !ok {
			return errorEnvelope("El parámetro 'nombre_producto' es obligatorio.")
		}
		qty, ok := numberArg(args, "cantidad")
		if !ok {
			return errorEnvelope(msgInvalidQuantity)
		}
		return t.AgregarAlCarrito(ctx, name, qty)
	case ToolVerCarrito:
		return t.VerCarrito(ctx)
	case ToolRemoverDelCarrito:
		name, ok := stringArg(args, "nombre_producto")
		if !ok {
			return errorEnvelope("El parámetro 'nombre_producto' es obligatorio.")
		}
		return t.RemoverDelCarrito(ctx, name)
	case ToolModificarCantidad:
		name, ok := stringArg(args, "nombre_producto")
		if !ok {
			return errorEnvelope("El parámetro 'nombre_producto' es obligatorio.")
		}
		qty, ok := numberArg(args, "nueva_cantidad")
		if !ok {
			return errorEnvelope(msgInvalidQuantity)
		}
		return t.ModificarCantidad(ctx, name, qty)
	default:
		t.log.Warn("unknown tool invoked", "tool", tool)
		return errorEnvelope(fmt.Sprintf("Herramienta desconocida: %s.", tool))
	}
}

// run wraps a tool body with timing and outcome telemetry.
func (t *Toolset) run(tool string, fn func() Envelope) Envelope {
	start := time.Now()
	env := fn()
	observe(tool, env.Status, start)
	t.log.Info("tool call finished",
		"tool", tool, "status", env.Status, "took_ms", time.Since(start).Milliseconds())
	return env
}

// toQuantity validates an orchestrator-supplied number: it must be finite
// and non-negative. Zero is allowed; each operation gives it its own
// meaning (degenerate add, delete for set).
func toQuantity(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
