package agent

import (
	"context"
	"strconv"
	"strings"
)

// CommandOrchestrator is a deterministic Orchestrator for deployments that
// have not plugged in a language model yet. It maps simple Spanish commands
// straight onto the toolset and replies with the tool's own message, which
// keeps the whole pipeline exercisable end to end.
type CommandOrchestrator struct{}

func NewCommandOrchestrator() *CommandOrchestrator { return &CommandOrchestrator{} }

const commandHelp = "Puedo ayudarte con tu pedido. Prueba con:\n" +
	"buscar <producto>\n" +
	"agregar <cantidad> <producto>\n" +
	"ver carrito\n" +
	"quitar <producto>\n" +
	"cantidad <nueva cantidad> <producto>"

func (o *CommandOrchestrator) Run(ctx context.Context, req Request) (string, error) {
	text := strings.TrimSpace(req.UserMessage)
	lower := strings.ToLower(text)

	switch {
	case lower == "carrito", lower == "ver carrito", lower == "mi pedido":
		return req.Toolset.VerCarrito(ctx).Message, nil

	case strings.HasPrefix(lower, "buscar "):
		name := strings.TrimSpace(text[len("buscar "):])
		return req.Toolset.BuscarProducto(ctx, name).Message, nil

	case strings.HasPrefix(lower, "agregar "):
		qty, name := splitQuantity(text[len("agregar "):])
		return req.Toolset.AgregarAlCarrito(ctx, name, qty).Message, nil

	case strings.HasPrefix(lower, "quitar "):
		name := strings.TrimSpace(text[len("quitar "):])
		return req.Toolset.RemoverDelCarrito(ctx, name).Message, nil

	case strings.HasPrefix(lower, "remover "):
		name := strings.TrimSpace(text[len("remover "):])
		return req.Toolset.RemoverDelCarrito(ctx, name).Message, nil

	case strings.HasPrefix(lower, "cantidad "):
		qty, name := splitQuantity(text[len("cantidad "):])
		return req.Toolset.ModificarCantidad(ctx, name, qty).Message, nil

	default:
		return commandHelp, nil
	}
}

// splitQuantity reads an optional leading number ("2 leche", "0.5 jamon");
// without one the quantity defaults to 1.
func splitQuantity(rest string) (float64, string) {
	rest = strings.TrimSpace(rest)
	first, remainder, found := strings.Cut(rest, " ")
	if !found {
		return 1, rest
	}
	qty, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return 1, rest
	}
	return qty, strings.TrimSpace(remainder)
}

var _ Orchestrator = (*CommandOrchestrator)(nil)
