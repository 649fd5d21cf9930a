package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ventia/ventia-backend/internal/repository"
	"github.com/ventia/ventia-backend/internal/service"
	"github.com/ventia/ventia-backend/internal/session"
	"github.com/ventia/ventia-backend/internal/tools"
)

// Spanish fallbacks shown to the customer when the orchestrator fails or
// returns nothing. There is no retry: the customer can always send another
// message, and cart state is already safe in the database.
const (
	fallbackEmptyReply = "Lo siento, tuve un problema para procesar tu mensaje."
	fallbackRunError   = "Hubo un inconveniente técnico, por favor intenta de nuevo más tarde."
)

// Sender delivers the reply back to the customer.
type Sender interface {
	SendMessage(ctx context.Context, phoneNumberID, to, text string) error
}

// Handler wires one inbound message through the orchestrator and back out.
type Handler struct {
	businesses   repository.BusinessRepository
	catalog      *service.CatalogService
	cart         *service.CartService
	sessions     session.Store
	orchestrator Orchestrator
	sender       Sender
	maxHistory   int
	log          *slog.Logger
}

func NewHandler(
	businesses repository.BusinessRepository,
	catalog *service.CatalogService,
	cart *service.CartService,
	sessions session.Store,
	orchestrator Orchestrator,
	sender Sender,
	maxHistory int,
	log *slog.Logger,
) *Handler {
	return &Handler{
		businesses:   businesses,
		catalog:      catalog,
		cart:         cart,
		sessions:     sessions,
		orchestrator: orchestrator,
		sender:       sender,
		maxHistory:   maxHistory,
		log:          log,
	}
}

// ProcessMessage handles one customer turn addressed to businessPhone. It
// resolves the tenant, runs the orchestrator with a toolset scoped to that
// tenant and customer, records both turns in the session and sends the
// reply. Outbound delivery failures are logged, not returned: by then every
// cart mutation is already committed.
func (h *Handler) ProcessMessage(ctx context.Context, businessPhone, customerPhone, text string) (string, error) {
	business, err := h.businesses.FindByWhatsAppNumber(ctx, businessPhone)
	if err != nil {
		return "", fmt.Errorf("failed to resolve business for number %s: %w", businessPhone, err)
	}

	log := h.log.With("business_id", business.ID, "customer", customerPhone)
	sessionID := fmt.Sprintf("%s-%s", business.WhatsAppNumber, customerPhone)

	history, err := h.sessions.History(ctx, sessionID, h.maxHistory)
	if err != nil {
		// Degrade to a memoryless turn rather than dropping the message.
		log.Warn("failed to load session history", "error", err)
		history = nil
	}

	toolset := tools.NewToolset(business, customerPhone, h.catalog, h.cart, log)
	log.Debug("toolset bound", "tools", toolset.Names())

	reply, err := h.orchestrator.Run(ctx, Request{
		Instruction: PromptForBusiness(business),
		History:     history,
		UserMessage: text,
		Toolset:     toolset,
	})
	if err != nil {
		log.Error("orchestrator run failed", "error", err)
		reply = fallbackRunError
	} else if reply == "" {
		reply = fallbackEmptyReply
	}

	h.recordTurn(ctx, log, sessionID, text, reply)

	if err := h.sender.SendMessage(ctx, business.WhatsAppNumberID, customerPhone, reply); err != nil {
		log.Error("failed to deliver reply", "error", err)
	}
	return reply, nil
}

func (h *Handler) recordTurn(ctx context.Context, log *slog.Logger, sessionID, userText, reply string) {
	now := time.Now().UTC()
	for _, msg := range []session.Message{
		{Role: session.RoleUser, Text: userText, At: now},
		{Role: session.RoleAssistant, Text: reply, At: now},
	} {
		if err := h.sessions.Append(ctx, sessionID, msg); err != nil {
			log.Warn("failed to record session turn", "role", msg.Role, "error", err)
		}
	}
}
