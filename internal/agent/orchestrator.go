// Package agent turns inbound customer messages into replies. The language
// model decides which tools to call; every tool runs through a capability
// set scoped to one business and one customer, so the model can never reach
// another tenant's data.
package agent

import (
	"context"

	"github.com/ventia/ventia-backend/internal/session"
	"github.com/ventia/ventia-backend/internal/tools"
)

// Request carries everything an orchestrator needs for one turn.
type Request struct {
	Instruction string
	History     []session.Message
	UserMessage string
	Toolset     *tools.Toolset
}

// Orchestrator runs one conversational turn: it may invoke any of the
// request's tools any number of times, then returns the final reply text.
type Orchestrator interface {
	Run(ctx context.Context, req Request) (string, error)
}
