package entity

// OutcomeStatus is the closed vocabulary of result codes the tool boundary
// returns to the conversational orchestrator. The orchestrator branches its
// narration on these and on nothing else.
type OutcomeStatus string

const (
	OutcomeSuccess       OutcomeStatus = "success"
	OutcomeError         OutcomeStatus = "error"
	OutcomeNotFound      OutcomeStatus = "not_found"
	OutcomePriceNotFound OutcomeStatus = "price_not_found"
	OutcomeOutOfStock    OutcomeStatus = "out_of_stock"
	OutcomeUnconfirmed   OutcomeStatus = "unconfirmed"
	OutcomeNotAvailable  OutcomeStatus = "not_available"
	OutcomeEmpty         OutcomeStatus = "empty"
)

// AllowsCartMutation reports whether a product lookup with this outcome may
// be followed by a cart mutation. Only a successful CONFIRMED-with-price
// lookup qualifies.
func (s OutcomeStatus) AllowsCartMutation() bool { return s == OutcomeSuccess }
