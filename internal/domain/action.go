package domain

// Commerce lifecycle events relayed between clients. Events arriving with a
// room reference fan out to that room only; events without one go to every
// connected client.
const (
	ActionCheckoutInitiated  = "checkout_initiated"
	ActionCheckoutCompleted  = "checkout_completed"
	ActionUserViewingProduct = "user_viewing_product"
	ActionUserLeftProduct    = "user_left_product"
	ActionOrderPaid          = "order_paid"
)

var actionEvents = map[string]struct{}{
	ActionCheckoutInitiated:  {},
	ActionCheckoutCompleted:  {},
	ActionUserViewingProduct: {},
	ActionUserLeftProduct:    {},
	ActionOrderPaid:          {},
}

func IsActionEvent(name string) bool {
	_, ok := actionEvents[name]
	return ok
}
