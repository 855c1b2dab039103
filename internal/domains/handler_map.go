package domains

import (
	"cover/m2sync/internal/domains/handlers/order/statusupdate"
	"cover/m2sync/internal/framework"
)

// NewHandlerMap builds the routing table from action type to handler factory.
func NewHandlerMap(service statusupdate.StatusSyncer) map[string]framework.HandlerFactory {
	return map[string]framework.HandlerFactory{
		statusupdate.ActionType: statusupdate.NewFactory(service),
	}
}
