package http

import (
	"github.com/contoso-notify/internal/application/notification"
	"github.com/contoso-notify/internal/transport/http/handler"
	appmiddleware "github.com/contoso-notify/internal/transport/http/middleware"
)

// Deps holds the dependencies the router needs. The transport behind
// Notifications is chosen once at startup by cmd/api.
type Deps struct {
	Notifications notification.Service
	// TransportName is reported by /health-check/transport.
	TransportName string
	// QueueDepth adds the backlog to /health-check/transport; nil omits it.
	QueueDepth handler.QueueDepth
	// ProducerAuth guards the events endpoint; nil leaves it open.
	ProducerAuth appmiddleware.TokenVerifier
}
