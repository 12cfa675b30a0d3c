package rabbitmq

const (
	ExchangeName = "booth-config"
	ExchangeKind = "topic"

	// RoutingKeyConfigUpdated carries a models.ConfigPublished body.
	RoutingKeyConfigUpdated = "config.updated"
)
