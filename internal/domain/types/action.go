package types

const (
	ActionBootstrap          = "bootstrap"
	ActionPushConnect        = "push_connect"
	ActionPushReconnect      = "push_reconnect"
	ActionPushClosed         = "push_closed"
	ActionPushFailed         = "push_failed"
	ActionDispatch           = "dispatch_message"
	ActionApplyLocation      = "apply_location"
	ActionApplyStatus        = "apply_status"
	ActionRouteLookup        = "route_lookup"
	ActionGeocode            = "geocode"
	ActionRender             = "render"
	ActionEngineStop         = "engine_stop"
	ActionConfigReload       = "config_reload"
	ActionRabbitMQConnected  = "rabbitmq_connected"
	ActionRabbitMQClosing    = "rabbitmq_connection_closing"
	ActionRabbitMQClosed     = "rabbitmq_connection_closed"
	ActionExternalServiceErr = "external_service_failed"
)
