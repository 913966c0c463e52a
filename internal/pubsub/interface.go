package pubsub

// PubSubClient publishes engine events for downstream consumers and decodes
// push-delivered payloads.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
