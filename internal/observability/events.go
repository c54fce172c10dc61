package observability

import "context"

type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// Publisher is the minimal broker surface events are written to.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// HeaderPublisher is implemented by publishers that can attach transport
// headers to a message.
type HeaderPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
}

var defaultPublisher Publisher

func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent sends an event envelope through the configured publisher.
// A nil publisher drops the event.
func PublishEvent(ctx context.Context, routingKey string, envelope EventEnvelope, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}

	var err error
	if hp, ok := defaultPublisher.(HeaderPublisher); ok {
		err = hp.PublishJSON(ctx, routingKey, envelope, headers)
	} else {
		err = defaultPublisher.Publish(ctx, routingKey, envelope)
	}
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
