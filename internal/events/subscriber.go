package events

import (
	"encoding/json"
	"fmt"
)

// Message is a raw event payload together with the subject it arrived on.
type Message struct {
	Topic string
	Data  []byte
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}

// Decode unmarshals m into the event type registered for its topic.
// Unknown topics decode into map[string]any.
func Decode(m Message) (any, error) {
	var target any
	switch m.Topic {
	case TopicProjectSaved:
		target = &ProjectSaved{}
	case TopicProjectDeleted:
		target = &ProjectDeleted{}
	case TopicBuildStarted:
		target = &BuildStarted{}
	case TopicBuildOutput:
		target = &BuildOutput{}
	case TopicBuildFinished:
		target = &BuildFinished{}
	default:
		target = &map[string]any{}
	}
	if err := json.Unmarshal(m.Data, target); err != nil {
		return nil, fmt.Errorf("decoding %s event: %w", m.Topic, err)
	}
	return target, nil
}
