package bus

//go:generate mockgen -source=bus.go -destination=mocks/mocks.go -package=mocks Publisher

import (
	"context"

	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/sse"
)

const TopicAdmins = "admins"

// UserTopic is the real-time channel of one employee
func UserTopic(employeeID string) string {
	return "user:" + employeeID
}

// Message is the payload carried on a topic
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher delivers a message to whoever listens on topic. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
}

// HubPublisher delivers straight into the in-process SSE hub.
// Used when the service runs as a single instance.
type HubPublisher struct {
	hub *sse.Hub
}

func NewHubPublisher(hub *sse.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(ctx context.Context, topic string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.hub.Publish(topic, sse.Event{Event: msg.Event, Data: msg.Data})
	return nil
}
