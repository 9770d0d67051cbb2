package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// payload mirrors the slice of the Graph API webhook body the dispatcher
// cares about. Everything else in the delivery is ignored.
type payload struct {
	Entry []struct {
		Messaging []messagingEvent `json:"messaging"`
		Changes   []changeEvent    `json:"changes"`
	} `json:"entry"`
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message *struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
	StoryMention *struct {
		ID string `json:"id"`
	} `json:"story_mention"`
}

type changeEvent struct {
	Field string `json:"field"`
	Value struct {
		ID   string `json:"id"`
		Text string `json:"text"`
		From struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"from"`
	} `json:"value"`
}

// ParsePayload validates and normalizes a raw webhook delivery into zero or
// more Inbound events. Echoes of the tenant's own outbound messages and
// entries missing an event id or sender are dropped here, before the
// dispatch state machine ever sees them.
func ParsePayload(routingToken string, body []byte, receivedAt time.Time) ([]Inbound, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	var events []Inbound
	for _, entry := range p.Entry {
		for _, m := range entry.Messaging {
			if m.Sender.ID == "" {
				continue
			}
			switch {
			case m.Message != nil:
				if m.Message.IsEcho || m.Message.MID == "" || m.Message.Text == "" {
					continue
				}
				events = append(events, Inbound{
					ID:           m.Message.MID,
					RoutingToken: routingToken,
					Kind:         KindDirectMessage,
					SenderID:     m.Sender.ID,
					Text:         m.Message.Text,
					ReceivedAt:   receivedAt,
				})
			case m.StoryMention != nil:
				if m.StoryMention.ID == "" {
					continue
				}
				events = append(events, Inbound{
					ID:           m.StoryMention.ID,
					RoutingToken: routingToken,
					Kind:         KindMention,
					SenderID:     m.Sender.ID,
					ReceivedAt:   receivedAt,
				})
			}
		}
		for _, ch := range entry.Changes {
			if ch.Field != "comments" {
				continue
			}
			if ch.Value.ID == "" || ch.Value.From.ID == "" {
				continue
			}
			events = append(events, Inbound{
				ID:           ch.Value.ID,
				RoutingToken: routingToken,
				Kind:         KindComment,
				SenderID:     ch.Value.From.ID,
				Username:     ch.Value.From.Username,
				Text:         ch.Value.Text,
				ReceivedAt:   receivedAt,
			})
		}
	}
	return events, nil
}
