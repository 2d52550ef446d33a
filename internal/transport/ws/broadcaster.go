package ws

import (
	"encoding/json"
	"log"

	"quickchat/internal/presence"
)

// PresenceBroadcaster pushes the full online-user set to every live
// connection whenever the registry changes. Full set, not a delta: the
// online set is small and a wholesale replace keeps clients trivially
// consistent.
type PresenceBroadcaster struct {
	registry *presence.Registry
}

func NewPresenceBroadcaster(registry *presence.Registry) *PresenceBroadcaster {
	return &PresenceBroadcaster{registry: registry}
}

// Broadcast snapshots the registry and sends the online-users event to all
// connections. Delivery failures to individual dead sockets are ignored;
// their own disconnect handling corrects the set on the next change.
func (b *PresenceBroadcaster) Broadcast() {
	online := b.registry.Online()

	evt, err := NewEvent(EventTypeOnlineUsers, OnlineUsersPayload{UserIDs: online})
	if err != nil {
		log.Printf("ws broadcaster: marshal error: %v", err)
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ws broadcaster: marshal error: %v", err)
		return
	}

	for _, conn := range b.registry.Connections() {
		conn.Send(data)
	}
}
