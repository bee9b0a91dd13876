package ws

import (
	"encoding/json"
	"log"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// Bridge connects the store's subscription feeds to the hub: every
// snapshot the store pushes becomes one broadcast event. Stop releases
// the subscriptions.
type Bridge struct {
	cancels []func()
}

// NewBridge subscribes the hub to every entity feed of st.
func NewBridge(st store.Store, hub *Hub) *Bridge {
	emit := func(eventType string, v any) {
		payload, err := json.Marshal(v)
		if err != nil {
			log.Printf("ERROR: encode %s payload: %v", eventType, err)
			return
		}
		hub.Broadcast(Event{Type: eventType, Payload: payload})
	}

	b := &Bridge{}
	b.cancels = []func(){
		st.SubscribeMenu(func(items []store.MenuItem) { emit("menu.updated", items) }),
		st.SubscribeTables(func(tables []store.Table) { emit("tables.updated", tables) }),
		st.SubscribeOrders(func(orders []store.Order) { emit("orders.updated", orders) }),
		st.SubscribeSettings(func(s store.AppSettings) { emit("settings.updated", s) }),
		st.SubscribeProfile(func(p store.BusinessProfile) { emit("profile.updated", p) }),
	}
	return b
}

// Stop cancels the store subscriptions.
func (b *Bridge) Stop() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}
