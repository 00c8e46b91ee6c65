package floor

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cuetracker/billiard-app/models"
)

// Event types pushed to connected dashboards.
const (
	EventTableUpdate     = "table_update"
	EventTableCreate     = "table_create"
	EventTableDelete     = "table_delete"
	EventBillCreated     = "bill_created"
	EventStockLow        = "stock_low"
	EventStaffNotif      = "staff_notification"
	EventDashboardUpdate = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected staff/admin dashboard. Clients only
// receive; session mutations always go through the HTTP API.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var floorHub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	floorHub.clients[conn] = role
}

// UnregisterClient drops a connection.
func UnregisterClient(conn *websocket.Conn) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	delete(floorHub.clients, conn)
	conn.Close()
}

// BroadcastTableUpdate pushes the new table state after any session
// transition so every terminal re-derives its displayed timer.
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

func BroadcastTableCreate(table models.Table) {
	broadcast(Message{
		Event: EventTableCreate,
		Data:  table,
	})
}

func BroadcastTableDelete(table models.Table) {
	broadcast(Message{
		Event: EventTableDelete,
		Data:  table,
	})
}

// BroadcastBillCreated announces a committed bill.
func BroadcastBillCreated(bill models.Bill) {
	broadcast(Message{
		Event: EventBillCreated,
		Data:  bill,
	})
}

// BroadcastStockLow warns the floor that a product is running out.
func BroadcastStockLow(product models.Product) {
	broadcast(Message{
		Event: EventStockLow,
		Data:  product,
	})
}

func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range floorHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
