package notify

import (
	"log"
)

// directMessage 是一条待推送给指定用户的原始负载。
type directMessage struct {
	userID  uint
	payload []byte
}

// Hub maintains the set of connected notification clients and delivers
// friend events to the right user. One connection per user ID; a new
// connection replaces the old one.
type Hub struct {
	clients map[uint]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Payloads aimed at a specific user.
	direct chan directMessage
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uint]*Client),
		direct:     make(chan directMessage, 256),
	}
}

// Push queues payload for delivery to userID. The send is non-blocking so a
// full hub never stalls the Kafka consumer; the payload is dropped instead.
func (h *Hub) Push(userID uint, payload []byte) {
	select {
	case h.direct <- directMessage{userID: userID, payload: payload}:
	default:
		log.Printf("警告: Hub direct channel 已满，丢弃发给用户 %d 的通知", userID)
	}
}

// Run starts the hub and listens for messages on its channels.
func (h *Hub) Run() {
	log.Println("Notification Hub run loop started.")
	for {
		select {
		case client := <-h.register:
			if existingClient, ok := h.clients[client.UserID]; ok {
				log.Printf("用户 %d 已有通知连接，关闭旧连接并注册新连接。", client.UserID)
				close(existingClient.send)
			}
			h.clients[client.UserID] = client
			log.Printf("通知客户端已注册: UserID %d", client.UserID)

		case client := <-h.unregister:
			// Only remove the stored client if it is the same connection;
			// an old connection may already have been replaced.
			if storedClient, ok := h.clients[client.UserID]; ok && storedClient == client {
				delete(h.clients, client.UserID)
				close(client.send)
				log.Printf("通知客户端已注销: UserID %d", client.UserID)
			}

		case msg := <-h.direct:
			client, ok := h.clients[msg.userID]
			if !ok {
				// User is not connected to this hub instance.
				continue
			}
			select {
			case client.send <- msg.payload:
			default:
				// Send buffer full: assume the client is slow or gone.
				log.Printf("警告: UserID %d 的发送通道已满，移除客户端。", msg.userID)
				close(client.send)
				delete(h.clients, msg.userID)
			}
		}
	}
}
