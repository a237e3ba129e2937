package handlers

import (
	"log"
	"sync"

	"realmwalk/server/services"
)

// ClientManager manages connected clients
type ClientManager struct {
	clients map[string]*ClientHandler // agent ID to ClientHandler
	mutex   sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
	}
}

// AddClient adds a client to the manager
func (cm *ClientManager) AddClient(agentID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[agentID] = handler
}

// RemoveClient removes a client from the manager if agentID still maps to it
func (cm *ClientManager) RemoveClient(agentID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	if cm.clients[agentID] == handler {
		delete(cm.clients, agentID)
	}
}

// Count returns the number of registered clients
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToAll sends a message to all connected clients
func (cm *ClientManager) BroadcastToAll(msg interface{}) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for id, client := range cm.clients {
		if err := client.conn.SendMessage(msg); err != nil {
			log.Printf("Error broadcasting to client %s: %v", id, err)
		}
	}
}

// ExecuteOnAllClients executes a function for each connected client
func (cm *ClientManager) ExecuteOnAllClients(action func(*ClientHandler)) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for _, client := range cm.clients {
		action(client)
	}
}

// OnTick pushes a world update to every client and routes navigation
// outcomes to the client owning the agent.
func (cm *ClientManager) OnTick(_ uint64, results []services.NavResult) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for _, r := range results {
		if client, ok := cm.clients[r.AgentID]; ok {
			client.sendNavResult(r)
		}
	}
	for _, client := range cm.clients {
		client.sendWorldUpdate()
	}
}
