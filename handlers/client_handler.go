package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/gorilla/websocket"

	"realmwalk/server/messages"
	"realmwalk/server/models"
	"realmwalk/server/network"
	"realmwalk/server/planner"
	"realmwalk/server/services"
)

// Sender delivers an outgoing message to one client
type Sender interface {
	SendMessage(msg interface{}) error
}

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          Sender
	playerService *services.PlayerService
	worldService  *services.WorldService
	clientManager *ClientManager
	session       *services.Session
}

// NewClientHandler creates a handler for one client
func NewClientHandler(conn Sender, playerService *services.PlayerService, worldService *services.WorldService, clientManager *ClientManager) *ClientHandler {
	return &ClientHandler{
		conn:          conn,
		playerService: playerService,
		worldService:  worldService,
		clientManager: clientManager,
	}
}

// HandleClientConnection serves a client until its connection closes
func HandleClientConnection(wsConn *websocket.Conn, playerService *services.PlayerService, worldService *services.WorldService, clientManager *ClientManager) {
	log.Printf("New connection from %s", wsConn.RemoteAddr())

	conn := network.NewConnection(wsConn)
	handler := NewClientHandler(conn, playerService, worldService, clientManager)

	go conn.WritePump()
	conn.ReadPump(handler)

	handler.disconnect()
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(_ *network.Connection, message []byte) {
	h.handle(message)
}

func (h *ClientHandler) handle(message []byte) {
	var env messages.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		h.sendError("BAD_MESSAGE", "Message is not valid JSON")
		return
	}

	switch env.Type {
	case messages.MessageTypeLogin:
		h.handleLogin(env.Payload)
	case messages.MessageTypeStep:
		h.handleStep(env.Payload)
	case messages.MessageTypeTurn:
		h.handleTurn(env.Payload)
	case messages.MessageTypeWalkTo:
		h.handleWalkTo(env.Payload)
	default:
		log.Printf("Unknown message type: %s", env.Type)
		h.sendError("UNKNOWN_MESSAGE_TYPE", "Unknown message type received")
	}
}

// handleLogin handles login requests
func (h *ClientHandler) handleLogin(payload json.RawMessage) {
	var loginMsg messages.LoginMessage
	if err := json.Unmarshal(payload, &loginMsg); err != nil {
		log.Printf("Error unmarshaling login message: %v", err)
		h.sendError("BAD_MESSAGE", "Invalid login payload")
		return
	}
	username := strings.TrimSpace(loginMsg.Username)
	if username == "" {
		h.sendError("LOGIN_FAILED", "Username is required")
		return
	}
	if h.session != nil {
		h.sendError("LOGIN_FAILED", "Already logged in")
		return
	}

	session, err := h.playerService.GetOrCreatePlayer(username)
	if errors.Is(err, services.ErrPlayerConnected) {
		h.sendError("LOGIN_FAILED", "Player is already connected")
		return
	}
	if err != nil {
		log.Printf("Error getting/creating player: %v", err)
		h.sendError("LOGIN_FAILED", "Failed to log in")
		return
	}
	h.session = session
	h.clientManager.AddClient(session.AgentID, h)

	agent, err := h.worldService.Agent(session.AgentID)
	if err != nil {
		log.Printf("Error reading agent %s: %v", session.AgentID, err)
		return
	}
	loginSuccessMsg := messages.BaseMessage{
		Type: messages.MessageTypeLoginSuccess,
		Payload: messages.LoginSuccessMessage{
			PlayerID: session.Player.ID,
			AgentID:  session.AgentID,
			Position: agent.Pos,
			Message:  "Login successful",
		},
	}
	if err := h.conn.SendMessage(loginSuccessMsg); err != nil {
		log.Printf("Error sending login success: %v", err)
		return
	}
	h.sendWorldUpdate()
}

// handleStep queues a single step
func (h *ClientHandler) handleStep(payload json.RawMessage) {
	if !h.authenticated() {
		return
	}
	var stepMsg messages.StepMessage
	if err := json.Unmarshal(payload, &stepMsg); err != nil {
		h.sendError("BAD_MESSAGE", "Invalid step payload")
		return
	}
	dir, err := models.ParseDirection(stepMsg.Direction)
	if err != nil {
		h.sendError("STEP_FAILED", err.Error())
		return
	}
	if err := h.worldService.Step(h.session.AgentID, dir); err != nil {
		log.Printf("Error queueing step: %v", err)
		h.sendError("STEP_FAILED", err.Error())
	}
}

// handleTurn queues a facing change
func (h *ClientHandler) handleTurn(payload json.RawMessage) {
	if !h.authenticated() {
		return
	}
	var turnMsg messages.TurnMessage
	if err := json.Unmarshal(payload, &turnMsg); err != nil {
		h.sendError("BAD_MESSAGE", "Invalid turn payload")
		return
	}
	dir, err := models.ParseDirection(turnMsg.Direction)
	if err != nil {
		h.sendError("TURN_FAILED", err.Error())
		return
	}
	if err := h.worldService.Turn(h.session.AgentID, dir); err != nil {
		log.Printf("Error queueing turn: %v", err)
		h.sendError("TURN_FAILED", err.Error())
	}
}

// handleWalkTo queues navigation to a cell
func (h *ClientHandler) handleWalkTo(payload json.RawMessage) {
	if !h.authenticated() {
		return
	}
	var walkMsg messages.WalkToMessage
	if err := json.Unmarshal(payload, &walkMsg); err != nil {
		h.sendError("BAD_MESSAGE", "Invalid walk_to payload")
		return
	}
	movement, err := planner.ParseMovementType(walkMsg.Movement)
	if err != nil {
		h.sendError("WALK_FAILED", err.Error())
		return
	}
	goal := models.Position{X: walkMsg.X, Y: walkMsg.Y, Z: walkMsg.Z}
	if err := h.worldService.WalkTo(h.session.AgentID, goal, movement); err != nil {
		log.Printf("Error queueing walk: %v", err)
		h.sendError("WALK_FAILED", err.Error())
	}
}

func (h *ClientHandler) authenticated() bool {
	if h.session == nil {
		log.Println("Player not authenticated")
		h.sendError("NOT_AUTHENTICATED", "Log in first")
		return false
	}
	return true
}

// sendWorldUpdate sends the current world state to the player
func (h *ClientHandler) sendWorldUpdate() {
	if h.session == nil {
		return
	}
	update, err := h.worldService.GetWorldUpdateForAgent(h.session.AgentID)
	if err != nil {
		log.Printf("Error building world update: %v", err)
		return
	}
	msg := messages.BaseMessage{
		Type:    messages.MessageTypeUpdate,
		Payload: update,
	}
	if err := h.conn.SendMessage(msg); err != nil {
		log.Printf("Error sending world update: %v", err)
	}
}

// sendNavResult tells the player how a walk_to ended
func (h *ClientHandler) sendNavResult(r services.NavResult) {
	msg := messages.BaseMessage{
		Type: messages.MessageTypeNavResult,
		Payload: messages.NavResultMessage{
			Goal:    r.Goal,
			Outcome: r.Outcome.String(),
		},
	}
	if err := h.conn.SendMessage(msg); err != nil {
		log.Printf("Error sending nav result: %v", err)
	}
}

func (h *ClientHandler) sendError(code, message string) {
	errMsg := messages.BaseMessage{
		Type: messages.MessageTypeError,
		Payload: messages.ErrorMessage{
			Code:    code,
			Message: message,
		},
	}
	if err := h.conn.SendMessage(errMsg); err != nil {
		log.Printf("Error sending error message: %v", err)
	}
}

// disconnect releases the player's agent once the connection is gone
func (h *ClientHandler) disconnect() {
	if h.session == nil {
		return
	}
	h.clientManager.RemoveClient(h.session.AgentID, h)
	if err := h.playerService.Disconnect(h.session.Player.ID); err != nil {
		log.Printf("Error disconnecting player %s: %v", h.session.Player.Username, err)
		return
	}
	log.Printf("Player %s disconnected and removed from world", h.session.Player.Username)
	h.session = nil
}
