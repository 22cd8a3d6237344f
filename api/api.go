package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lumina/seqruntime"
	"lumina/typedef"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The bridge binds to loopback; the owning application is local.
		return true
	},
}

// Global API instance
var apiInstance *API

// MessageHandler processes one incoming message for one client.
type MessageHandler func(client *WSClient, message WSMessage) error

// API is the websocket hub: it owns the client set and fans out store and
// playback updates.
type API struct {
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	handlers   map[MessageType]MessageHandler
}

// WSClient is one connected peer.
type WSClient struct {
	conn *websocket.Conn
	send chan WSMessage
	api  *API
	id   string
}

// StartWebSocketServer starts the bridge on addr. Blocks; run in a
// goroutine.
func StartWebSocketServer(addr string) {
	apiInstance = NewAPI()
	go apiInstance.run()

	http.HandleFunc("/ws", handleWebSocket)

	log.Printf("[API] WebSocket server starting on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Printf("[API] WebSocket server stopped: %v", err)
	}
}

// NewAPI creates a new hub and subscribes it to the store.
func NewAPI() *API {
	api := &API{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		handlers:   make(map[MessageType]MessageHandler),
	}
	api.registerHandlers()

	seqruntime.SetStateChangeCallback(func() {
		api.enqueue(WSMessage{
			Type:      MessageTypeStateData,
			Data:      currentStateData(),
			Timestamp: time.Now(),
		})
	})
	seqruntime.SetPlaybackCallback(func(pb typedef.PlaybackInfo) {
		api.enqueue(WSMessage{
			Type:      MessageTypePlayback,
			Data:      pb,
			Timestamp: time.Now(),
		})
	})

	return api
}

// enqueue drops the message when the broadcast queue is full rather than
// stalling the store's callback path.
func (api *API) enqueue(msg WSMessage) {
	select {
	case api.broadcast <- msg:
	default:
	}
}

func currentStateData() StateData {
	return StateData{
		Show:          seqruntime.GetShow(),
		SequenceIndex: seqruntime.GetPlayback().SequenceIndex,
	}
}

// run is the hub loop.
func (api *API) run() {
	for {
		select {
		case client := <-api.register:
			api.clients[client] = true
			ack := WSMessage{
				Type:      MessageTypeAck,
				Data:      "Connected to sequence store",
				Timestamp: time.Now(),
			}
			select {
			case client.send <- ack:
			default:
				close(client.send)
				delete(api.clients, client)
			}
			log.Printf("[API] Client %s connected", client.id)

		case client := <-api.unregister:
			if _, ok := api.clients[client]; ok {
				delete(api.clients, client)
				close(client.send)
				log.Printf("[API] Client %s disconnected", client.id)
			}

		case message := <-api.broadcast:
			for client := range api.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(api.clients, client)
				}
			}
		}
	}
}

// handleWebSocket upgrades a connection and starts its pumps.
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[API] WebSocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn: conn,
		send: make(chan WSMessage, 256),
		api:  apiInstance,
		id:   uuid.NewString(),
	}

	client.api.register <- client

	go client.writePump()
	go client.readPump()
}

// writePump pumps messages from the hub to the websocket connection.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("[API] Error writing to client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			// Keepalive ping.
			if err := c.conn.WriteJSON(WSMessage{Type: "ping", Timestamp: time.Now()}); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the websocket connection into handlers.
// Handler errors go back to the client as error messages; they never take
// the server down.
func (c *WSClient) readPump() {
	defer func() {
		c.api.unregister <- c
		c.conn.Close()
	}()

	for {
		var message WSMessage
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[API] WebSocket error: %v", err)
			}
			break
		}
		if message.Timestamp.IsZero() {
			message.Timestamp = time.Now()
		}

		if err := c.handleMessage(message); err != nil {
			errorMsg := WSMessage{
				Type:      MessageTypeError,
				RequestID: message.RequestID,
				Error:     err.Error(),
				Timestamp: time.Now(),
			}
			select {
			case c.send <- errorMsg:
			default:
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(message WSMessage) error {
	handler, exists := c.api.handlers[message.Type]
	if !exists {
		return fmt.Errorf("unknown message type: %s", message.Type)
	}
	return handler(c, message)
}

// reply sends a response correlated to the request; drops when the client's
// queue is full.
func (c *WSClient) reply(requestID string, msgType MessageType, data interface{}) {
	select {
	case c.send <- WSMessage{
		Type:      msgType,
		RequestID: requestID,
		Data:      data,
		Timestamp: time.Now(),
	}:
	default:
	}
}

// parseMessageData re-marshals the loosely typed payload into the handler's
// concrete struct.
func (api *API) parseMessageData(data interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}
	return nil
}

func (api *API) registerHandlers() {
	api.handlers[MessageTypeUpdateEffectTimeRange] = api.handleUpdateEffectTimeRange
	api.handlers[MessageTypeMoveEffect] = api.handleMoveEffect
	api.handlers[MessageTypeAddEffect] = api.handleAddEffect
	api.handlers[MessageTypeDeleteEffects] = api.handleDeleteEffects
	api.handlers[MessageTypeSeek] = api.handleSeek
	api.handlers[MessageTypePlay] = api.handlePlay
	api.handlers[MessageTypePause] = api.handlePause
	api.handlers[MessageTypeSetRegion] = api.handleSetRegion
	api.handlers[MessageTypeSetLooping] = api.handleSetLooping
	api.handlers[MessageTypeGetState] = api.handleGetState
	api.handlers[MessageTypeGetPlayback] = api.handleGetPlayback
	api.handlers[MessageTypeSaveShow] = api.handleSaveShow
	api.handlers[MessageTypeLoadShow] = api.handleLoadShow
}

// Message handlers

func (api *API) handleUpdateEffectTimeRange(client *WSClient, message WSMessage) error {
	var data UpdateEffectTimeRangeData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	if err := seqruntime.UpdateEffectTimeRange(data.SequenceIndex, data.TrackIndex, data.EffectIndex, data.Start, data.End); err != nil {
		return err
	}
	client.reply(message.RequestID, MessageTypeAck, "effect time range updated")
	return nil
}

func (api *API) handleMoveEffect(client *WSClient, message WSMessage) error {
	var data MoveEffectData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	track, idx, err := seqruntime.MoveEffect(data.SequenceIndex, data.TrackIndex, data.EffectIndex, data.TargetFixture, data.Start, data.End)
	if err != nil {
		return err
	}
	client.reply(message.RequestID, MessageTypeAck, MoveEffectResult{TrackIndex: track, EffectIndex: idx})
	return nil
}

func (api *API) handleAddEffect(client *WSClient, message WSMessage) error {
	var data AddEffectData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	kind, err := effectKindFromString(data.Kind)
	if err != nil {
		return err
	}
	idx, err := seqruntime.AddEffect(data.SequenceIndex, data.TrackIndex, kind, data.Start, data.End)
	if err != nil {
		return err
	}
	client.reply(message.RequestID, MessageTypeAck, MoveEffectResult{TrackIndex: data.TrackIndex, EffectIndex: idx})
	return nil
}

func (api *API) handleDeleteEffects(client *WSClient, message WSMessage) error {
	var data DeleteEffectsData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	if err := seqruntime.DeleteEffects(data.SequenceIndex, data.Targets); err != nil {
		return err
	}
	client.reply(message.RequestID, MessageTypeAck, "effects deleted")
	return nil
}

func (api *API) handleSeek(client *WSClient, message WSMessage) error {
	var data SeekData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	seqruntime.Seek(data.Time)
	return nil
}

func (api *API) handlePlay(client *WSClient, message WSMessage) error {
	seqruntime.Play()
	return nil
}

func (api *API) handlePause(client *WSClient, message WSMessage) error {
	seqruntime.Pause()
	return nil
}

func (api *API) handleSetRegion(client *WSClient, message WSMessage) error {
	var data SetRegionData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	seqruntime.SetRegion(data.Region)
	return nil
}

func (api *API) handleSetLooping(client *WSClient, message WSMessage) error {
	var data SetLoopingData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	seqruntime.SetLooping(data.Looping)
	return nil
}

func (api *API) handleGetState(client *WSClient, message WSMessage) error {
	client.reply(message.RequestID, MessageTypeStateData, currentStateData())
	return nil
}

func (api *API) handleGetPlayback(client *WSClient, message WSMessage) error {
	client.reply(message.RequestID, MessageTypePlayback, seqruntime.GetPlayback())
	return nil
}

func (api *API) handleSaveShow(client *WSClient, message WSMessage) error {
	if err := seqruntime.SaveShow(); err != nil {
		return err
	}
	client.reply(message.RequestID, MessageTypeAck, "show saved")
	return nil
}

func (api *API) handleLoadShow(client *WSClient, message WSMessage) error {
	var data LoadShowData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	if err := seqruntime.LoadShow(data.Path); err != nil {
		return err
	}
	client.reply(message.RequestID, MessageTypeAck, "show loaded")
	return nil
}

// effectKindFromString resolves a wire kind name against the builtin kinds.
func effectKindFromString(name string) (typedef.EffectKind, error) {
	for _, k := range typedef.AllEffectKinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown effect kind: %q", name)
}
