package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-battle/internal/app"
	"quiz-battle/internal/domain"
)

// WSHandler is the presentation surface: it forwards player intents into the
// match service and streams state snapshots back for declarative rendering.
type WSHandler struct {
	service  *app.MatchService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.MatchService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Difficulty string `json:"difficulty"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type boosterPayload struct {
	Tier string `json:"tier"`
}

type rankingPayload struct {
	Limit int `json:"limit"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and runs the intent/snapshot loop for one
// player.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	displayName := r.URL.Query().Get("name")
	if playerID == "" || displayName == "" {
		http.Error(w, "missing playerId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	player := domain.Player{ID: playerID, DisplayName: displayName}
	if err := h.service.Connect(r.Context(), player); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var unsubscribe func()
	var pumpDone chan struct{}

	// subscribe replaces the snapshot stream with the freshly started
	// match's. The pump forwards snapshots until the match closes or the
	// connection goes away.
	subscribe := func() {
		if unsubscribe != nil {
			unsubscribe()
			<-pumpDone
		}
		updates, cancel, err := h.service.Subscribe(playerID)
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			return
		}
		unsubscribe = cancel
		pumpDone = make(chan struct{})
		go func(updates <-chan domain.Snapshot, pumpDone chan struct{}) {
			defer close(pumpDone)
			for {
				select {
				case snap, ok := <-updates:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage[any]{Type: "state", Payload: snap}:
					case <-done:
						return
					}
				case <-done:
					return
				}
			}
		}(updates, pumpDone)
	}

	send <- outboundMessage[any]{Type: "connected", Payload: player}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start", "restart":
			var payload startPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid start payload"}}
					continue
				}
			}
			_, err := h.service.StartMatch(r.Context(), playerID, domain.Difficulty(payload.Difficulty))
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			subscribe()
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			if err := h.service.SubmitAnswer(playerID, payload.Index); err != nil && !recoverable(err) {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "booster":
			var payload boosterPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid booster payload"}}
				continue
			}
			if err := h.service.UseBooster(r.Context(), playerID, domain.BoosterTier(payload.Tier)); err != nil && !recoverable(err) {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "quit":
			h.service.QuitMatch(playerID)
			unsubscribe = nil
		case "ranking":
			var payload rankingPayload
			if len(inbound.Payload) > 0 {
				_ = json.Unmarshal(inbound.Payload, &payload)
			}
			if payload.Limit <= 0 {
				payload.Limit = 50
			}
			entries, err := h.service.Ranking(r.Context(), payload.Limit)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "ranking", Payload: entries}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(done)
	if unsubscribe != nil {
		unsubscribe()
	}
	if pumpDone != nil {
		<-pumpDone
	}
	close(send)
	<-writerDone
}

// recoverable errors are no-ops by design: the surface shows them as a
// disabled affordance, not an error event.
func recoverable(err error) bool {
	return errors.Is(err, domain.ErrAnswerAlreadySubmitted) ||
		errors.Is(err, domain.ErrBoosterAlreadyUsed) ||
		errors.Is(err, domain.ErrInsufficientBalance)
}
