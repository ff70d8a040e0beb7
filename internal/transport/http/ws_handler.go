package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"category-quiz-service/internal/app"
	"category-quiz-service/internal/auth"
	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/quiz"
	"github.com/gorilla/websocket"
)

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

type WSHandler struct {
	service  *app.QuizService
	auth     Authenticator
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, authenticator Authenticator) *WSHandler {
	return &WSHandler{
		service: service,
		auth:    authenticator,
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

type selectCategoryPayload struct {
	Category string `json:"category"`
}

type answerPayload struct {
	Label string `json:"label"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades an authenticated request and drives the user's quiz session over the socket.
// Every engine transition, including timer-driven reveals, is pushed as a "state" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal, err := h.auth.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	userID := principal.UserID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	// sessions outlive the server's request timeouts
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	updates, cancel := h.service.Subscribe(r.Context(), userID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				conn.Close()
				return
			}
		}
	}()

	// enqueue gives up once the writer is gone so the read loop never blocks on a full buffer.
	enqueue := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		case <-closeSignals:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					// the session was torn down (sign-out); end the connection
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
						time.Now().Add(time.Second))
					conn.Close()
					return
				}
				if !enqueue(outboundMessage[any]{Type: "state", Payload: quiz.Render(snap)}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	sendError := func(msg string) {
		enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "selectCategory":
			var payload selectCategoryPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError("invalid selectCategory payload")
				continue
			}
			category, err := domain.ParseCategory(payload.Category)
			if err != nil {
				sendError(err.Error())
				continue
			}
			if _, err := h.service.Start(r.Context(), userID, category); err != nil {
				sendError(err.Error())
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError("invalid answer payload")
				continue
			}
			outcome, _, err := h.service.Answer(r.Context(), userID, payload.Label)
			if err != nil {
				sendError(err.Error())
				continue
			}
			enqueue(outboundMessage[any]{Type: "answerResult", Payload: outcome})
		case "restart":
			if _, err := h.service.Restart(r.Context(), userID); err != nil {
				sendError(err.Error())
			}
		default:
			sendError("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
