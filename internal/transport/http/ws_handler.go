package http

import (
	"context"
	"encoding/json"
	"net/http"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	hub      *app.LeaderboardHub
	resolver IdentityResolver
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(service *app.QuizService, hub *app.LeaderboardHub, resolver IdentityResolver, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service:  service,
		hub:      hub,
		resolver: resolver,
		log:      log,
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

type answerPayload struct {
	Answer *int `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeLeaderboard streams leaderboard snapshots until the client goes away.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel, err := h.hub.Subscribe(r.Context())
	if err != nil {
		h.log.Error("leaderboard subscribe failed", zap.Error(err))
		_ = conn.WriteJSON(errorMessage("leaderboard unavailable"))
		return
	}
	defer cancel()

	// The client never sends anything useful; reading detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entries, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[[]domain.LeaderboardEntry]{Type: "leaderboard", Payload: entries}); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		case <-gone:
			return
		}
	}
}

// ServeQuiz runs the quiz over a websocket: the client sends start and answer
// messages and receives questions, results and leaderboard pushes.
func (h *WSHandler) ServeQuiz(w http.ResponseWriter, r *http.Request) {
	player, err := h.resolver.Resolve(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel, err := h.hub.Subscribe(r.Context())
	if err != nil {
		h.log.Error("leaderboard subscribe failed", zap.Error(err))
		_ = conn.WriteJSON(errorMessage("leaderboard unavailable"))
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !h.dispatch(r.Context(), player, inbound, send, writerDone) {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch handles one inbound message; it returns false once the writer has stopped.
func (h *WSHandler) dispatch(ctx context.Context, player domain.Player, in inboundMessage, send chan<- outboundMessage[any], writerDone <-chan struct{}) bool {
	reply := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	switch in.Type {
	case "start":
		var payload startRequest
		if len(in.Payload) > 0 {
			if err := json.Unmarshal(in.Payload, &payload); err != nil {
				return reply(errorMessage("invalid start payload"))
			}
		}
		started, err := h.service.Start(ctx, player, payload.Level)
		if err != nil {
			return reply(h.failure(err))
		}
		return reply(outboundMessage[any]{Type: "question", Payload: newStartResponse(started)})
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil || payload.Answer == nil {
			return reply(errorMessage("invalid answer payload"))
		}
		out, err := h.service.SubmitAnswer(ctx, player.ID, *payload.Answer)
		if err != nil {
			return reply(h.failure(err))
		}
		typ := "answerResult"
		if out.Finished {
			typ = "result"
		}
		return reply(outboundMessage[any]{Type: typ, Payload: newAnswerResponse(out)})
	case "current":
		cur, err := h.service.Current(ctx, player.ID)
		if err != nil {
			return reply(h.failure(err))
		}
		return reply(outboundMessage[any]{Type: "progress", Payload: cur})
	default:
		return reply(errorMessage("unsupported message type"))
	}
}

func (h *WSHandler) failure(err error) outboundMessage[any] {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("ws request failed", zap.Error(err))
	}
	return errorMessage(msg)
}
