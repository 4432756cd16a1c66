package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"tactical-trivia/internal/app"
	"tactical-trivia/internal/domain"
)

const leaderboardLimit = 50

type WSHandler struct {
	registry *app.Registry
	engine   *app.Engine
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *app.Registry, engine *app.Engine, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		registry: registry,
		engine:   engine,
		logger:   logger,
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

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type startPayload struct {
	Mode domain.Mode `json:"mode"`
	Tier domain.Tier `json:"tier"`
}

type resumePayload struct {
	SessionID string `json:"sessionId"`
}

type answerPayload struct {
	Correct bool `json:"correct"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	View    domain.View `json:"view"`
	Payload any         `json:"payload,omitempty"`
}

type userPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type questionPayload struct {
	SessionID string      `json:"sessionId"`
	Mode      domain.Mode `json:"mode"`
	Index     int         `json:"index"`
	Total     int         `json:"total"`
	Progress  int         `json:"progress"`
	Prompt    string      `json:"prompt"`
	Answer    string      `json:"answer"`
	Tier      domain.Tier `json:"tier,omitempty"`
	Points    int         `json:"points"`
}

type profilePayload struct {
	Username string             `json:"username"`
	Total    int                `json:"total"`
	Accuracy int                `json:"accuracy"`
	Record   domain.ScoreRecord `json:"record"`
}

type leaderboardPayload struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// conn is the per-connection view state: who is signed in and which run is open.
type conn struct {
	user    *domain.User
	session *app.Session
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}
	defer ws.Close()

	ctx := r.Context()
	state := &conn{}
	if err := ws.WriteJSON(outboundMessage{Type: "welcome", View: domain.ViewLanding, Payload: domain.Tiers()}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := ws.ReadJSON(&inbound); err != nil {
			break
		}
		out := h.dispatch(ctx, state, inbound)
		if err := ws.WriteJSON(out); err != nil {
			h.logger.Warn("ws write error", slog.Any("error", err))
			break
		}
	}
}

func (h *WSHandler) dispatch(ctx context.Context, state *conn, inbound inboundMessage) outboundMessage {
	switch inbound.Type {
	case "register":
		var payload registerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(domain.ViewAuth, "invalid register payload")
		}
		user, err := h.registry.Register(ctx, domain.User{
			Username: payload.Username,
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			return h.failure(ctx, domain.ViewAuth, err)
		}
		h.signIn(ctx, state, user)
		return outboundMessage{Type: "registered", View: domain.ViewProfile, Payload: userPayload{Username: user.Username, Email: user.Email}}

	case "login":
		var payload registerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(domain.ViewAuth, "invalid login payload")
		}
		user, err := h.registry.Login(ctx, payload.Username, payload.Password)
		if err != nil {
			return h.failure(ctx, domain.ViewAuth, err)
		}
		h.signIn(ctx, state, user)
		return outboundMessage{Type: "loggedIn", View: domain.ViewProfile, Payload: userPayload{Username: user.Username, Email: user.Email}}

	case "tiers":
		return outboundMessage{Type: "tiers", View: domain.ViewLanding, Payload: domain.Tiers()}

	case "start":
		if state.user == nil {
			return errorMessage(domain.ViewAuth, domain.ErrUserNotFound.Error())
		}
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(domain.ViewLanding, "invalid start payload")
		}
		if state.session != nil {
			h.engine.Abandon(ctx, state.session.ID)
			state.session = nil
		}
		session, err := h.engine.Start(ctx, state.user.Username, payload.Mode, payload.Tier)
		if err != nil {
			return h.failure(ctx, domain.ViewLanding, err)
		}
		if session.State == app.StateComplete {
			view := domain.ViewResults
			if session.Mode == domain.ModeCallouts {
				view = domain.ViewCallouts
			}
			return outboundMessage{Type: "results", View: view, Payload: domain.Completion{}}
		}
		state.session = &session
		return questionMessage(session)

	case "resume":
		if state.user == nil {
			return errorMessage(domain.ViewAuth, domain.ErrUserNotFound.Error())
		}
		var payload resumePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(domain.ViewLanding, "invalid resume payload")
		}
		session, err := h.engine.Resume(ctx, payload.SessionID)
		if err == nil && session.Username != state.user.Username {
			err = domain.ErrSessionNotFound
		}
		if err != nil {
			return h.failure(ctx, domain.ViewLanding, err)
		}
		state.session = &session
		return questionMessage(session)

	case "answer":
		if state.user == nil {
			return errorMessage(domain.ViewAuth, domain.ErrUserNotFound.Error())
		}
		if state.session == nil || state.session.Username != state.user.Username {
			return errorMessage(domain.ViewLanding, domain.ErrSessionNotFound.Error())
		}
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(domain.ViewQuiz, "invalid answer payload")
		}
		session, completion, err := h.engine.Answer(ctx, *state.session, payload.Correct)
		if err != nil {
			return h.failure(ctx, domain.ViewQuiz, err)
		}
		if completion != nil {
			state.session = nil
			return outboundMessage{Type: "results", View: domain.ViewResults, Payload: completion}
		}
		state.session = &session
		return questionMessage(session)

	case "profile":
		if state.user == nil {
			return errorMessage(domain.ViewAuth, domain.ErrUserNotFound.Error())
		}
		rec, ok, err := h.engine.Profile(ctx, state.user.Username)
		if err != nil {
			return h.failure(ctx, domain.ViewProfile, err)
		}
		if !ok {
			return errorMessage(domain.ViewAuth, domain.ErrUserNotFound.Error())
		}
		return outboundMessage{Type: "profile", View: domain.ViewProfile, Payload: profilePayload{
			Username: state.user.Username,
			Total:    rec.Total,
			Accuracy: rec.Accuracy(),
			Record:   rec,
		}}

	case "leaderboard":
		entries, err := h.engine.Leaderboard(ctx, leaderboardLimit)
		if err != nil {
			return h.failure(ctx, domain.ViewLeaderboard, err)
		}
		return outboundMessage{Type: "leaderboard", View: domain.ViewLeaderboard, Payload: leaderboardPayload{Entries: entries}}

	default:
		return errorMessage(domain.ViewLanding, "unsupported message type")
	}
}

// signIn switches the connection to user; a run opened by someone else is abandoned.
func (h *WSHandler) signIn(ctx context.Context, state *conn, user domain.User) {
	if state.session != nil && state.session.Username != user.Username {
		h.engine.Abandon(ctx, state.session.ID)
		state.session = nil
	}
	state.user = &user
}

// failure turns a use-case error into an error envelope; unexpected errors are logged.
func (h *WSHandler) failure(ctx context.Context, view domain.View, err error) outboundMessage {
	switch {
	case errors.Is(err, domain.ErrIncompleteForm),
		errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionComplete):
		return errorMessage(view, err.Error())
	case errors.Is(err, domain.ErrBankUnavailable):
		h.logger.ErrorContext(ctx, "question bank unavailable", slog.Any("error", err))
		return errorMessage(view, domain.ErrBankUnavailable.Error())
	default:
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		return errorMessage(view, err.Error())
	}
}

func errorMessage(view domain.View, msg string) outboundMessage {
	return outboundMessage{Type: "error", View: view, Payload: errorPayload{Message: msg}}
}

func questionMessage(session app.Session) outboundMessage {
	q, _ := session.Current()
	return outboundMessage{Type: "question", View: domain.ViewQuiz, Payload: questionPayload{
		SessionID: session.ID,
		Mode:      session.Mode,
		Index:     session.Index,
		Total:     len(session.Questions),
		Progress:  session.Progress(),
		Prompt:    q.Prompt,
		Answer:    q.Answer,
		Tier:      q.Tier,
		Points:    q.Points,
	}}
}
