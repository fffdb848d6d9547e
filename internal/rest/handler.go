package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/api"
	"github.com/JovanneSousa/health-chat-sync/internal/chat"
	"github.com/JovanneSousa/health-chat-sync/internal/client/centrifugo"
	"github.com/JovanneSousa/health-chat-sync/internal/config"
	"github.com/JovanneSousa/health-chat-sync/internal/dashboard"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const (
	conversationIDParam  = "conversation_id"
	defaultPriorityLimit = 3
)

type Handler struct {
	sessions     Sessions
	dashboards   Dashboards
	metrics      MetricsService
	validator    Validator
	jwtGenerator JWTGenerator
}

func New(
	sessions Sessions,
	dashboards Dashboards,
	metrics MetricsService,
	validator Validator,
	jwtGenerator JWTGenerator,
) *Handler {
	return &Handler{
		sessions:     sessions,
		dashboards:   dashboards,
		metrics:      metrics,
		validator:    validator,
		jwtGenerator: jwtGenerator,
	}
}

func (h *Handler) Routes(router chi.Router) {
	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-in", h.SignIn)
		r.Post("/sign-up", h.SignUp)
		r.Post("/sign-out", h.SignOut)
		r.Get("/session", h.GetSession)
	})

	router.Route("/api/conversations", func(r chi.Router) {
		r.Get("/", h.ListConversations)
		r.Post("/", h.CreateConversation)
		r.Get("/priority", h.GetPriorityConversations)
		r.Post("/refresh", h.RefreshConversations)
		r.Post("/{conversation_id}/assign", h.AssignConversation)
		r.Patch("/{conversation_id}/status", h.SetConversationStatus)
	})

	router.Route("/api/chat", func(r chi.Router) {
		r.Get("/", h.GetChat)
		r.Delete("/", h.CloseChat)
		r.Get("/quick-replies", h.GetQuickReplies)
		r.Post("/messages", h.SendMessage)
		r.Post("/{conversation_id}", h.OpenChat)
	})

	router.Get("/api/metrics", h.GetMetrics)

	router.Route("/api/realtime", func(r chi.Router) {
		r.Get("/connect-token", h.GetConnectAccessToken)
		r.Get("/subscribe-token", h.GetSubscribeToken)
	})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SignIn")

	var req api.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to sign in: %v", err))
		h.writeFailure(w, "failed to sign in", err)
		return
	}

	h.writeJSON(w, sessionResponse(session), http.StatusOK)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SignUp")

	var req api.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.ValidateSignUp(&req); err != nil {
		logger.Error(fmt.Sprintf("sign up validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("sign up validation failed: %v", err), http.StatusBadRequest)
		return
	}

	session, err := h.sessions.SignUp(r.Context(), req.Email, req.Password, req.Name, model.Role(req.Role))
	if err != nil {
		logger.Error(fmt.Sprintf("failed to sign up: %v", err))
		h.writeFailure(w, "failed to sign up", err)
		return
	}

	h.writeJSON(w, sessionResponse(session), http.StatusCreated)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SignOut")

	token, ok := r.Context().Value(config.KeyToken).(string)
	if !ok {
		logger.Error("failed to get session token")
		h.writeError(w, "failed to get session token", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.SignOut(r.Context(), token); err != nil {
		logger.Error(fmt.Sprintf("failed to sign out: %v", err))
		h.writeFailure(w, "failed to sign out", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetSession")

	token, ok := r.Context().Value(config.KeyToken).(string)
	if !ok {
		logger.Error("failed to get session token")
		h.writeError(w, "failed to get session token", http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Current(r.Context(), token)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to get session: %v", err))
		h.writeFailure(w, "failed to get session", err)
		return
	}

	h.writeJSON(w, sessionResponse(session), http.StatusOK)
}

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("ListConversations")

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	update := d.Inbox().Snapshot()
	update.Conversations = d.Inbox().Filter(r.URL.Query().Get("filter"))

	h.writeJSON(w, update, http.StatusOK)
}

func (h *Handler) GetPriorityConversations(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetPriorityConversations")

	limit := defaultPriorityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			logger.Error(fmt.Sprintf("invalid limit %q", raw))
			h.writeError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	update := d.Inbox().Snapshot()
	update.Conversations = d.Inbox().Priority(limit)

	h.writeJSON(w, update, http.StatusOK)
}

func (h *Handler) RefreshConversations(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("RefreshConversations")

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	d.Inbox().Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("CreateConversation")

	var req api.CreateConversationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error(fmt.Sprintf("failed to decode request: %v", err))
			h.writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := h.validator.ValidateCreateConversation(&req); err != nil {
		logger.Error(fmt.Sprintf("conversation validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("conversation validation failed: %v", err), http.StatusBadRequest)
		return
	}

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	conv, err := d.StartConversation(r.Context(), req.Title)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to create conversation: %v", err))
		h.writeFailure(w, "failed to create conversation", err)
		return
	}

	h.writeJSON(w, conv, http.StatusCreated)
}

func (h *Handler) AssignConversation(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("AssignConversation")

	conversationID := chi.URLParam(r, conversationIDParam)

	var req api.AssignRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error(fmt.Sprintf("failed to decode request: %v", err))
			h.writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	attendantID := req.AttendantID
	if attendantID == "" {
		attendantID = d.Identity().ID
	}

	if err := d.Inbox().Assign(r.Context(), conversationID, attendantID); err != nil {
		logger.Error(fmt.Sprintf("failed to assign conversation %s: %v", conversationID, err))
		h.writeFailure(w, "failed to assign conversation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetConversationStatus(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SetConversationStatus")

	conversationID := chi.URLParam(r, conversationIDParam)

	var req api.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.ValidateSetStatus(&req); err != nil {
		logger.Error(fmt.Sprintf("status validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("status validation failed: %v", err), http.StatusBadRequest)
		return
	}

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	if err := d.Inbox().SetStatus(r.Context(), conversationID, model.ConversationStatus(req.Status)); err != nil {
		logger.Error(fmt.Sprintf("failed to update status of %s: %v", conversationID, err))
		h.writeFailure(w, "failed to update conversation status", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OpenChat(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("OpenChat")

	conversationID := chi.URLParam(r, conversationIDParam)

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	if err := d.OpenChat(r.Context(), conversationID); err != nil {
		logger.Error(fmt.Sprintf("failed to open conversation %s: %v", conversationID, err))
		h.writeFailure(w, "failed to open conversation", err)
		return
	}

	h.writeJSON(w, d.Chat().Snapshot(), http.StatusOK)
}

func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetChat")

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	h.writeJSON(w, d.Chat().Snapshot(), http.StatusOK)
}

func (h *Handler) CloseChat(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("CloseChat")

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	d.Chat().Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SendMessage")

	var req api.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.ValidateSendMessage(&req); err != nil {
		if errors.Is(err, model.ErrValidationSkip) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		logger.Error(fmt.Sprintf("message validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("message validation failed: %v", err), http.StatusBadRequest)
		return
	}

	d, ok := h.dashboard(w, r, logger)
	if !ok {
		return
	}

	message, err := d.Chat().Send(r.Context(), req.Content)
	if err != nil {
		if errors.Is(err, model.ErrValidationSkip) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		logger.Error(fmt.Sprintf("failed to send message: %v", err))
		h.writeFailure(w, "failed to send message", err)
		return
	}

	h.writeJSON(w, api.SendMessageResponse{Message: *message}, http.StatusOK)
}

func (h *Handler) GetQuickReplies(w http.ResponseWriter, r *http.Request) {
	replies := make([]string, len(chat.QuickReplies))
	copy(replies, chat.QuickReplies)

	h.writeJSON(w, api.QuickRepliesResponse{Replies: replies}, http.StatusOK)
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetMetrics")

	identity, ok := r.Context().Value(config.KeyIdentity).(model.Identity)
	if !ok {
		logger.Error("failed to get identity")
		h.writeError(w, "failed to get identity", http.StatusUnauthorized)
		return
	}

	overview, err := h.metrics.Overview(r.Context(), access.Resolve(identity))
	if err != nil {
		logger.Error(fmt.Sprintf("failed to get metrics: %v", err))
		h.writeFailure(w, "failed to get metrics", err)
		return
	}

	h.writeJSON(w, overview, http.StatusOK)
}

func (h *Handler) GetConnectAccessToken(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetConnectAccessToken")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.jwtGenerator.GenerateConnectToken(userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to generate access token: %v", err))
		h.writeError(w, fmt.Sprintf("failed to generate access token: %v", err), http.StatusInternalServerError)
		return
	}

	logger.Info(fmt.Sprintf("generated access token for user %s", userUUID))

	h.writeJSON(w, api.ConnectTokenResponse{Token: token, ExpiresAt: expiresAt}, http.StatusOK)
}

func (h *Handler) GetSubscribeToken(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetSubscribeToken")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	channel := r.URL.Query().Get("channel")
	if !centrifugo.OwnsChannel(userUUID, channel) {
		logger.Error(fmt.Sprintf("user %s may not subscribe to %q", userUUID, channel))
		h.writeError(w, "channel is not available to the user", http.StatusForbidden)
		return
	}

	token, expiresAt, err := h.jwtGenerator.GenerateSubscribeToken(userUUID, channel)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to generate subscribe token: %v", err))
		h.writeError(w, fmt.Sprintf("failed to generate subscribe token: %v", err), http.StatusInternalServerError)
		return
	}

	logger.Info(fmt.Sprintf("generated subscribe token for user %s, channel %s", userUUID, channel))

	h.writeJSON(w, api.SubscribeTokenResponse{Token: token, Channel: channel, ExpiresAt: expiresAt}, http.StatusOK)
}

// dashboard mounts the caller's dashboard. A failed first load is not an
// error here: the view reports it through its state.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request, logger logger_lib.LoggerInterface) (*dashboard.Dashboard, bool) {
	identity, ok := r.Context().Value(config.KeyIdentity).(model.Identity)
	if !ok {
		logger.Error("failed to get identity")
		h.writeError(w, "failed to get identity", http.StatusUnauthorized)
		return nil, false
	}

	d, err := h.dashboards.Mount(r.Context(), identity)
	if d == nil {
		logger.Error(fmt.Sprintf("failed to mount dashboard: %v", err))
		h.writeFailure(w, "failed to mount dashboard", err)
		return nil, false
	}
	if err != nil {
		logger.Warn(fmt.Sprintf("first load of dashboard failed: %v", err))
	}

	return d, true
}

func sessionResponse(session *model.Session) api.SessionResponse {
	return api.SessionResponse{
		User:      session.Identity,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrAlreadyAssigned), errors.Is(err, model.ErrEmailTaken), errors.Is(err, chat.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrValidationSkip):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTransientIO):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeFailure(w http.ResponseWriter, message string, err error) {
	h.writeError(w, fmt.Sprintf("%s: %v", message, err), statusFor(err))
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.Error{Error: message})
}
