package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rifat0153/cleannotes/internal/editor"
	"github.com/rifat0153/cleannotes/internal/notes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	subjectContextKey    = "cleannotes_subject"
	accessTokenQueryKey  = "access_token"
	sessionEventStreamID = "session"
)

var (
	errMissingTokenValidator = errors.New("token validator dependency required")
	errMissingUseCases       = errors.New("note use cases dependency required")
	errInvalidAuthorization  = errors.New("authorization header missing or invalid")
)

// TokenValidator resolves a bearer token to its subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP surface. Realtime should be the dispatcher that observes
// the repository behind UseCases; Sessions defaults to a registry over UseCases.
type Dependencies struct {
	TokenValidator TokenValidator
	UseCases       notes.UseCases
	Sessions       *SessionRegistry
	Realtime       *RealtimeDispatcher
	Logger         *zap.Logger
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenValidator == nil {
		return nil, errMissingTokenValidator
	}
	if !deps.UseCases.Configured() {
		return nil, errMissingUseCases
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		registry, err := NewSessionRegistry(SessionRegistryConfig{UseCases: deps.UseCases, Logger: logger})
		if err != nil {
			return nil, err
		}
		sessions = registry
	}
	realtime := deps.Realtime
	if realtime == nil {
		realtime = NewRealtimeDispatcher()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(corsMiddleware())

	handler := &httpHandler{
		tokens:   deps.TokenValidator,
		useCases: deps.UseCases,
		sessions: sessions,
		realtime: realtime,
		logger:   logger,
	}

	router.GET("/healthz", handler.handleHealth)

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.Use(rateLimitMiddleware(deps.RateLimitRPS, deps.RateLimitBurst))

	protected.GET("/notes", handler.handleListNotes)
	protected.GET("/notes/stream", handler.handleNotesStream)
	protected.GET("/notes/:id", handler.handleGetNote)
	protected.DELETE("/notes/:id", handler.handleDeleteNote)

	protected.POST("/sessions", handler.handleOpenSession)
	protected.GET("/sessions/:id", handler.handleGetSession)
	protected.POST("/sessions/:id/events", handler.handleSessionEvent)
	protected.GET("/sessions/:id/events", handler.handleSessionStream)
	protected.DELETE("/sessions/:id", handler.handleCloseSession)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type", "Last-Event-ID"},
		MaxAge:          12 * time.Hour,
	})
}

func rateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		)
	}
}

type httpHandler struct {
	tokens   TokenValidator
	useCases notes.UseCases
	sessions *SessionRegistry
	realtime *RealtimeDispatcher
	logger   *zap.Logger
}

type notePayload struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Color     string `json:"color"`
	ColorName string `json:"color_name"`
}

func newNotePayload(note notes.Note) notePayload {
	return notePayload{
		ID:        note.ID.Int64(),
		Title:     note.Title,
		Content:   note.Content,
		Timestamp: note.Timestamp,
		Color:     formatColor(note.Color),
		ColorName: note.Color.Name(),
	}
}

type notesResponsePayload struct {
	Notes []notePayload `json:"notes"`
}

type textFieldPayload struct {
	Text        string `json:"text"`
	Hint        string `json:"hint"`
	HintVisible bool   `json:"hint_visible"`
}

type sessionStatePayload struct {
	Title     textFieldPayload `json:"title"`
	Content   textFieldPayload `json:"content"`
	Color     string           `json:"color"`
	ColorName string           `json:"color_name"`
	NoteID    int64            `json:"note_id"`
}

type sessionResponsePayload struct {
	SessionID string              `json:"session_id"`
	Hydrated  bool                `json:"hydrated"`
	State     sessionStatePayload `json:"state"`
}

func newSessionResponsePayload(sessionID string, session *editor.Session) sessionResponsePayload {
	state := session.State()
	hydrated := false
	select {
	case <-session.Hydrated():
		hydrated = true
	default:
	}
	return sessionResponsePayload{
		SessionID: sessionID,
		Hydrated:  hydrated,
		State: sessionStatePayload{
			Title:     textFieldPayload(state.Title),
			Content:   textFieldPayload(state.Content),
			Color:     formatColor(state.Color),
			ColorName: state.Color.Name(),
			NoteID:    state.NoteID.Int64(),
		},
	}
}

type openSessionRequestPayload struct {
	NoteID *int64 `json:"note_id"`
}

type sessionEventRequestPayload struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Focused bool   `json:"focused"`
	Color   string `json:"color"`
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	order, err := notes.ParseNoteOrder(c.Query("order"), c.Query("direction"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_order"})
		return
	}

	response := notesResponsePayload{Notes: []notePayload{}}
	for note, err := range h.useCases.GetNotes.Execute(c.Request.Context(), order) {
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Notes = append(response.Notes, newNotePayload(note))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	note, ok := h.loadNote(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newNotePayload(note))
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	note, ok := h.loadNote(c)
	if !ok {
		return
	}
	if err := h.useCases.DeleteNote.Execute(c.Request.Context(), note); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) loadNote(c *gin.Context) (notes.Note, bool) {
	id, err := parseNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_note_id"})
		return notes.Note{}, false
	}
	note, found, err := h.useCases.GetNote.Execute(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return notes.Note{}, false
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "note_not_found"})
		return notes.Note{}, false
	}
	return note, true
}

func (h *httpHandler) handleNotesStream(c *gin.Context) {
	ctx := c.Request.Context()
	stream, cleanup := h.realtime.Subscribe(ctx)
	defer cleanup()

	heartbeat := time.NewTicker(realtimeHeartbeatInterval)
	defer heartbeat.Stop()

	openEventStream(c)
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case message, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(message.EventType, message)
			return true
		case <-heartbeat.C:
			c.SSEvent(realtimeEventHeartbeat, gin.H{"timestamp": time.Now().UTC()})
			return true
		}
	})
}

// openEventStream commits SSE headers so clients see the stream before the first event.
func openEventStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()
}

func (h *httpHandler) handleOpenSession(c *gin.Context) {
	var request openSessionRequestPayload
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
	}

	noteID := notes.NoNoteID
	if request.NoteID != nil && *request.NoteID != notes.NoNoteID.Int64() {
		parsed, err := notes.NewNoteID(*request.NoteID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_note_id"})
			return
		}
		noteID = parsed
	}

	sessionID, session, err := h.sessions.Open(noteID)
	if err != nil {
		h.logger.Error("failed to open edit session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_open_failed"})
		return
	}
	h.logger.Info("edit session opened", zap.String("session_id", sessionID), zap.Int64("note_id", noteID.Int64()))
	c.JSON(http.StatusCreated, newSessionResponsePayload(sessionID, session))
}

func (h *httpHandler) handleGetSession(c *gin.Context) {
	sessionID, session, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponsePayload(sessionID, session))
}

func (h *httpHandler) handleSessionEvent(c *gin.Context) {
	sessionID, session, ok := h.loadSession(c)
	if !ok {
		return
	}
	var request sessionEventRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	event, err := editor.ParseEvent(request.Type, editor.EventPayload{
		Value:   request.Value,
		Focused: request.Focused,
		Color:   request.Color,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_event", "detail": err.Error()})
		return
	}
	session.Dispatch(event)
	c.JSON(http.StatusAccepted, newSessionResponsePayload(sessionID, session))
}

func (h *httpHandler) handleSessionStream(c *gin.Context) {
	_, session, ok := h.loadSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	stream, cleanup := session.Events(ctx)
	defer cleanup()

	openEventStream(c)
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), gin.H{
				"stream":  sessionEventStreamID,
				"kind":    event.Kind,
				"message": event.Message,
				"note_id": event.NoteID.Int64(),
			})
			return true
		}
	})
}

func (h *httpHandler) handleCloseSession(c *gin.Context) {
	sessionID := c.Param("id")
	if !h.sessions.Close(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) loadSession(c *gin.Context) (string, *editor.Session, bool) {
	sessionID := c.Param("id")
	session, ok := h.sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return "", nil, false
	}
	return sessionID, session, true
}

func (h *httpHandler) writeServiceError(c *gin.Context, err error) {
	var invalid *notes.InvalidNoteError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_note", "detail": invalid.Reason})
		return
	}
	var serviceErr *notes.ServiceError
	if errors.As(err, &serviceErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_failed", "code": serviceErr.Code()})
		return
	}
	h.logger.Error("unexpected use case failure", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_failed"})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(subjectContextKey, subject)
	c.Next()
}

// bearerToken reads the Authorization header, falling back to the access_token query
// parameter for EventSource clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Query(accessTokenQueryKey))
}

func parseNoteID(raw string) (notes.NoteID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return notes.NewNoteID(value)
}

func formatColor(color notes.Color) string {
	return "0x" + strings.ToUpper(strconv.FormatUint(uint64(color), 16))
}
