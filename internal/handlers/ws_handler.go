package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/digitalkookiehub/hireez/internal/conductor"
	"github.com/digitalkookiehub/hireez/internal/managers"
	"github.com/digitalkookiehub/hireez/internal/metrics"
	"github.com/digitalkookiehub/hireez/internal/models"
	"github.com/digitalkookiehub/hireez/internal/speech"
	"github.com/digitalkookiehub/hireez/internal/utils"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsFrame is an inbound client frame on the interview socket.
type wsFrame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// wsEvent is an outbound server frame.
type wsEvent struct {
	Type             string       `json:"type"`
	Code             string       `json:"code,omitempty"`
	Message          string       `json:"message,omitempty"`
	InterviewID      uint         `json:"interview_id,omitempty"`
	Status           string       `json:"status,omitempty"`
	QuestionNumber   int          `json:"question_number,omitempty"`
	TotalQuestions   int          `json:"total_questions,omitempty"`
	QuestionsAsked   int          `json:"questions_asked,omitempty"`
	TimeRemainingMin int          `json:"time_remaining_min,omitempty"`
	DurationLimitMin int          `json:"duration_limit_min,omitempty"`
	History          []llmMessage `json:"conversation_history,omitempty"`
	QuestionIndex    *int         `json:"current_question_index,omitempty"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type WSHandler struct {
	conductor   *conductor.Conductor
	connections *managers.ConnectionManager
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	jwtSecret   string
	logger      *zap.Logger
}

func NewWSHandler(c *conductor.Conductor, cm *managers.ConnectionManager, tr speech.Transcriber, syn speech.Synthesizer, jwtSecret string, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		conductor:   c,
		connections: cm,
		transcriber: tr,
		synthesizer: syn,
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

// HandleInterview upgrades the connection, authorizes it and then services
// interview frames until the client disconnects or the interview ends.
func (h *WSHandler) HandleInterview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "interviewId"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(w, http.StatusBadRequest, "validation_error", "invalid interview id")
		return
	}
	interviewID := uint(id)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()[:8]
	log := h.logger.With(zap.Uint("interviewID", interviewID), zap.String("connID", connID))

	claims, err := utils.VerifyRequestToken(r, h.jwtSecret)
	if err != nil {
		log.Warn("unauthorized websocket connection", zap.Error(err))
		h.closeWith(conn, websocket.ClosePolicyViolation, "unauthorized")
		return
	}
	subject, err := utils.GetUserIDFromClaims(claims)
	if err != nil {
		h.closeWith(conn, websocket.ClosePolicyViolation, "unauthorized")
		return
	}
	role := utils.GetRoleFromClaims(claims)

	allowed, err := h.conductor.CanAccess(r.Context(), interviewID, subject, role)
	if err != nil {
		log.Warn("access check failed", zap.Error(err))
		h.closeWith(conn, websocket.CloseInternalServerErr, "access check failed")
		return
	}
	if !allowed {
		log.Warn("forbidden websocket connection", zap.String("subject", subject))
		h.closeWith(conn, websocket.ClosePolicyViolation, "forbidden")
		return
	}

	h.connections.Connect(interviewID, conn)
	metrics.ActiveConnections.Inc()
	log.Info("websocket connected")
	defer func() {
		h.connections.Disconnect(interviewID, conn)
		metrics.ActiveConnections.Dec()
		conn.Close()
		log.Info("websocket disconnected")
	}()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		if msgType == websocket.BinaryMessage {
			h.handleAudio(r.Context(), conn, interviewID, payload, log)
			continue
		}

		var frame wsFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			_ = conn.WriteJSON(wsEvent{Type: "error", Code: "invalid_frame", Message: "expected a JSON frame"})
			continue
		}

		switch frame.Type {
		case "start":
			h.handleStart(r.Context(), conn, interviewID, frame.Mode)
		case "message":
			h.handleMessage(r.Context(), conn, interviewID, frame)
		case "reconnect":
			h.handleReconnect(r.Context(), conn, interviewID)
		case "end":
			h.handleEnd(r.Context(), conn, interviewID)
		case "ping":
			_ = conn.WriteJSON(wsEvent{Type: "pong"})
		default:
			_ = conn.WriteJSON(wsEvent{Type: "error", Code: "unknown_type", Message: "unknown frame type: " + frame.Type})
		}
	}
}

func (h *WSHandler) handleStart(ctx context.Context, conn *websocket.Conn, interviewID uint, mode string) {
	result, err := h.conductor.Start(ctx, interviewID)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	_ = conn.WriteJSON(wsEvent{
		Type:             "greeting",
		InterviewID:      result.InterviewID,
		Message:          result.Greeting,
		TotalQuestions:   result.TotalQuestions,
		DurationLimitMin: result.DurationLimitMin,
	})
	if mode == string(models.AnswerModeVoice) {
		h.speak(ctx, conn, result.Greeting)
	}
}

func (h *WSHandler) handleMessage(ctx context.Context, conn *websocket.Conn, interviewID uint, frame wsFrame) {
	if frame.Message == "" {
		_ = conn.WriteJSON(wsEvent{Type: "error", Code: "validation_error", Message: "message is required"})
		return
	}
	mode := models.AnswerModeText
	if frame.Mode == string(models.AnswerModeVoice) {
		mode = models.AnswerModeVoice
	}

	result, err := h.conductor.ProcessMessageStream(ctx, interviewID, frame.Message, mode, func(chunk string) {
		_ = conn.WriteJSON(wsEvent{Type: "response_chunk", Message: chunk})
	})
	if err != nil {
		h.writeError(conn, err)
		return
	}
	h.writeTurnResult(ctx, conn, result, mode)
}

func (h *WSHandler) handleAudio(ctx context.Context, conn *websocket.Conn, interviewID uint, audio []byte, log *zap.Logger) {
	if h.transcriber == nil {
		_ = conn.WriteJSON(wsEvent{Type: "error", Code: "voice_unavailable", Message: "voice input is not configured"})
		return
	}

	transcript, err := h.transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.Warn("transcription failed", zap.Error(err))
		_ = conn.WriteJSON(wsEvent{Type: "error", Code: "transcription_failed", Message: "could not transcribe audio"})
		return
	}
	if speech.IsSilence(transcript) {
		_ = conn.WriteJSON(wsEvent{Type: "transcription_empty"})
		return
	}
	_ = conn.WriteJSON(wsEvent{Type: "transcription", Message: transcript})

	result, err := h.conductor.ProcessMessage(ctx, interviewID, transcript, models.AnswerModeVoice)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	h.writeTurnResult(ctx, conn, result, models.AnswerModeVoice)
}

func (h *WSHandler) handleReconnect(ctx context.Context, conn *websocket.Conn, interviewID uint) {
	snap, err := h.conductor.GetSnapshot(ctx, interviewID)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	history := make([]llmMessage, len(snap.ConversationHistory))
	for i, m := range snap.ConversationHistory {
		history[i] = llmMessage{Role: m.Role, Content: m.Content}
	}
	idx := snap.CurrentQuestionIndex
	_ = conn.WriteJSON(wsEvent{Type: "snapshot", History: history, QuestionIndex: &idx})
}

func (h *WSHandler) handleEnd(ctx context.Context, conn *websocket.Conn, interviewID uint) {
	interview, err := h.conductor.End(ctx, interviewID)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	_ = conn.WriteJSON(wsEvent{Type: "ended", InterviewID: interview.ID, Status: string(interview.Status)})
}

func (h *WSHandler) writeTurnResult(ctx context.Context, conn *websocket.Conn, result *conductor.TurnResult, mode models.AnswerMode) {
	eventType := "response_done"
	if result.IsComplete {
		eventType = "complete"
	}
	_ = conn.WriteJSON(wsEvent{
		Type:             eventType,
		Message:          result.Message,
		QuestionNumber:   result.QuestionNumber,
		TotalQuestions:   result.TotalQuestions,
		QuestionsAsked:   result.QuestionsAsked,
		TimeRemainingMin: result.TimeRemainingMin,
	})
	if mode == models.AnswerModeVoice {
		h.speak(ctx, conn, result.Message)
	}
}

func (h *WSHandler) speak(ctx context.Context, conn *websocket.Conn, text string) {
	if h.synthesizer == nil || text == "" {
		return
	}
	audio, err := h.synthesizer.Synthesize(ctx, text)
	if err != nil {
		h.logger.Warn("speech synthesis failed", zap.Error(err))
		return
	}
	_ = conn.WriteMessage(websocket.BinaryMessage, audio)
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(wsEvent{Type: "error", Code: string(conductor.KindOf(err)), Message: err.Error()})
}

func (h *WSHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}
