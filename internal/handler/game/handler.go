package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
	gameservice "github.com/zhouzirui/twenty-questions/backend/internal/service/game"
	"github.com/zhouzirui/twenty-questions/backend/pkg/utils"
)

const upstreamMessage = "the questioner is unavailable, please try again"

// GameService 抽象对局业务，便于测试与替换实现
type GameService interface {
	CreateSession(ctx context.Context) (game.Session, game.Outcome, error)
	Answer(ctx context.Context, sessionID string, answer game.Answer) (game.Session, game.Outcome, error)
	Retry(ctx context.Context, sessionID string) (game.Session, game.Outcome, error)
	GetSession(ctx context.Context, sessionID string) (game.Session, error)
	History(ctx context.Context, sessionID string) ([]game.Message, error)
	ConfirmGuess(ctx context.Context, sessionID string, correct bool) (game.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Handler 对局服务的HTTP处理器
type Handler struct {
	games GameService
	ws    *WebSocketHandler
}

// New 创建对局处理器
func New(games GameService) *Handler {
	return &Handler{
		games: games,
		ws:    NewWebSocketHandler(games),
	}
}

// TurnResponse 是每次出题或作答后返回的结果
type TurnResponse struct {
	Session game.Session  `json:"session"`
	Outcome *game.Outcome `json:"outcome,omitempty"`
}

// RegisterRoutes 注册对局相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/games", func(games chi.Router) {
		games.Post("/", h.handleCreate)

		games.Route("/{gameID}", func(one chi.Router) {
			one.Get("/", h.handleGet)
			one.Delete("/", h.handleDelete)
			one.Get("/history", h.handleHistory)
			one.Post("/answers", h.handleAnswer)
			one.Post("/retry", h.handleRetry)
			one.Post("/verdict", h.handleVerdict)

			// WebSocket 对局通道
			one.Get("/ws", h.ws.handleWebSocket)
		})
	})
}

// handleCreate 开始新对局并返回第一个问题
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session, outcome, err := h.games.CreateSession(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, TurnResponse{Session: session, Outcome: &outcome})
}

// handleGet 查询对局概况
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.games.GetSession(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

// handleHistory 返回不含系统提示的对话记录
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.games.History(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": history})
}

// handleAnswer 提交玩家回答并推进一轮
func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Answer string `json:"answer"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := game.ParseAnswer(payload.Answer)
	if err != nil {
		respondServiceError(w, fmt.Errorf("%w: %v", gameservice.ErrInvalidInput, err))
		return
	}

	session, outcome, err := h.games.Answer(r.Context(), chi.URLParam(r, "gameID"), answer)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, TurnResponse{Session: session, Outcome: &outcome})
}

// handleRetry 重试上一次失败的模型调用
func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	session, outcome, err := h.games.Retry(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, TurnResponse{Session: session, Outcome: &outcome})
}

// handleVerdict 记录玩家对最终猜测的确认
func (h *Handler) handleVerdict(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Correct *bool `json:"correct"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil || payload.Correct == nil {
		utils.RespondError(w, http.StatusBadRequest, "correct is required")
		return
	}

	session, err := h.games.ConfirmGuess(r.Context(), chi.URLParam(r, "gameID"), *payload.Correct)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

// handleDelete 放弃对局
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.games.DeleteSession(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statusFor 将业务错误映射为 HTTP 状态码与对外提示
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, gameservice.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, gameservice.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, gameservice.ErrInvalidState), errors.Is(err, gameservice.ErrSessionBusy):
		return http.StatusConflict, err.Error()
	case errors.Is(err, gameservice.ErrUpstream):
		return http.StatusBadGateway, upstreamMessage
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[http] request failed: %v", err)
	}
	utils.RespondError(w, status, message)
}
