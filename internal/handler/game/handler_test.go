package game

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
	gameservice "github.com/zhouzirui/twenty-questions/backend/internal/service/game"
)

var errModelDown = errors.New("model down")

// stubQuestioner replays replies in order and fails once when failNext is set.
type stubQuestioner struct {
	mu       sync.Mutex
	replies  []string
	failNext bool
}

func (q *stubQuestioner) Complete(_ context.Context, _ []game.Message) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.failNext {
		q.failNext = false
		return "", errModelDown
	}
	if len(q.replies) == 0 {
		return "Does it have legs?", nil
	}
	reply := q.replies[0]
	q.replies = q.replies[1:]
	return reply, nil
}

func (q *stubQuestioner) failOnce() {
	q.mu.Lock()
	q.failNext = true
	q.mu.Unlock()
}

func setupRouter(q *stubQuestioner) *chi.Mux {
	games := gameservice.NewService(q, gameservice.Config{BaseLimit: 20, GraceLimit: 25})
	handler := New(games)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createGame(t *testing.T, r http.Handler) TurnResponse {
	t.Helper()

	resp := doRequest(t, r, http.MethodPost, "/games", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created TurnResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return created
}

func TestCreateGameReturnsFirstQuestion(t *testing.T) {
	r := setupRouter(&stubQuestioner{replies: []string{"Is it alive?"}})

	created := createGame(t, r)

	if created.Session.ID == "" {
		t.Fatalf("expected session id")
	}
	if created.Session.Status != game.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", created.Session.Status)
	}
	if created.Outcome == nil || created.Outcome.Kind != game.OutcomeContinue {
		t.Fatalf("expected continue outcome, got %+v", created.Outcome)
	}
	if created.Outcome.Question != "Is it alive?" {
		t.Fatalf("unexpected first question %q", created.Outcome.Question)
	}
}

func TestCreateGameUpstreamFailure(t *testing.T) {
	q := &stubQuestioner{}
	q.failOnce()
	r := setupRouter(q)

	resp := doRequest(t, r, http.MethodPost, "/games", nil)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] != upstreamMessage {
		t.Fatalf("expected upstream message, got %q", body["error"])
	}
}

func TestAnswerAdvancesGame(t *testing.T) {
	r := setupRouter(&stubQuestioner{replies: []string{"Is it man-made?", "Does it have wheels?"}})
	created := createGame(t, r)

	resp := doRequest(t, r, http.MethodPost, "/games/"+created.Session.ID+"/answers", map[string]string{"answer": "yes"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var turn TurnResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.Outcome == nil || turn.Outcome.Question != "Does it have wheels?" {
		t.Fatalf("unexpected outcome %+v", turn.Outcome)
	}
	if turn.Session.QuestionsAsked != 2 {
		t.Fatalf("expected 2 questions asked, got %d", turn.Session.QuestionsAsked)
	}
}

func TestAnswerValidation(t *testing.T) {
	r := setupRouter(&stubQuestioner{})
	created := createGame(t, r)
	path := "/games/" + created.Session.ID + "/answers"

	resp := doRequest(t, r, http.MethodPost, path, map[string]string{"answer": "maybe"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown answer, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestUnknownGameReturnsNotFound(t *testing.T) {
	r := setupRouter(&stubQuestioner{})

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/games/missing", nil},
		{http.MethodGet, "/games/missing/history", nil},
		{http.MethodPost, "/games/missing/answers", map[string]string{"answer": "No"}},
		{http.MethodPost, "/games/missing/retry", nil},
		{http.MethodDelete, "/games/missing", nil},
	} {
		resp := doRequest(t, r, tc.method, tc.path, tc.body)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestRetryAfterUpstreamFailure(t *testing.T) {
	q := &stubQuestioner{replies: []string{"Is it alive?"}}
	r := setupRouter(q)
	created := createGame(t, r)
	base := "/games/" + created.Session.ID

	q.failOnce()
	resp := doRequest(t, r, http.MethodPost, base+"/answers", map[string]string{"answer": "No"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	resp = doRequest(t, r, http.MethodPost, base+"/retry", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 after retry, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, r, http.MethodPost, base+"/retry", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 when nothing is pending, got %d", resp.Code)
	}
}

func TestHistoryOmitsSystemPrompt(t *testing.T) {
	r := setupRouter(&stubQuestioner{replies: []string{"Is it alive?"}})
	created := createGame(t, r)

	resp := doRequest(t, r, http.MethodGet, "/games/"+created.Session.ID+"/history", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Messages []game.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(body.Messages) == 0 {
		t.Fatalf("expected history entries")
	}
	for _, msg := range body.Messages {
		if msg.Role == game.RoleSystem {
			t.Fatalf("history leaked system message: %+v", msg)
		}
	}
}

func TestVerdictFlow(t *testing.T) {
	r := setupRouter(&stubQuestioner{replies: []string{"Is it alive?", "I think it's a cat!"}})
	created := createGame(t, r)
	base := "/games/" + created.Session.ID

	resp := doRequest(t, r, http.MethodPost, base+"/verdict", map[string]bool{"correct": true})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 before a guess, got %d", resp.Code)
	}

	resp = doRequest(t, r, http.MethodPost, base+"/answers", map[string]string{"answer": "Yes"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var turn TurnResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.Outcome == nil || turn.Outcome.Kind != game.OutcomeWon || turn.Outcome.Guess != "cat" {
		t.Fatalf("expected win guessing cat, got %+v", turn.Outcome)
	}

	resp = doRequest(t, r, http.MethodPost, base+"/verdict", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without correct flag, got %d", resp.Code)
	}

	resp = doRequest(t, r, http.MethodPost, base+"/verdict", map[string]bool{"correct": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var session game.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Verdict != game.VerdictCorrect {
		t.Fatalf("expected correct verdict, got %q", session.Verdict)
	}

	resp = doRequest(t, r, http.MethodPost, base+"/answers", map[string]string{"answer": "Yes"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 after game ended, got %d", resp.Code)
	}
}

func TestDeleteGame(t *testing.T) {
	r := setupRouter(&stubQuestioner{})
	created := createGame(t, r)
	path := "/games/" + created.Session.ID

	resp := doRequest(t, r, http.MethodDelete, path, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	resp = doRequest(t, r, http.MethodGet, path, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}
