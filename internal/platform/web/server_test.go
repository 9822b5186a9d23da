package web

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/merge-arcade/internal/games/t2048"
	"github.com/vovakirdan/merge-arcade/internal/storage"
)

type testEnv struct {
	server  *httptest.Server
	manager *Manager
	store   *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	manager := NewManager(store, quietLogger())
	seed := int64(0)
	manager.newRand = func() t2048.Rand {
		seed++
		return rand.New(rand.NewSource(seed))
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(quietLogger())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewServer(manager, hub, quietLogger()))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, manager: manager, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return v
}

func tileCount(board [t2048.BoardSize][t2048.BoardSize]int) int {
	n := 0
	for _, row := range board {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func TestCreateAndGetSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "POST", "/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	created := decode[StateView](t, resp)

	if created.ID == "" {
		t.Fatal("Session id is empty")
	}
	if tileCount(created.Board) != 2 {
		t.Errorf("New board has %d tiles, want 2", tileCount(created.Board))
	}
	if created.Score != 0 || created.Level != 0 || created.MaxLevel != 5 {
		t.Errorf("Unexpected initial state: %+v", created)
	}

	resp = env.do(t, "GET", "/api/sessions/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	got := decode[StateView](t, resp)
	if got.Board != created.Board {
		t.Error("GET returned a different board")
	}

	resp = env.do(t, "GET", "/api/sessions", nil)
	list := decode[struct {
		Sessions []string `json:"sessions"`
		Count    int      `json:"count"`
	}](t, resp)
	if list.Count != 1 || list.Sessions[0] != created.ID {
		t.Errorf("Unexpected session list: %+v", list)
	}
}

func TestMoveInvalidDirection(t *testing.T) {
	env := newTestEnv(t)
	created := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))

	resp := env.do(t, "POST", "/api/sessions/"+created.ID+"/move", map[string]string{"direction": "diagonal"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}

	after := decode[StateView](t, env.do(t, "GET", "/api/sessions/"+created.ID, nil))
	if after.Board != created.Board || after.Score != created.Score {
		t.Error("Invalid direction changed the session")
	}
}

func TestMoveBadBody(t *testing.T) {
	env := newTestEnv(t)
	created := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))

	req, _ := http.NewRequest("POST", env.server.URL+"/api/sessions/"+created.ID+"/move", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/sessions/nope"},
		{"DELETE", "/api/sessions/nope"},
		{"POST", "/api/sessions/nope/restart"},
	} {
		resp := env.do(t, tc.method, tc.path, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}

	resp := env.do(t, "POST", "/api/sessions/nope/move", map[string]string{"direction": "left"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("move on unknown session: expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	created := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))

	resp := env.do(t, "DELETE", "/api/sessions/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	resp = env.do(t, "GET", "/api/sessions/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestMovesPersistHighScore(t *testing.T) {
	env := newTestEnv(t)
	created := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))

	dirs := []string{"left", "up", "right", "down"}
	var last MoveOutcome
	for i := 0; i < 200 && last.State.Score == 0; i++ {
		resp := env.do(t, "POST", "/api/sessions/"+created.ID+"/move", map[string]string{"direction": dirs[i%4]})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("move %d: expected 200, got %d", i, resp.StatusCode)
		}
		last = decode[MoveOutcome](t, resp)
	}

	if last.State.Score == 0 {
		t.Fatal("No merge happened in 200 moves")
	}
	if last.State.HighScore != last.State.Score {
		t.Errorf("High score %d should track first score %d", last.State.HighScore, last.State.Score)
	}

	stored, err := env.store.LoadHighScore(t2048.GameID)
	if err != nil {
		t.Fatalf("LoadHighScore() failed: %v", err)
	}
	if stored != last.State.HighScore {
		t.Errorf("Stored high score %d, want %d", stored, last.State.HighScore)
	}

	// New sessions start from the stored high score
	next := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))
	if next.HighScore != stored {
		t.Errorf("New session high score %d, want %d", next.HighScore, stored)
	}

	restarted := decode[StateView](t, env.do(t, "POST", "/api/sessions/"+created.ID+"/restart", nil))
	if restarted.Score != 0 || restarted.HighScore != stored {
		t.Errorf("Restart: score %d high %d, want 0 and %d", restarted.Score, restarted.HighScore, stored)
	}
}

func TestScoresEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.store.SaveScore(t2048.GameID, 128)
	env.store.SaveScore(t2048.GameID, 512)

	resp := env.do(t, "GET", "/api/scores/2048?limit=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	rows := decode[[]struct {
		Rank  int `json:"rank"`
		Score int `json:"score"`
	}](t, resp)
	if len(rows) != 1 || rows[0].Score != 512 || rows[0].Rank != 1 {
		t.Errorf("Unexpected scores: %+v", rows)
	}

	resp = env.do(t, "GET", "/api/scores/2048?limit=zero", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", resp.StatusCode)
	}
}

func TestWebSocketReceivesStateUpdates(t *testing.T) {
	env := newTestEnv(t)
	created := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))
	conn := dialSession(t, env, created.ID)

	env.do(t, "POST", "/api/sessions/"+created.ID+"/restart", nil)

	update := readMessage(t, conn)
	if update.Event != EventStateUpdate || update.SessionID != created.ID {
		t.Errorf("Unexpected update: %+v", update)
	}
	if update.State == nil || update.State.ID != created.ID {
		t.Errorf("Update carries wrong state: %+v", update.State)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Expected dial to fail for unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 response, got %v", resp)
	}
}

func dialSession(t *testing.T, env *testEnv, id string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if first := readMessage(t, conn); first.Event != EventStateUpdate {
		t.Fatalf("Unexpected first message: %+v", first)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return msg
}

// expectSilence fails if another message arrives shortly. It leaves the
// connection unusable, so call it last.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg Message
	if err := conn.ReadJSON(&msg); err == nil {
		t.Errorf("Unexpected extra message: %+v", msg)
	}
}

func loadBoard(t *testing.T, env *testEnv, id string, b t2048.Board, score int) {
	t.Helper()
	s, err := env.manager.get(id)
	if err != nil {
		t.Fatalf("get(%s) failed: %v", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Load(b, score); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
}

func TestMoveBroadcastsLevelUpOnce(t *testing.T) {
	env := newTestEnv(t)
	created := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))
	loadBoard(t, env, created.ID, t2048.Board{64, 64}, 0)
	conn := dialSession(t, env, created.ID)

	outcome := decode[MoveOutcome](t, env.do(t, "POST", "/api/sessions/"+created.ID+"/move",
		map[string]string{"direction": "left"}))
	if !outcome.Moved || outcome.LevelUp != 1 || outcome.State.Level != 1 {
		t.Fatalf("Unexpected outcome: %+v", outcome)
	}
	if outcome.State.Board[0][0] != 128 || outcome.Gained != 128 {
		t.Errorf("Expected 128 at the top left, got %+v", outcome)
	}

	if msg := readMessage(t, conn); msg.Event != EventStateUpdate {
		t.Fatalf("Expected state_update first, got %+v", msg)
	}
	msg := readMessage(t, conn)
	if msg.Event != EventLevelUp {
		t.Fatalf("Expected level_up, got %+v", msg)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok {
		t.Fatalf("level_up data = %T, want object", msg.Data)
	}
	if data["level"] != float64(1) || data["tile"] != float64(128) || data["name"] != "Warm-up" {
		t.Errorf("Unexpected level_up data: %v", data)
	}

	// Sliding the same 128 again raises nothing.
	again := decode[MoveOutcome](t, env.do(t, "POST", "/api/sessions/"+created.ID+"/move",
		map[string]string{"direction": "right"}))
	if !again.Moved || again.LevelUp != 0 {
		t.Fatalf("Unexpected second outcome: %+v", again)
	}
	if msg := readMessage(t, conn); msg.Event != EventStateUpdate {
		t.Fatalf("Expected state_update, got %+v", msg)
	}
	expectSilence(t, conn)
}

func TestMoveBroadcastsGameOver(t *testing.T) {
	env := newTestEnv(t)
	created := decode[StateView](t, env.do(t, "POST", "/api/sessions", nil))

	// Sliding the last row left leaves a single gap whose neighbours are 64
	// and 512, so whichever tile spawns there the board is stuck.
	loadBoard(t, env, created.ID, t2048.Board{
		2, 4, 2, 4,
		4, 2, 4, 2,
		8, 16, 32, 64,
		0, 128, 256, 512,
	}, 1000)
	conn := dialSession(t, env, created.ID)

	path := "/api/sessions/" + created.ID + "/move"
	outcome := decode[MoveOutcome](t, env.do(t, "POST", path, map[string]string{"direction": "left"}))
	if !outcome.Moved || !outcome.State.GameOver {
		t.Fatalf("Expected a final move, got %+v", outcome)
	}
	if outcome.LevelUp != 0 {
		t.Errorf("LevelUp = %d, want 0 for a loaded 512 board", outcome.LevelUp)
	}

	if msg := readMessage(t, conn); msg.Event != EventStateUpdate || !msg.State.GameOver {
		t.Fatalf("Expected final state_update, got %+v", msg)
	}
	msg := readMessage(t, conn)
	if msg.Event != EventGameOver {
		t.Fatalf("Expected game_over, got %+v", msg)
	}
	if data, _ := msg.Data.(map[string]any); data["score"] != float64(1000) {
		t.Errorf("Unexpected game_over data: %v", msg.Data)
	}

	// A move on a stuck board changes nothing and announces nothing.
	stuck := decode[MoveOutcome](t, env.do(t, "POST", path, map[string]string{"direction": "up"}))
	if stuck.Moved {
		t.Errorf("Move on a finished board reported Moved")
	}

	scores, err := env.store.TopScores(t2048.GameID, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 1000 {
		t.Errorf("Expected one saved score of 1000, got %v", scores)
	}
	expectSilence(t, conn)
}

func TestRespondJSONLogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	srv := NewServer(NewManager(nil, quietLogger()), nil, log.New(&logs))

	rec := httptest.NewRecorder()
	srv.respondJSON(rec, http.StatusOK, math.Inf(1))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(logs.String(), "could not encode response") {
		t.Errorf("Encode failure was not logged: %q", logs.String())
	}
}
