package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/commhub/internal/domain"
	"github.com/nfrund/commhub/internal/handlers"
	"github.com/nfrund/commhub/internal/realtime"
	"github.com/nfrund/commhub/internal/server"
)

// TestMain loads test environment variables once for the whole package.
func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.test")
	_ = godotenv.Load("../../.env")
	os.Exit(m.Run())
}

// setupIntegrationTest boots a fully wired server against a real database.
// It skips when the environment does not provide one.
func setupIntegrationTest(t *testing.T) (*server.Server, *httptest.Server) {
	t.Helper()

	if os.Getenv("SURREAL_URL") == "" || os.Getenv("JWT_SECRET") == "" {
		t.Skip("SURREAL_URL and JWT_SECRET must be set for integration tests")
	}

	s := server.New()
	s.RegisterRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.StartRealtime(ctx))

	testServer := httptest.NewServer(s.E)
	t.Cleanup(func() {
		testServer.Close()
		cancel()
	})
	return s, testServer
}

// registerUser creates an account over the HTTP API and returns the user
// along with an access token.
func registerUser(t *testing.T, testServer *httptest.Server, name string) (handlers.UserResponse, string) {
	t.Helper()

	email := fmt.Sprintf("%s-%s@example.com", strings.ToLower(name), uuid.NewString())
	body, err := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": "integration-test-password",
	})
	require.NoError(t, err)

	resp, err := http.Post(testServer.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var auth handlers.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
	require.NotEmpty(t, auth.AccessToken)
	return auth.User, auth.AccessToken
}

// connectAndIdentify dials the WebSocket endpoint and binds the user identity.
func connectAndIdentify(t *testing.T, testServer *httptest.Server, token string, userID int64) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})

	register := fmt.Sprintf(`{"event":"register_socket","data":%d}`, userID)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(register)))
	return conn
}

// readUntilEvent reads frames until one matches the wanted event.
func readUntilEvent(t *testing.T, conn *websocket.Conn, event string) realtime.Frame {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %q frame", event)

		var frame realtime.Frame
		require.NoError(t, json.Unmarshal(payload, &frame))
		if frame.Event == event {
			return frame
		}
	}
}

func TestServer_WebSocketMessageFlow(t *testing.T) {
	_, testServer := setupIntegrationTest(t)

	alice, aliceToken := registerUser(t, testServer, "Alice")
	bob, bobToken := registerUser(t, testServer, "Bob")

	aliceConn := connectAndIdentify(t, testServer, aliceToken, alice.ID)
	bobConn := connectAndIdentify(t, testServer, bobToken, bob.ID)

	// Bob's own presence announcement confirms his registration landed.
	for {
		frame := readUntilEvent(t, bobConn, realtime.EventUserOnline)
		var id int64
		require.NoError(t, json.Unmarshal(frame.Data, &id))
		if id == bob.ID {
			break
		}
	}

	send := fmt.Sprintf(`{"event":"send_message","data":{"senderId":%d,"receiverId":%d,"text":"hello from the wire"}}`, alice.ID, bob.ID)
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(send)))

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		frame := readUntilEvent(t, conn, realtime.EventNewMessage)
		var msg domain.EnrichedMessage
		require.NoError(t, json.Unmarshal(frame.Data, &msg))
		assert.Equal(t, "hello from the wire", msg.Text)
		assert.Equal(t, alice.ID, msg.Sender.ID)
		assert.Equal(t, bob.ID, msg.Receiver.ID)
	}
}

func TestServer_RESTMessageAndHistory(t *testing.T) {
	_, testServer := setupIntegrationTest(t)

	_, aliceToken := registerUser(t, testServer, "Alice")
	bob, _ := registerUser(t, testServer, "Bob")

	client := &http.Client{}
	post := func(path, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, testServer.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+aliceToken)
		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}
	get := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, testServer.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+aliceToken)
		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("/api/messages", fmt.Sprintf(`{"receiverId":%d,"text":"checking in"}`, bob.ID))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = get(fmt.Sprintf("/api/messages/conversation?targetUserId=%d", bob.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []domain.EnrichedMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	resp.Body.Close()
	require.NotEmpty(t, history)
	assert.Equal(t, "checking in", history[len(history)-1].Text)

	resp = get(fmt.Sprintf("/api/messages/search?targetUserId=%d&q=CHECKING", bob.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results []domain.EnrichedMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	resp.Body.Close()
	require.NotEmpty(t, results)

	resp = post(fmt.Sprintf("/api/insights/generate?targetUserId=%d", bob.ID), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var generated domain.Insight
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&generated))
	resp.Body.Close()
	assert.NotEmpty(t, generated.Summary)
}

func TestServer_RejectsUnauthenticatedRequests(t *testing.T) {
	_, testServer := setupIntegrationTest(t)

	resp, err := http.Get(testServer.URL + "/api/users")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
