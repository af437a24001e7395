package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/RehanAnsari17/Qloooooooo/internal/chat"
	"github.com/RehanAnsari17/Qloooooooo/internal/config"
	"github.com/RehanAnsari17/Qloooooooo/internal/feedback"
	"github.com/RehanAnsari17/Qloooooooo/internal/models"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&chat.Session{},
		&chat.Message{},
		&chat.ArchiveJob{},
		&chat.SessionArchive{},
		&feedback.Preference{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	// geocoder stub so registration never leaves the process
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"display_name": "Lisbon, Portugal", "address": {"city": "Lisbon", "country": "Portugal"}}]`))
	}))
	t.Cleanup(geoSrv.Close)

	cfg := config.Config{
		JWTSecret:       "test-secret",
		BotProvider:     "scripted",
		GeocodeBaseURL:  geoSrv.URL,
		FeedbackLogPath: t.TempDir() + "/feedback.log",
		CORSOrigin:      "http://localhost:5173",
	}
	return NewRouter(db, cfg, nil, nil)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope (%d): %v: %s", w.Code, err, w.Body.String())
	}
	return w.Code, env
}

func TestRegisterLoginRoundtrip(t *testing.T) {
	r := newTestRouter(t)

	status, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "ana@example.com",
		"password": "hunter22",
		"name":     "Ana",
		"age":      30,
		"location": "Lisbon",
	})
	if status != http.StatusOK || env.Code != 0 {
		t.Fatalf("register: status=%d code=%d message=%q", status, env.Code, env.Message)
	}

	status, env = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ana@example.com",
		"password": "hunter22",
	})
	if status != http.StatusOK || env.Code != 0 {
		t.Fatalf("login: status=%d code=%d message=%q", status, env.Code, env.Message)
	}

	var data struct {
		Name     string `json:"name"`
		Age      int    `json:"age"`
		Location string `json:"location"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.Name != "Ana" || data.Age != 30 {
		t.Fatalf("profile not preserved: %+v", data)
	}
	// the geocoder's display name is what gets stored at registration
	if data.Location != "Lisbon, Portugal" {
		t.Fatalf("location = %q, want geocoded display name", data.Location)
	}
	if data.Token == "" {
		t.Fatalf("login returned no token")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r := newTestRouter(t)

	if status, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "rui@example.com",
		"password": "correct-pw",
		"name":     "Rui",
		"age":      25,
		"location": "Porto",
	}); status != http.StatusOK {
		t.Fatalf("register: status=%d", status)
	}

	status, env := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "rui@example.com",
		"password": "wrong-pw",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	// same message as for an unknown account
	if env.Message != "invalid email or password" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestRegisterRejectsBadAge(t *testing.T) {
	r := newTestRouter(t)

	status, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "kid@example.com",
		"password": "pw",
		"name":     "Kid",
		"age":      9,
		"location": "Lisbon",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestChatEndpointsRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	status, _ := doJSON(t, r, http.MethodPost, "/api/chat", "", gin.H{
		"session_id": "whatever",
		"message":    "hi",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
}

func TestChatFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "eva@example.com",
		"password": "pw123456",
		"name":     "Eva",
		"age":      40,
		"location": "Lisbon",
	})
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &reg); err != nil || reg.Token == "" {
		t.Fatalf("no token from register: %v %s", err, env.Data)
	}

	status, env := doJSON(t, r, http.MethodPost, "/api/register-user", reg.Token, gin.H{
		"name":     "Eva",
		"age":      40,
		"location": "Lisbon, Portugal",
	})
	if status != http.StatusOK {
		t.Fatalf("register-user: status=%d message=%q", status, env.Message)
	}
	var prof struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(env.Data, &prof); err != nil || prof.SessionID == "" {
		t.Fatalf("no session id: %v %s", err, env.Data)
	}

	status, env = doJSON(t, r, http.MethodPost, "/api/chat", reg.Token, gin.H{
		"session_id": prof.SessionID,
		"message":    "best pizza near me",
	})
	if status != http.StatusOK {
		t.Fatalf("chat: status=%d message=%q", status, env.Message)
	}
	var reply struct {
		BotMessage struct {
			Restaurants []json.RawMessage `json:"restaurants"`
		} `json:"bot_message"`
	}
	if err := json.Unmarshal(env.Data, &reply); err != nil {
		t.Fatalf("decode chat data: %v", err)
	}
	if len(reply.BotMessage.Restaurants) == 0 {
		t.Fatalf("recommendation ask returned no restaurant cards")
	}

	if status, env = doJSON(t, r, http.MethodPost, "/api/end-chat/"+prof.SessionID, reg.Token, nil); status != http.StatusOK {
		t.Fatalf("end-chat: status=%d message=%q", status, env.Message)
	}
	status, env = doJSON(t, r, http.MethodPost, "/api/chat", reg.Token, gin.H{
		"session_id": prof.SessionID,
		"message":    "one more",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("send after end: status=%d message=%q", status, env.Message)
	}
}
