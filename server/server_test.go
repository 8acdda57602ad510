package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "modernc.org/sqlite"

	"github.com/adroste/nowte/board"
	"github.com/adroste/nowte/config"
	"github.com/adroste/nowte/dbopen"
	"github.com/adroste/nowte/realtime"
	"github.com/adroste/nowte/store"
)

var testSecret = []byte(strings.Repeat("s", 32))

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if err := store.ApplySchema(db); err != nil {
		t.Fatalf("ApplySchema: %v", err)
	}
	st := store.NewStore(db)
	manager := realtime.NewManager(st, nil, nil)
	srv := New(config.Default(), st, manager, nil, testSecret, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

// request sends a JSON request and decodes the JSON response into out
// (if out is non-nil). token may be empty.
func request(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// register creates an account and returns its token.
func register(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()
	var resp authResponse
	code := request(t, ts, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": username, "password": "hunter22pass"}, &resp)
	if code != http.StatusOK || resp.Token == "" {
		t.Fatalf("register %s: status %d, token %q", username, code, resp.Token)
	}
	return resp.Token
}

// WHAT: Tests the account lifecycle over HTTP: register, duplicate
// rejection, login, and /me with the issued token.
func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	token := register(t, ts, "alice")

	code := request(t, ts, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "alice", "password": "hunter22pass"}, nil)
	if code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", code)
	}

	var login authResponse
	code = request(t, ts, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "hunter22pass"}, &login)
	if code != http.StatusOK || login.Token == "" {
		t.Fatalf("login status = %d", code)
	}
	code = request(t, ts, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "wrongwrong"}, nil)
	if code != http.StatusUnauthorized {
		t.Errorf("bad password login status = %d, want 401", code)
	}

	var me store.User
	code = request(t, ts, http.MethodGet, "/api/auth/me", token, nil, &me)
	if code != http.StatusOK || me.Username != "alice" {
		t.Errorf("/me = %d, %+v", code, me)
	}
}

// WHAT: Tests that protected endpoints reject anonymous requests.
func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/auth/me", "/api/folders", "/api/documents"} {
		if code := request(t, ts, http.MethodGet, path, "", nil, nil); code != http.StatusUnauthorized {
			t.Errorf("GET %s anonymous = %d, want 401", path, code)
		}
	}
}

// WHAT: Tests folder and document management end to end: create a
// folder, file a document in it, rename, move to root, delete.
func TestFolderDocumentFlow(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	var folder store.Folder
	code := request(t, ts, http.MethodPost, "/api/folders", token,
		map[string]string{"name": "Sketches"}, &folder)
	if code != http.StatusCreated || folder.ID == "" {
		t.Fatalf("create folder = %d, %+v", code, folder)
	}

	var doc store.Document
	code = request(t, ts, http.MethodPost, "/api/documents", token,
		map[string]string{"title": "Plan", "folderId": folder.ID}, &doc)
	if code != http.StatusCreated || doc.FolderID != folder.ID {
		t.Fatalf("create document = %d, %+v", code, doc)
	}

	var inFolder []store.Document
	code = request(t, ts, http.MethodGet, "/api/documents?folder="+folder.ID, token, nil, &inFolder)
	if code != http.StatusOK || len(inFolder) != 1 {
		t.Fatalf("list in folder = %d, %v", code, inFolder)
	}
	var atRoot []store.Document
	request(t, ts, http.MethodGet, "/api/documents", token, nil, &atRoot)
	if len(atRoot) != 0 {
		t.Errorf("root listing leaked foldered doc: %v", atRoot)
	}

	var updated store.Document
	code = request(t, ts, http.MethodPatch, "/api/documents/"+doc.ID, token,
		map[string]string{"title": "Plan v2", "folderId": ""}, &updated)
	if code != http.StatusOK || updated.Title != "Plan v2" || updated.FolderID != "" {
		t.Fatalf("patch document = %d, %+v", code, updated)
	}

	code = request(t, ts, http.MethodDelete, "/api/documents/"+doc.ID, token, nil, nil)
	if code != http.StatusOK {
		t.Fatalf("delete document = %d", code)
	}
	code = request(t, ts, http.MethodGet, "/api/documents/"+doc.ID, token, nil, nil)
	if code != http.StatusNotFound {
		t.Errorf("get deleted document = %d, want 404", code)
	}
}

// WHAT: Tests that another user's folder and document read as 404, and
// that a cyclic folder move is rejected.
func TestOwnershipAndCycles(t *testing.T) {
	ts := newTestServer(t)
	alice := register(t, ts, "alice")
	bob := register(t, ts, "bob")

	var doc store.Document
	request(t, ts, http.MethodPost, "/api/documents", alice,
		map[string]string{"title": "Private"}, &doc)
	if code := request(t, ts, http.MethodGet, "/api/documents/"+doc.ID, bob, nil, nil); code != http.StatusNotFound {
		t.Errorf("foreign document = %d, want 404", code)
	}

	var a, b store.Folder
	request(t, ts, http.MethodPost, "/api/folders", alice, map[string]string{"name": "a"}, &a)
	request(t, ts, http.MethodPost, "/api/folders", alice,
		map[string]string{"name": "b", "parentId": a.ID}, &b)
	code := request(t, ts, http.MethodPatch, "/api/folders/"+a.ID, alice,
		map[string]string{"parentId": b.ID}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("cyclic move = %d, want 400", code)
	}
}

// WHAT: Tests drawing over the full stack: two users join the same
// document through the router, one draws a stroke, the other receives
// every event.
// WHY: This exercises auth on the upgrade, document loading and the
// hub fan-out exactly as a browser pair would.
func TestDocumentWSCollaboration(t *testing.T) {
	ts := newTestServer(t)
	alice := register(t, ts, "alice")
	bob := register(t, ts, "bob")

	var doc store.Document
	request(t, ts, http.MethodPost, "/api/documents", alice,
		map[string]string{"title": "Shared"}, &doc)

	dialWS := func(token string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") +
			fmt.Sprintf("/api/documents/%s/ws", doc.ID)
		hdr := http.Header{"Authorization": {"Bearer " + token}}
		conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
		if err != nil {
			t.Fatalf("dial ws: %v", err)
		}
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	readFrame := func(conn *websocket.Conn) *realtime.Envelope {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var env realtime.Envelope
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatal(err)
		}
		return &env
	}

	aliceWS := dialWS(alice)
	if env := readFrame(aliceWS); env.Type != realtime.TypeDocInit {
		t.Fatalf("alice first frame = %s", env.Type)
	}
	bobWS := dialWS(bob)
	if env := readFrame(bobWS); env.Type != realtime.TypeDocInit {
		t.Fatalf("bob first frame = %s", env.Type)
	}
	if env := readFrame(aliceWS); env.Type != realtime.TypeUserJoin {
		t.Fatalf("alice expected join, got %s", env.Type)
	}

	style := board.StrokeStyle{Color: "#0000ff", Thickness: 4}
	begin := realtime.Envelope{
		Type: realtime.TypePathBegin, StrokeStyle: &style,
		Position: &board.Point{X: 2000, Y: 100},
	}
	data, _ := json.Marshal(begin)
	if err := aliceWS.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatal(err)
	}

	env := readFrame(bobWS)
	if env.Type != realtime.TypePathBegin || env.BrickID != "1:0" {
		t.Fatalf("bob begin = %+v", env)
	}

	// An unauthenticated upgrade attempt is rejected before upgrading.
	url := "ws" + strings.TrimPrefix(ts.URL, "http") +
		fmt.Sprintf("/api/documents/%s/ws", doc.ID)
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Error("anonymous ws dial succeeded")
	}
}
