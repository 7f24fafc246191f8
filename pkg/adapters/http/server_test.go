package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type increment struct {
	By int `json:"by"`
}

// asInt tolerates float64 app state, which is what JSON decoding produces.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func counterDef() ports.Definition {
	return ports.Definition{
		Name: "counter",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			switch m := msg.(type) {
			case increment:
				return domain.HandlerResult{domain.AppState(asInt(appState) + m.By)}, nil
			}
			return nil, nil
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.Register(counterDef()))
	reg.RegisterMessage("counter", "increment", increment{})

	mgr := session.NewManager()
	handler := httpadapter.NewHandler(mgr, reg)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestListComponents(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/components")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := decode[map[string][]string](t, resp)
	assert.Equal(t, []string{"counter"}, body["components"])
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", httpadapter.CreateSessionRequest{
		SessionID: "s1",
		Component: "counter",
		AppState:  0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[httpadapter.CreateSessionResponse](t, resp)
	assert.Equal(t, "s1", created.SessionID)
	assert.NotEmpty(t, created.Root)

	// Duplicate IDs conflict.
	resp = postJSON(t, srv.URL+"/sessions", httpadapter.CreateSessionRequest{
		SessionID: "s1",
		Component: "counter",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown components are rejected.
	resp = postJSON(t, srv.URL+"/sessions", httpadapter.CreateSessionRequest{
		SessionID: "s2",
		Component: "nope",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendMessage(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", httpadapter.CreateSessionRequest{
		SessionID: "s1",
		Component: "counter",
		AppState:  0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[httpadapter.CreateSessionResponse](t, resp)

	resp = postJSON(t, srv.URL+"/sessions/s1/nodes/"+string(created.Root)+"/message", httpadapter.MessageRequest{
		Type:    "increment",
		Payload: map[string]any{"by": 3},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[httpadapter.MessageResponse](t, resp)
	assert.True(t, result.AppStateChanged)
	assert.False(t, result.LocalStateChanged)
	assert.Zero(t, result.Actions)
	require.NotNil(t, result.Diff)

	// The tree reflects the commit.
	treeResp, err := http.Get(srv.URL + "/sessions/s1/tree")
	require.NoError(t, err)
	defer treeResp.Body.Close()
	require.Equal(t, http.StatusOK, treeResp.StatusCode)

	snap := decode[domain.TreeSnapshot](t, treeResp)
	node := snap.Node(created.Root)
	require.NotNil(t, node)
	assert.EqualValues(t, 3, node.AppState)
}

func TestSendMessage_Errors(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", httpadapter.CreateSessionRequest{
		SessionID: "s1",
		Component: "counter",
		AppState:  0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[httpadapter.CreateSessionResponse](t, resp)

	// Missing session.
	resp = postJSON(t, srv.URL+"/sessions/nope/nodes/"+string(created.Root)+"/message", httpadapter.MessageRequest{
		Type: "increment",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing node.
	resp = postJSON(t, srv.URL+"/sessions/s1/nodes/ghost/message", httpadapter.MessageRequest{
		Type: "increment",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Unregistered message type.
	resp = postJSON(t, srv.URL+"/sessions/s1/nodes/"+string(created.Root)+"/message", httpadapter.MessageRequest{
		Type: "explode",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", httpadapter.CreateSessionRequest{
		SessionID: "s1",
		Component: "counter",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/s1", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	listResp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer listResp.Body.Close()
	body := decode[map[string][]string](t, listResp)
	assert.Empty(t, body["sessions"])
}
