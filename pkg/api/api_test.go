package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gamedevlabs/pixe"
)

type call struct {
	method string
	path   string
	body   map[string]interface{}
}

// server starts a test server that answers every request with the given
// payload and records the calls.
func server(t *testing.T, status int, payload string) (*Client, *[]call, func()) {
	t.Helper()

	calls := &[]call{}
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing or wrong authorization header")
		}

		c := call{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			var body map[string]interface{}
			if json.NewDecoder(r.Body).Decode(&body) == nil {
				c.body = body
			}
		}
		*calls = append(*calls, c)

		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))

	client := NewClient(s.URL, "test-token")
	return client, calls, s.Close
}

func TestClientList(t *testing.T) {
	payload := `{"moodboards": [
		{"id": "b-1", "title": "First"},
		{"id": "b-2", "title": "Second"}
	]}`
	client, calls, done := server(t, http.StatusOK, payload)
	defer done()

	boards, err := client.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(boards) != 2 {
		t.Fatalf("unexpected board count %v", len(boards))
	}
	if boards[0].Title != "First" {
		t.Errorf("unexpected title %q", boards[0].Title)
	}

	c := (*calls)[0]
	if c.method != "GET" || c.path != "/api/v1/moodboards" {
		t.Errorf("unexpected request %v %v", c.method, c.path)
	}
}

func TestClientFetch(t *testing.T) {
	payload := `{"moodboard": {
		"id": "b-1",
		"title": "Board",
		"canvas_width": 1920,
		"images": [{"id": "i-1", "image_url": "https://example.com/a.png", "z_index": 3}],
		"texts": [{"id": "t-1", "content": "Hi", "text_align": "center"}]
	}}`
	client, _, done := server(t, http.StatusOK, payload)
	defer done()

	mb, err := client.Fetch("b-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mb.Images) != 1 || mb.Images[0].ZIndex != 3 {
		t.Errorf("images not decoded")
	}
	if len(mb.Texts) != 1 || mb.Texts[0].TextAlign != pixe.AlignCenter {
		t.Errorf("texts not decoded")
	}
}

func TestClientNotFound(t *testing.T) {
	client, _, done := server(t, http.StatusNotFound, "")
	defer done()

	_, err := client.Fetch("nope")
	if !pixe.IsNotFound(err) {
		t.Errorf("expected a NotFound error, got %v", err)
	}
}

func TestClientServerError(t *testing.T) {
	client, _, done := server(t, http.StatusInternalServerError, "database on fire")
	defer done()

	_, err := client.List()
	if err == nil {
		t.Fatalf("server error not reported")
	}
	if !strings.Contains(err.Error(), "database on fire") {
		t.Errorf("response body missing from error: %v", err)
	}
}

func TestClientUpdateImage(t *testing.T) {
	client, calls, done := server(t, http.StatusOK, "{}")
	defer done()

	x := 42.0
	err := client.UpdateImage("b-1", "i-1", pixe.ImageUpdate{X: &x})
	if err != nil {
		t.Fatal(err)
	}

	c := (*calls)[0]
	if c.method != "PATCH" || c.path != "/api/v1/moodboards/b-1/images/i-1" {
		t.Errorf("unexpected request %v %v", c.method, c.path)
	}
	if c.body["x"] != 42.0 {
		t.Errorf("unexpected payload %v", c.body)
	}
	// nil fields are omitted from a partial update
	if _, ok := c.body["width"]; ok {
		t.Errorf("unset field present in payload")
	}
}

func TestClientCreateText(t *testing.T) {
	payload := `{"text": {"id": "server-1", "content": "New Text"}}`
	client, calls, done := server(t, http.StatusOK, payload)
	defer done()

	el := pixe.NewTextElement("b-1", pixe.Point{X: 10, Y: 20})
	created, err := client.CreateText("b-1", el)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "server-1" {
		t.Errorf("server id not adopted: %q", created.ID)
	}

	c := (*calls)[0]
	if c.method != "POST" || c.path != "/api/v1/moodboards/b-1/texts" {
		t.Errorf("unexpected request %v %v", c.method, c.path)
	}
}

func TestClientDelete(t *testing.T) {
	client, calls, done := server(t, http.StatusOK, "")
	defer done()

	if err := client.DeleteImage("b-1", "i-1"); err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteText("b-1", "t-1"); err != nil {
		t.Fatal(err)
	}

	if (*calls)[0].method != "DELETE" || (*calls)[1].path != "/api/v1/moodboards/b-1/texts/t-1" {
		t.Errorf("unexpected requests %v", *calls)
	}
}

func TestClientImportImage(t *testing.T) {
	payload := `{"image": {"id": "i-9", "image_url": "https://stored.example.com/i-9.png"}}`
	client, calls, done := server(t, http.StatusOK, payload)
	defer done()

	at := pixe.Rect{X: 1, Y: 2, W: 300, H: 200}
	img, err := client.ImportImage("b-1", "https://example.com/src.png", at)
	if err != nil {
		t.Fatal(err)
	}
	if img.ID != "i-9" {
		t.Errorf("unexpected element id %q", img.ID)
	}

	c := (*calls)[0]
	if c.path != "/api/v1/moodboards/b-1/images/import" {
		t.Errorf("unexpected path %v", c.path)
	}
	if c.body["image_url"] != "https://example.com/src.png" {
		t.Errorf("unexpected payload %v", c.body)
	}
	if c.body["width"] != 300.0 {
		t.Errorf("bounds missing from payload %v", c.body)
	}
}

func TestClientSaveDrawingLayer(t *testing.T) {
	client, calls, done := server(t, http.StatusOK, "")
	defer done()

	err := client.SaveDrawingLayer("b-1", "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatal(err)
	}

	c := (*calls)[0]
	if c.method != "PUT" || c.path != "/api/v1/moodboards/b-1/drawing-layer" {
		t.Errorf("unexpected request %v %v", c.method, c.path)
	}
	if c.body["canvas_drawing_layer"] != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected payload %v", c.body)
	}
}

func TestRepositoryImplementsStorage(t *testing.T) {
	client, _, done := server(t, http.StatusOK, `{"moodboards": []}`)
	defer done()

	var store pixe.Storage = NewRepository(client)
	boards, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(boards) != 0 {
		t.Errorf("unexpected boards %v", boards)
	}
}
