package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sanonone/meshdex/pkg/core/mesh"
	"github.com/sanonone/meshdex/pkg/engine"
)

// newTestServer builds a server over a small triangulated grid and exposes
// it through httptest.
func newTestServer(t *testing.T, authToken string, withMesh bool) (*Server, *httptest.Server) {
	t.Helper()

	eng := engine.Open(engine.DefaultOptions())
	if withMesh {
		var nodes []mesh.Node
		id := uint32(1)
		for j := 0; j <= 4; j++ {
			for i := 0; i <= 4; i++ {
				nodes = append(nodes, mesh.Node{ID: id, X: float64(i), Y: float64(j), Z: -1})
				id++
			}
		}
		nid := func(i, j int) uint32 { return uint32(j*5 + i + 1) }
		var elems []mesh.Element
		eid := uint32(1)
		for j := 0; j < 4; j++ {
			for i := 0; i < 4; i++ {
				elems = append(elems,
					mesh.Element{ID: eid, Nodes: [3]uint32{nid(i, j), nid(i+1, j), nid(i, j+1)}},
					mesh.Element{ID: eid + 1, Nodes: [3]uint32{nid(i+1, j), nid(i+1, j+1), nid(i, j+1)}},
				)
				eid += 2
			}
		}
		m, err := mesh.New(nodes, elems)
		if err != nil {
			t.Fatal(err)
		}
		if err := eng.SetMesh(m); err != nil {
			t.Fatal(err)
		}
	}

	s := NewServer(eng, Config{Addr: ":0", AuthToken: authToken})
	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHealthzAndAuth(t *testing.T) {
	_, ts := newTestServer(t, "test-secret-token", false)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("healthz expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/mesh/info")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 401 {
		t.Errorf("protected expected 401, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/mesh/info", nil)
	req.Header.Add("Authorization", "Bearer test-secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	// No mesh loaded yet: authenticated but 409.
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("mesh/info without mesh expected 409, got %d", resp.StatusCode)
	}
}

func TestPointQueries(t *testing.T) {
	_, ts := newTestServer(t, "", true)

	resp, err := http.Get(ts.URL + "/query/nearest-node?x=1.2&y=2.9")
	if err != nil {
		t.Fatal(err)
	}
	var node NodeDTO
	decodeBody(t, resp, &node)
	if node.X != 1 || node.Y != 3 {
		t.Errorf("nearest node = (%g, %g), want (1, 3)", node.X, node.Y)
	}

	resp, err = http.Get(ts.URL + "/query/nearest-node?x=abc&y=0")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad coordinate expected 400, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/query/containing-element?x=0.3&y=0.3")
	if err != nil {
		t.Fatal(err)
	}
	var el ElementDTO
	decodeBody(t, resp, &el)
	if el.ID == 0 {
		t.Error("containing element not found for an interior point")
	}

	resp, err = http.Get(ts.URL + "/query/containing-element?x=100&y=100")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("outside point expected 404, got %d", resp.StatusCode)
	}
}

func TestRangeQueries(t *testing.T) {
	_, ts := newTestServer(t, "", true)

	body, _ := json.Marshal(CircleQueryRequest{X: 2, Y: 2, Radius: 1.1})
	resp, err := http.Post(ts.URL+"/query/nodes-in-circle", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	var nodesResp struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &nodesResp)
	if nodesResp.Count != 5 {
		t.Errorf("nodes in circle = %d, want 5", nodesResp.Count)
	}

	body, _ = json.Marshal(RectangleQueryRequest{Left: 0, Right: 4, Bottom: 0, Top: 4})
	resp, err = http.Post(ts.URL+"/query/elements-in-rectangle", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	var elemsResp struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &elemsResp)
	if elemsResp.Count != 32 {
		t.Errorf("elements in full rectangle = %d, want 32", elemsResp.Count)
	}

	resp, err = http.Post(ts.URL+"/query/elements-in-polygon", "application/json", bytes.NewReader([]byte(`{"vertices":[{"X":0,"Y":0}]}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("degenerate polygon expected 400, got %d", resp.StatusCode)
	}
}

func TestDepthRetrieval(t *testing.T) {
	_, ts := newTestServer(t, "", true)

	resp, err := http.Get(ts.URL + "/query/elements-through-depth?depth=1")
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Levels []DepthLevelDTO `json:"levels"`
	}
	decodeBody(t, resp, &out)

	total := 0
	for _, lvl := range out.Levels {
		if len(lvl.Elevations) != len(lvl.Elements) {
			t.Errorf("level %d: %d elevations for %d elements", lvl.Depth, len(lvl.Elevations), len(lvl.Elements))
		}
		total += len(lvl.Elements)
	}
	if total != 32 {
		t.Errorf("depth retrieval covered %d elements, want 32", total)
	}

	resp, err = http.Get(ts.URL + "/query/elements-through-depth?depth=-1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative depth expected 400, got %d", resp.StatusCode)
	}
}

func TestSelectionWorkflow(t *testing.T) {
	_, ts := newTestServer(t, "", true)

	resp, err := http.Post(ts.URL+"/selections", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var sel SelectionResponse
	decodeBody(t, resp, &sel)
	if sel.ID == "" {
		t.Fatal("selection id missing")
	}

	apply := SelectionApplyRequest{
		Shape:     "rectangle",
		Rectangle: &RectangleQueryRequest{Left: 0, Right: 4, Bottom: 0, Top: 4},
	}
	body, _ := json.Marshal(apply)
	resp, err = http.Post(ts.URL+"/selections/"+sel.ID+"/actions/apply", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &sel)
	if sel.Size != 32 {
		t.Fatalf("selection size = %d, want 32", sel.Size)
	}

	resp, err = http.Post(ts.URL+"/selections/"+sel.ID+"/actions/extract-boundary", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var b BoundaryResponse
	decodeBody(t, resp, &b)
	if len(b.Outer) != 16 {
		t.Errorf("outer loop has %d nodes, want 16", len(b.Outer))
	}
	if len(b.Inner) != 0 {
		t.Errorf("full grid produced %d holes", len(b.Inner))
	}

	resp, err = http.Post(ts.URL+"/selections/"+sel.ID+"/actions/export", "application/json", bytes.NewReader([]byte(`{"title":"patch"}`)))
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("export expected 200, got %d: %s", resp.StatusCode, raw)
	}
	if !bytes.HasPrefix(raw, []byte("patch\n")) {
		t.Errorf("export output does not start with the title:\n%s", raw)
	}

	req, _ := http.NewRequest("DELETE", ts.URL+"/selections/"+sel.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/selections/"+sel.ID+"/actions/extract-boundary", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("extract on deleted selection expected 404, got %d", resp.StatusCode)
	}
}

func TestExportFailureSendsCleanError(t *testing.T) {
	_, ts := newTestServer(t, "", true)

	resp, err := http.Post(ts.URL+"/selections", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var sel SelectionResponse
	decodeBody(t, resp, &sel)

	// Exporting an empty selection fails; the response must be a JSON error
	// with an error status, never a 200 carrying partial grid text.
	resp, err = http.Post(ts.URL+"/selections/"+sel.ID+"/actions/export", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("failed export expected 422, got %d: %s", resp.StatusCode, raw)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("failed export content type = %q", ct)
	}
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &errBody); err != nil || errBody.Error == "" {
		t.Errorf("failed export body is not a JSON error: %s", raw)
	}
}

func TestAsyncMeshLoadTask(t *testing.T) {
	_, ts := newTestServer(t, "", false)

	// A bad path must surface through the task, not the load request.
	body, _ := json.Marshal(MeshLoadRequest{Path: "/does/not/exist/fort.14"})
	resp, err := http.Post(ts.URL+"/mesh/actions/load", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("load expected 202, got %d", resp.StatusCode)
	}
	var accepted struct {
		TaskID string `json:"task_id"`
	}
	decodeBody(t, resp, &accepted)

	var task Task
	for range 50 {
		resp, err = http.Get(ts.URL + "/tasks/" + accepted.TaskID)
		if err != nil {
			t.Fatal(err)
		}
		decodeBody(t, resp, &task)
		if task.Status == TaskStatusFailed || task.Status == TaskStatusCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if task.Status != TaskStatusFailed {
		t.Fatalf("task status = %s, want failed", task.Status)
	}
	if task.Error == "" {
		t.Error("failed task carries no error message")
	}

	resp, err = http.Get(ts.URL + "/tasks/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown task expected 404, got %d", resp.StatusCode)
	}
}
