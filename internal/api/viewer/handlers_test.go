package viewer

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appviewer "github.com/codr1/poemgrid/internal/viewer"
	"github.com/codr1/poemgrid/internal/wordgrid"
)

func openSession(t *testing.T) (*appviewer.Sessions, *appviewer.Mount) {
	t.Helper()

	sessions := appviewer.NewSessions(nil, appviewer.MountOptions{Debounce: 10 * time.Millisecond})
	mount, err := sessions.Open(context.Background(), "primaries", wordgrid.Tokenize("red blue red"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { sessions.Close(mount.ID()) })
	return sessions, mount
}

func TestHandleViewport(t *testing.T) {
	sessions, mount := openSession(t)

	body := strings.NewReader(`{"width": 500, "dpr": 2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/viewer/primaries/viewport?session="+mount.ID(), body)
	req.SetPathValue(slugParam, "primaries")
	rec := httptest.NewRecorder()
	handleViewport(sessions, rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var resp viewportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SidePx != 450 {
		t.Fatalf("sidePx = %v, want 450", resp.SidePx)
	}
	if vp := mount.Viewport(); vp.WidthPx != 500 || vp.DevicePixelRatio != 2 {
		t.Fatalf("viewport = %+v", vp)
	}
}

func TestHandleViewportErrors(t *testing.T) {
	sessions, mount := openSession(t)

	tests := []struct {
		name       string
		slug       string
		session    string
		body       string
		wantStatus int
	}{
		{name: "missing_session", slug: "primaries", body: `{"width": 1}`, wantStatus: http.StatusBadRequest},
		{name: "malformed_session", slug: "primaries", session: "nope", body: `{"width": 1}`, wantStatus: http.StatusBadRequest},
		{name: "unknown_session", slug: "primaries", session: "0b5c6bd2-3c35-4b8e-9f6a-2f1f6a3d9c10", body: `{"width": 1}`, wantStatus: http.StatusNotFound},
		{name: "wrong_slug", slug: "pets", session: mount.ID(), body: `{"width": 1}`, wantStatus: http.StatusNotFound},
		{name: "bad_width", slug: "primaries", session: mount.ID(), body: `{"width": 0}`, wantStatus: http.StatusBadRequest},
		{name: "unknown_field", slug: "primaries", session: mount.ID(), body: `{"w": 10}`, wantStatus: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			target := "/api/v1/viewer/" + test.slug + "/viewport"
			if test.session != "" {
				target += "?session=" + test.session
			}
			req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(test.body))
			req.SetPathValue(slugParam, test.slug)
			rec := httptest.NewRecorder()
			handleViewport(sessions, rec, req)
			if rec.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, test.wantStatus)
			}
		})
	}
}

func TestHandleEventsStreamsCurrentFrame(t *testing.T) {
	sessions, mount := openSession(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/viewer/{slug}/events", func(w http.ResponseWriter, r *http.Request) {
		handleEvents(sessions, w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/viewer/primaries/events?session="+mount.ID(), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	eventLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read event line: %v", err)
	}
	if eventLine != "event: frame\n" {
		t.Fatalf("event line = %q", eventLine)
	}
	dataLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read data line: %v", err)
	}
	var frame struct {
		Seq    int64 `json:"seq"`
		Legend []struct {
			Label string `json:"label"`
		} `json:"legend"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(dataLine), "data: ")), &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Seq != 1 || len(frame.Legend) != 2 || frame.Legend[0].Label != "red" {
		t.Fatalf("frame = %+v", frame)
	}
}
