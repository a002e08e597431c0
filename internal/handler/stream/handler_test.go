package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/logging"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/model/chat"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/advisor"
	chatservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/chat"
)

type fakeAsker struct {
	reply advisor.Reply
	err   error
}

func (f fakeAsker) Ask(_ context.Context, sessionID, _ string) (advisor.Reply, error) {
	if f.err != nil {
		return advisor.Reply{}, f.err
	}
	r := f.reply
	r.SessionID = sessionID
	return r, nil
}

func setup(t *testing.T, asker Asker) (*chi.Mux, chat.Session) {
	t.Helper()
	chatSvc := chatservice.NewService(advisory.English)
	session, err := chatSvc.CreateSession(context.Background(), "Ludhiana", "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	r := chi.NewRouter()
	New(asker, chatSvc, logging.Discard()).RegisterRoutes(r)
	return r, session
}

func readEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var events []StreamResponse
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev StreamResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestStreamEmitsEventSequence(t *testing.T) {
	r, session := setup(t, fakeAsker{reply: advisor.Reply{
		Intent: "weather",
		Text:   "25°C, 70% humidity, 100mm rain",
		Crop:   advisory.Pulses,
	}})

	req := httptest.NewRequest(http.MethodGet, "/stream/"+session.ID+"?message=rain", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	events := readEvents(t, resp.Body.String())
	var names []string
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	if strings.Join(names, ",") != "start,intent,message,end" {
		t.Fatalf("unexpected events %v", names)
	}
	if !strings.Contains(events[1].Content, `"intent":"weather"`) {
		t.Fatalf("unexpected intent payload %q", events[1].Content)
	}
	if events[2].Content != "25°C, 70% humidity, 100mm rain" || !events[3].Finished {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestStreamReportsAskFailure(t *testing.T) {
	r, session := setup(t, fakeAsker{err: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/stream/"+session.ID+"?message=rain", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	events := readEvents(t, resp.Body.String())
	if len(events) != 2 || events[1].Event != "error" || events[1].Error != "boom" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestStreamRejectsBadRequests(t *testing.T) {
	r, session := setup(t, fakeAsker{})

	cases := map[string]int{
		"/stream/" + session.ID:          http.StatusBadRequest,
		"/stream/missing?message=hello": http.StatusNotFound,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, resp.Code)
		}
	}
}
