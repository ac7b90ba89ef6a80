package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/radieske/prediction-league/pkg/contracts/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func subscribe(t *testing.T, conn *websocket.Conn, tournamentID string) {
	t.Helper()
	if err := conn.WriteJSON(ClientMsg{Type: "subscribe", TournamentID: tournamentID}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	var ack map[string]string
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ack); err != nil || ack["type"] != "subscribed" {
		t.Fatalf("subscribe ack = %v, %v", ack, err)
	}
}

func TestBroadcastReachesOnlyTournamentSubscribers(t *testing.T) {
	hub := NewHub(AllowOrigins([]string{"*"}), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	fan := dial(t, srv)
	subscribe(t, fan, "t-1")
	bystander := dial(t, srv)
	subscribe(t, bystander, "t-2")

	if hub.Subscribers("t-1") != 1 {
		t.Fatalf("Subscribers(t-1) = %d", hub.Subscribers("t-1"))
	}

	home, away := 2, 1
	payload, _ := json.Marshal(events.MatchEvent{
		Type: events.TypeMatchFinalized, MatchID: "m-1", TournamentID: "t-1",
		HomeGoals: &home, AwayGoals: &away,
	})
	if err := Dispatch(hub, payload); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var upd FeedUpdate
	_ = fan.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := fan.ReadJSON(&upd); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if upd.TournamentID != "t-1" || upd.Event.MatchID != "m-1" || *upd.Event.HomeGoals != 2 {
		t.Errorf("update = %+v", upd)
	}

	_ = bystander.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if err := bystander.ReadJSON(&upd); err == nil {
		t.Errorf("subscriber of another tournament received %+v", upd)
	}
}

func TestPingAndDisconnect(t *testing.T) {
	hub := NewHub(AllowOrigins([]string{"*"}), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteJSON(ClientMsg{Type: "ping"}); err != nil {
		t.Fatalf("ping: %v", err)
	}
	var pong map[string]string
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&pong); err != nil || pong["type"] != "pong" {
		t.Fatalf("pong = %v, %v", pong, err)
	}

	subscribe(t, conn, "t-9")
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers("t-9") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed connection still subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatchRejectsGarbage(t *testing.T) {
	if err := Dispatch(NewHub(nil, nil), []byte("{not json")); err == nil {
		t.Error("Dispatch(garbage) should fail")
	}
}

func TestAllowOrigins(t *testing.T) {
	check := AllowOrigins([]string{"https://bolao.example.com"})
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	if !check(req("https://BOLAO.example.com")) {
		t.Error("configured origin rejected")
	}
	if check(req("https://evil.example.com")) {
		t.Error("unknown origin accepted")
	}
	if !check(req("")) {
		t.Error("non-browser client without Origin rejected")
	}
	if !AllowOrigins([]string{"*"})(req("https://anything")) {
		t.Error("wildcard should accept any origin")
	}
}
