package ws

import (
	"encoding/json"
	"testing"
)

func TestHubPublishReachesOnlyMatchSubscribers(t *testing.T) {
	hub := NewHub()

	a := &Client{PlayerKey: "a", MatchID: "m1", Send: make(chan []byte, 4)}
	b := &Client{PlayerKey: "b", MatchID: "m1", Send: make(chan []byte, 4)}
	other := &Client{PlayerKey: "c", MatchID: "m2", Send: make(chan []byte, 4)}

	hub.Subscribe("m1", a)
	hub.Subscribe("m1", b)
	hub.Subscribe("m2", other)

	hub.Publish("m1", "match_joined", map[string]string{"opponent": "b"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			var ev Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Type != "match_joined" || ev.MatchID != "m1" {
				t.Fatalf("event = %+v", ev)
			}
		default:
			t.Fatalf("client %s got no event", c.PlayerKey)
		}
	}

	select {
	case <-other.Send:
		t.Fatal("subscriber of another match received the event")
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	c := &Client{PlayerKey: "a", MatchID: "m1", Send: make(chan []byte, 1)}

	hub.Subscribe("m1", c)
	if hub.Subscribers("m1") != 1 {
		t.Fatalf("subscribers = %d", hub.Subscribers("m1"))
	}

	hub.Unsubscribe(c)
	if hub.Subscribers("m1") != 0 {
		t.Fatalf("subscribers after unsubscribe = %d", hub.Subscribers("m1"))
	}

	hub.Publish("m1", "match_settled", nil)
	select {
	case <-c.Send:
		t.Fatal("unsubscribed client received event")
	default:
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := &Client{PlayerKey: "a", MatchID: "m1", Send: make(chan []byte, 1)}
	hub.Subscribe("m1", c)

	hub.Publish("m1", "one", nil)
	hub.Publish("m1", "two", nil) // dropped, must not block

	var ev Event
	if err := json.Unmarshal(<-c.Send, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != "one" {
		t.Fatalf("got %q", ev.Type)
	}
}
