package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/notify"
)

var (
	event = bingo.Event{ID: "ev-1", Name: "Spring Bingo", ThreadID: "thread-1"}
	team  = bingo.Team{ID: "team-a", EventID: "ev-1", Name: "Alpha", ImageURL: "https://img/a.png", Points: 21}
	tile  = bingo.Tile{ID: "tile-0", Name: "Vorkath"}
)

func TestTaskCompleted(t *testing.T) {
	tests := []struct {
		medal bingo.Medal
		title string
		color int
	}{
		{bingo.MedalBronze, "Vorkath - Bronze Medal!", notify.ColorBronze},
		{bingo.MedalSilver, "Vorkath - Silver Medal!", notify.ColorSilver},
		{bingo.MedalGold, "Vorkath - Gold Medal!", notify.ColorGold},
	}
	for _, tt := range tests {
		t.Run(tt.medal.String(), func(t *testing.T) {
			n := notify.TaskCompleted(event, team, tile, tt.medal)
			if n.Title != tt.title {
				t.Errorf("title = %q, want %q", n.Title, tt.title)
			}
			if n.Color != tt.color {
				t.Errorf("color = %#x, want %#x", n.Color, tt.color)
			}
			if n.Kind != notify.KindTask || n.Channel != "thread-1" || n.TeamID != "team-a" {
				t.Errorf("routing = %+v", n)
			}
			if n.Author.Name != "Alpha" || n.Author.IconURL != "https://img/a.png" {
				t.Errorf("author = %+v", n.Author)
			}
			if len(n.Fields) != 2 || n.Fields[0].Value != "21" || n.Fields[1].Value != tt.medal.Title() {
				t.Errorf("fields = %+v", n.Fields)
			}
		})
	}

	n := notify.TaskCompleted(event, team, tile, bingo.MedalBronze)
	want := "The **Alpha** have completed a bronze task on Vorkath!"
	if n.Description != want {
		t.Errorf("description = %q, want %q", n.Description, want)
	}
}

func TestBingo(t *testing.T) {
	tests := []struct {
		count int
		medal bingo.Medal
		title string
		color int
	}{
		{1, bingo.MedalBronze, "Bronze Bingo!", notify.ColorSingleBingo},
		{2, bingo.MedalSilver, "Double Silver Bingo!", notify.ColorDoubleBingo},
		{3, bingo.MedalGold, "Multiple Gold Bingos!", notify.ColorMultipleBingo},
		{7, bingo.MedalGold, "Multiple Gold Bingos!", notify.ColorMultipleBingo},
		{0, bingo.MedalGold, "Bingo Anomaly", notify.ColorAnomaly},
	}
	for _, tt := range tests {
		n := notify.Bingo(event, team, tt.count, tt.medal)
		if n.Title != tt.title || n.Color != tt.color {
			t.Errorf("Bingo(%d, %s) = %q %#x, want %q %#x", tt.count, tt.medal, n.Title, n.Color, tt.title, tt.color)
		}
		if n.Kind != notify.KindBingo || len(n.Fields) != 3 {
			t.Errorf("Bingo(%d) kind=%s fields=%d", tt.count, n.Kind, len(n.Fields))
		}
	}

	n := notify.Bingo(event, team, 3, bingo.MedalSilver)
	if want := "The **Alpha** have completed 3 silver bingos!"; n.Description != want {
		t.Errorf("description = %q, want %q", n.Description, want)
	}
}

func TestBrokerPublisher(t *testing.T) {
	b := notify.NewBroker()
	teamCh := b.Subscribe(notify.TeamTopic("team-a"))
	eventCh := b.Subscribe(notify.EventTopic("ev-1"))
	otherCh := b.Subscribe(notify.TeamTopic("team-b"))
	t.Cleanup(func() {
		b.Unsubscribe(notify.TeamTopic("team-a"), teamCh)
		b.Unsubscribe(notify.EventTopic("ev-1"), eventCh)
		b.Unsubscribe(notify.TeamTopic("team-b"), otherCh)
	})

	n := notify.TaskCompleted(event, team, tile, bingo.MedalBronze)
	if err := (notify.BrokerPublisher{Broker: b}).Publish(context.Background(), n); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for name, ch := range map[string]chan []byte{"team": teamCh, "event": eventCh} {
		select {
		case data := <-ch:
			var got notify.Notification
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("%s: decode: %v", name, err)
			}
			if got.Title != n.Title {
				t.Errorf("%s: title = %q", name, got.Title)
			}
		default:
			t.Errorf("%s subscriber received nothing", name)
		}
	}
	select {
	case <-otherCh:
		t.Error("other team received a notification")
	default:
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := notify.NewBroker()
	ch := b.Subscribe("topic")
	defer b.Unsubscribe("topic", ch)

	var delivered int
	for i := 0; i < 100; i++ {
		delivered += b.Publish("topic", []byte("x"))
	}
	if delivered != cap(ch) {
		t.Errorf("delivered = %d, want %d", delivered, cap(ch))
	}
	if n := b.Publish("nobody", []byte("x")); n != 0 {
		t.Errorf("publish without subscribers = %d", n)
	}
}

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestRedisPublisher(t *testing.T) {
	fr := &fakeRedis{}
	p := notify.NewRedisPublisher(fr, "bingo:notifications")

	n := notify.Bingo(event, team, 1, bingo.MedalBronze)
	if err := p.Publish(context.Background(), n); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fr.channel != "bingo:notifications" {
		t.Errorf("channel = %q", fr.channel)
	}
	var got notify.Notification
	if err := json.Unmarshal(fr.payload, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Channel != "thread-1" || got.Kind != notify.KindBingo {
		t.Errorf("payload = %+v", got)
	}

	fr.err = errors.New("connection refused")
	if err := p.Publish(context.Background(), n); err == nil {
		t.Error("expected redis error")
	}
}

type publisherFunc func(context.Context, notify.Notification) error

func (f publisherFunc) Publish(ctx context.Context, n notify.Notification) error { return f(ctx, n) }

func TestFanoutContinuesAfterFailure(t *testing.T) {
	errDown := errors.New("down")
	var calls int
	f := notify.Fanout{
		publisherFunc(func(context.Context, notify.Notification) error { calls++; return errDown }),
		publisherFunc(func(context.Context, notify.Notification) error { calls++; return nil }),
	}

	err := f.Publish(context.Background(), notify.Notification{})
	if !errors.Is(err, errDown) {
		t.Errorf("err = %v, want %v", err, errDown)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
