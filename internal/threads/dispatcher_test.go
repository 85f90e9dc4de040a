package threads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gamedaybot/internal/schedule"
	"gamedaybot/pkg/logx"
)

const (
	threadsChannel = "chan-threads"
	generalChannel = "chan-general"
)

type fakeChat struct {
	channels    map[string]bool
	threadNames []string
	listErr     error
	createErr   error

	created  []ThreadRef
	messages map[string][]string
	nextID   int
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		channels: map[string]bool{threadsChannel: true, generalChannel: true},
		messages: make(map[string][]string),
	}
}

func (f *fakeChat) HasChannel(_ context.Context, id string) bool { return f.channels[id] }

func (f *fakeChat) ListThreadNames(_ context.Context, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.threadNames...), nil
}

func (f *fakeChat) CreateThread(_ context.Context, _ string, name string) (ThreadRef, error) {
	if f.createErr != nil {
		return ThreadRef{}, f.createErr
	}
	f.nextID++
	ref := ThreadRef{ID: fmt.Sprintf("thread-%d", f.nextID), Name: name}
	f.created = append(f.created, ref)
	f.threadNames = append(f.threadNames, name)
	return ref, nil
}

func (f *fakeChat) SendMessage(_ context.Context, channelID, content string) error {
	f.messages[channelID] = append(f.messages[channelID], content)
	return nil
}

type staticSource struct{ games []schedule.Game }

func (s staticSource) FetchSchedule(context.Context, schedule.Sport) ([]schedule.Game, error) {
	return s.games, nil
}

var footballSport = schedule.Sport{
	Key:         "football",
	DisplayName: "Football",
	Emoji:       "\U0001F3C8",
	Path:        "football/college-football",
}

func todaysGame(id, opponent string) schedule.Game {
	return schedule.Game{
		ID:   id,
		Name: "Kansas State Wildcats at " + opponent,
		Date: time.Now().Add(2 * time.Hour),
		Competitors: []schedule.Competitor{
			{DisplayName: opponent, Abbreviation: "OPP", HomeAway: "home"},
			{DisplayName: "Kansas State Wildcats", Abbreviation: "KSU", HomeAway: "away"},
		},
	}
}

func newTestDispatcher(t *testing.T, chat ChatClient, games ...schedule.Game) (*Dispatcher, *schedule.Store) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	team := schedule.TeamIdentity{Name: "Kansas State", Abbreviation: "KSU"}
	store := schedule.NewStore(staticSource{games: games}, []schedule.Sport{footballSport}, team, loc, logx.Nop())
	store.Refresh(context.Background(), footballSport)

	d := NewDispatcher(chat, store, Config{
		GameThreadsChannelID: threadsChannel,
		GeneralChannelID:     generalChannel,
	}, logx.Nop())
	return d, store
}

func TestCreateGameThreadFullFlow(t *testing.T) {
	t.Parallel()

	chat := newFakeChat()
	game := todaysGame("g1", "Iowa State Cyclones")
	d, store := newTestDispatcher(t, chat, game)

	if !d.CreateGameThread(context.Background(), game, footballSport) {
		t.Fatal("expected thread to be created")
	}

	if len(chat.created) != 1 {
		t.Fatalf("created %d threads, want 1", len(chat.created))
	}
	wantTitle := "Football Game 1: Iowa State Cyclones"
	if chat.created[0].Name != wantTitle {
		t.Fatalf("title = %q, want %q", chat.created[0].Name, wantTitle)
	}

	if got := store.GameCounter(footballSport); got != 1 {
		t.Fatalf("counter = %d, want 1", got)
	}

	details := chat.messages[chat.created[0].ID]
	if len(details) != 1 {
		t.Fatalf("thread messages = %d, want 1", len(details))
	}
	if !strings.Contains(details[0], "Kansas State @ Iowa State Cyclones") {
		t.Fatalf("details missing away-game matchup line:\n%s", details[0])
	}

	notes := chat.messages[generalChannel]
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	if !strings.Contains(notes[0], wantTitle) || !strings.Contains(notes[0], "<#"+chat.created[0].ID+">") {
		t.Fatalf("notification missing title or thread mention:\n%s", notes[0])
	}
}

func TestCheckTwiceCreatesOnce(t *testing.T) {
	t.Parallel()

	chat := newFakeChat()
	game := todaysGame("g1", "Iowa State Cyclones")
	d, _ := newTestDispatcher(t, chat, game)

	if got := d.CheckAndCreateTodayThreads(context.Background()); got != 1 {
		t.Fatalf("first check created %d, want 1", got)
	}
	if got := d.CheckAndCreateTodayThreads(context.Background()); got != 0 {
		t.Fatalf("second check created %d, want 0", got)
	}
	if len(chat.created) != 1 {
		t.Fatalf("threads created = %d, want 1", len(chat.created))
	}
	if got := len(chat.messages[generalChannel]); got != 1 {
		t.Fatalf("notifications = %d, want 1", got)
	}
}

func TestExistingTitleSkipsCreation(t *testing.T) {
	t.Parallel()

	chat := newFakeChat()
	game := todaysGame("g1", "Iowa State Cyclones")
	d, store := newTestDispatcher(t, chat, game)

	// The title the dispatcher will derive is already present, e.g. created
	// before a restart. Archived and active names are listed together.
	chat.threadNames = []string{"Football Game 1: Iowa State Cyclones"}

	if d.CreateGameThread(context.Background(), game, footballSport) {
		t.Fatal("expected creation to be skipped")
	}
	if len(chat.created) != 0 {
		t.Fatalf("threads created = %d, want 0", len(chat.created))
	}
	if got := len(chat.messages[generalChannel]); got != 0 {
		t.Fatalf("notifications = %d, want 0", got)
	}
	if got := store.GameCounter(footballSport); got != 0 {
		t.Fatalf("counter = %d, want 0 when thread already exists", got)
	}
}

func TestListingFailureFallsBackToCreation(t *testing.T) {
	t.Parallel()

	chat := newFakeChat()
	chat.listErr = errors.New("api unavailable")
	game := todaysGame("g1", "Iowa State Cyclones")
	d, _ := newTestDispatcher(t, chat, game)

	if !d.CreateGameThread(context.Background(), game, footballSport) {
		t.Fatal("expected creation despite listing failure")
	}
}

func TestUnresolvableOpponentSkipsGame(t *testing.T) {
	t.Parallel()

	chat := newFakeChat()
	bad := schedule.Game{
		ID:   "g1",
		Date: time.Now(),
		Competitors: []schedule.Competitor{
			{DisplayName: "Kansas Jayhawks", Abbreviation: "KU", HomeAway: "home"},
			{DisplayName: "Baylor Bears", Abbreviation: "BAY", HomeAway: "away"},
		},
	}
	d, store := newTestDispatcher(t, chat, bad)

	if d.CreateGameThread(context.Background(), bad, footballSport) {
		t.Fatal("expected creation to fail")
	}
	if len(chat.created) != 0 {
		t.Fatal("thread created for unresolvable game")
	}
	if got := store.GameCounter(footballSport); got != 0 {
		t.Fatalf("counter = %d, want 0 when opponent unresolved", got)
	}
}

func TestMissingChannelAbortsBeforeCounter(t *testing.T) {
	t.Parallel()

	chat := newFakeChat()
	chat.channels[generalChannel] = false
	game := todaysGame("g1", "Iowa State Cyclones")
	d, store := newTestDispatcher(t, chat, game)

	if d.CreateGameThread(context.Background(), game, footballSport) {
		t.Fatal("expected creation to fail")
	}
	if got := store.GameCounter(footballSport); got != 0 {
		t.Fatalf("counter = %d, want 0 when channels unavailable", got)
	}
}

func TestCreateErrorIsolatedPerGame(t *testing.T) {
	t.Parallel()

	chat := newFakeChat()
	chat.createErr = errors.New("forbidden")
	game := todaysGame("g1", "Iowa State Cyclones")
	d, _ := newTestDispatcher(t, chat, game)

	if got := d.CheckAndCreateTodayThreads(context.Background()); got != 0 {
		t.Fatalf("created = %d, want 0", got)
	}

	// Once the API recovers the next scheduled check succeeds.
	chat.createErr = nil
	if got := d.CheckAndCreateTodayThreads(context.Background()); got != 1 {
		t.Fatalf("created after recovery = %d, want 1", got)
	}
}

func TestThreadTitle(t *testing.T) {
	t.Parallel()

	got := ThreadTitle(footballSport, 7, "Colorado Buffaloes")
	if got != "Football Game 7: Colorado Buffaloes" {
		t.Fatalf("title = %q", got)
	}
}
