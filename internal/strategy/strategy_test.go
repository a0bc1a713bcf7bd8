package strategy

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"criollotv/internal/match"
)

const page = "https://www.5900.tv/en-vivo"

func loadTestDoc(t *testing.T, filename string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile("testdata/" + filename)
	if err != nil {
		t.Fatalf("reading test fixture %s: %v", filename, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("parsing test fixture %s: %v", filename, err)
	}
	return doc
}

// fixtureFetcher serves the same fixture for every URL and counts calls.
type fixtureFetcher struct {
	body  []byte
	err   error
	calls int
}

func newFixtureFetcher(t *testing.T, filename string) *fixtureFetcher {
	t.Helper()
	data, err := os.ReadFile("testdata/" + filename)
	if err != nil {
		t.Fatalf("reading test fixture %s: %v", filename, err)
	}
	return &fixtureFetcher{body: data}
}

func (f *fixtureFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

type fakeLive struct {
	live  map[string]string
	calls []string
}

func (f *fakeLive) Resolve(_ context.Context, ref string) (string, bool) {
	f.calls = append(f.calls, ref)
	id, ok := f.live[ref]
	return id, ok
}

type countingStrategy struct {
	name  string
	id    match.Identifier
	err   error
	calls int
}

func (s *countingStrategy) Name() string { return s.name }

func (s *countingStrategy) Extract(context.Context, string) (match.Identifier, error) {
	s.calls++
	return s.id, s.err
}

func TestParseMetaTags(t *testing.T) {
	tests := []struct {
		fixture  string
		wantKind match.Kind
		want     string
		wantErr  error
	}{
		{"meta_video.html", match.Video, "mtaVid00001", nil},
		{"meta_secure.html", match.Video, "secVid00001", nil},
		{"meta_channel.html", match.Channel, "UCj6PcyLvpnIRT_2W_mwa9Aw", nil},
		{"iframe.html", 0, "", ErrNoMatch},
		{"empty.html", 0, "", ErrNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			got, err := parseMetaTags(loadTestDoc(t, tt.fixture))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("parseMetaTags error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Kind != tt.wantKind || got.Value != tt.want {
				t.Errorf("parseMetaTags = %v %q, want %v %q", got.Kind, got.Value, tt.wantKind, tt.want)
			}
		})
	}
}

func TestParseFrames(t *testing.T) {
	got, err := parseFrames(loadTestDoc(t, "iframe.html"))
	if err != nil {
		t.Fatalf("parseFrames error: %v", err)
	}
	// Non-YouTube frames are skipped and the first YouTube frame wins.
	if got.Value != "frmVid00001" {
		t.Errorf("parseFrames = %q, want frmVid00001", got.Value)
	}

	if _, err := parseFrames(loadTestDoc(t, "script.html")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("parseFrames on page without frames: err = %v, want ErrNoMatch", err)
	}
}

func TestRawTextPrefersVideoOverFooterChannel(t *testing.T) {
	s := NewRawText(newFixtureFetcher(t, "script.html"))
	got, err := s.Extract(context.Background(), page)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !got.IsVideo() || got.Value != "scrVid00001" {
		t.Errorf("Extract = %+v, want video scrVid00001", got)
	}
}

func TestStrategyTransportErrorIsNotNoMatch(t *testing.T) {
	f := &fixtureFetcher{err: errors.New("connection refused")}
	for _, s := range []Strategy{NewMetaTag(f), NewFrame(f), NewRawText(f)} {
		_, err := s.Extract(context.Background(), page)
		if err == nil {
			t.Fatalf("%s: expected error", s.Name())
		}
		if errors.Is(err, ErrNoMatch) {
			t.Errorf("%s: transport failure reported as ErrNoMatch", s.Name())
		}
	}
}

func TestChainShortCircuitsOnMeta(t *testing.T) {
	f := newFixtureFetcher(t, "meta_video.html")
	chain := Default(f, &fakeLive{}, zerolog.Nop())

	got, ok := chain.Resolve(context.Background(), page)
	if !ok || got != "mtaVid00001" {
		t.Fatalf("Resolve = %q, %v; want mtaVid00001, true", got, ok)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (frame and text strategies must not run)", f.calls)
	}
}

func TestChainOrder(t *testing.T) {
	first := &countingStrategy{name: "first", err: ErrNoMatch}
	second := &countingStrategy{name: "second", id: match.Identifier{Kind: match.Video, Value: "secondVid01"}}
	third := &countingStrategy{name: "third", id: match.Identifier{Kind: match.Video, Value: "thirdVid001"}}

	chain := NewChain(nil, zerolog.Nop(), first, second, third)
	got, ok := chain.Resolve(context.Background(), page)

	if !ok || got != "secondVid01" {
		t.Fatalf("Resolve = %q, %v; want secondVid01", got, ok)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Errorf("calls = %d/%d/%d, want 1/1/0", first.calls, second.calls, third.calls)
	}
}

func TestChainFailureDoesNotAbortSiblings(t *testing.T) {
	broken := &countingStrategy{name: "broken", err: errors.New("timeout")}
	ok2 := &countingStrategy{name: "ok", id: match.Identifier{Kind: match.Video, Value: "afterErr001"}}

	got, ok := NewChain(nil, zerolog.Nop(), broken, ok2).Resolve(context.Background(), page)
	if !ok || got != "afterErr001" {
		t.Errorf("Resolve = %q, %v; want afterErr001", got, ok)
	}
}

func TestChainHandsChannelToLive(t *testing.T) {
	live := &fakeLive{live: map[string]string{"UCj6PcyLvpnIRT_2W_mwa9Aw": "abc12345678"}}
	chain := Default(newFixtureFetcher(t, "meta_channel.html"), live, zerolog.Nop())

	got, ok := chain.Resolve(context.Background(), page)
	if !ok || got != "abc12345678" {
		t.Fatalf("Resolve = %q, %v; want abc12345678", got, ok)
	}
	if len(live.calls) != 1 || live.calls[0] != "UCj6PcyLvpnIRT_2W_mwa9Aw" {
		t.Errorf("live calls = %v", live.calls)
	}
}

func TestChainContinuesWhenChannelNotLive(t *testing.T) {
	channel := &countingStrategy{name: "channel", id: match.Identifier{Kind: match.Handle, Value: "offline"}}
	video := &countingStrategy{name: "video", id: match.Identifier{Kind: match.Video, Value: "nextVid0001"}}
	live := &fakeLive{}

	got, ok := NewChain(live, zerolog.Nop(), channel, video).Resolve(context.Background(), page)
	if !ok || got != "nextVid0001" {
		t.Errorf("Resolve = %q, %v; want nextVid0001", got, ok)
	}
	if len(live.calls) != 1 {
		t.Errorf("live calls = %d, want 1", len(live.calls))
	}
}

func TestChainAllFail(t *testing.T) {
	f := &fixtureFetcher{err: errors.New("network down")}
	got, ok := Default(f, &fakeLive{}, zerolog.Nop()).Resolve(context.Background(), page)
	if ok || got != "" {
		t.Errorf("Resolve = %q, %v; want no result", got, ok)
	}
	if f.calls != 3 {
		t.Errorf("fetch calls = %d, want 3", f.calls)
	}
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	s := &countingStrategy{name: "never", id: match.Identifier{Kind: match.Video, Value: "neverVid001"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := NewChain(nil, zerolog.Nop(), s).Resolve(ctx, page); ok {
		t.Error("Resolve should not match after cancellation")
	}
	if s.calls != 0 {
		t.Errorf("strategy ran %d times after cancellation", s.calls)
	}
}

type fakeDirectory struct {
	calls int
}

func (d *fakeDirectory) Resolve(context.Context, string) (string, bool) {
	d.calls++
	return "dirVid00001", true
}

func TestDirectoryStrategyDomains(t *testing.T) {
	dir := &fakeDirectory{}
	s := NewDirectory(dir, []string{"tdtchannels"})

	if _, err := s.Extract(context.Background(), page); !errors.Is(err, ErrNoMatch) {
		t.Errorf("non-directory page: err = %v, want ErrNoMatch", err)
	}
	if dir.calls != 0 {
		t.Fatalf("directory consulted for a non-directory page")
	}

	got, err := s.Extract(context.Background(), "https://www.tdtchannels.com/canal/La1")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !got.IsVideo() || got.Value != "dirVid00001" {
		t.Errorf("Extract = %+v, want video dirVid00001", got)
	}
}

func TestDirectoryIsLastResort(t *testing.T) {
	dir := &fakeDirectory{}
	f := newFixtureFetcher(t, "empty.html")
	chain := Default(f, &fakeLive{}, zerolog.Nop(), NewDirectory(dir, []string{"tdtchannels"}))

	got, ok := chain.Resolve(context.Background(), "https://www.tdtchannels.com/canal/La1")
	if !ok || got != "dirVid00001" {
		t.Fatalf("Resolve = %q, %v; want dirVid00001", got, ok)
	}
	if f.calls != 3 || dir.calls != 1 {
		t.Errorf("page fetches = %d, directory calls = %d; want 3 and 1", f.calls, dir.calls)
	}
}
