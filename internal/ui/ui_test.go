package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"criollotv/internal/media"
)

func TestBuildInput(t *testing.T) {
	got := buildInput([]string{"TN", "C5N\tdup", "multi\nline"})
	want := "0\tTN\n1\tC5N dup\n2\tmulti line\n"
	if got != want {
		t.Errorf("buildInput() = %q, want %q", got, want)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		out     string
		want    int
		wantErr bool
	}{
		{"1\tC5N\n", 1, false},
		{"0\tTN", 0, false},
		{"", -1, true},
		{"x\tTN", -1, true},
		{"5\tTN", -1, true},
	}
	for _, tt := range tests {
		got, err := parseSelection(tt.out, 3)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSelection(%q) = %d, %v; want %d, err %v", tt.out, got, err, tt.want, tt.wantErr)
		}
	}

	if _, err := parseSelection("  \n", 3); !errors.Is(err, ErrCancelled) {
		t.Errorf("empty selection error = %v, want ErrCancelled", err)
	}
}

func testSections() []media.Section {
	return []media.Section{
		{Name: "Noticias en Vivo", Channels: []media.ChannelConfig{
			{Name: "TN", Method: media.YouTubeChannel, Enabled: true},
			{Name: "Crónica TV", Method: media.YouTubeChannel, Enabled: true},
			{Name: "Canal Viejo", Enabled: false},
		}},
		{Name: "Dibujos Animados", Channels: []media.ChannelConfig{
			{Name: "Cartoon Network", Method: media.YouTubeChannel, Enabled: true},
		}},
	}
}

func TestFilter(t *testing.T) {
	if got := Filter(testSections(), ""); len(got) != 2 {
		t.Errorf("empty filter kept %d sections, want 2", len(got))
	}

	got := Filter(testSections(), "cronica")
	if len(got) != 1 || len(got[0].Channels) != 1 || got[0].Channels[0].Name != "Crónica TV" {
		t.Errorf("Filter(cronica) = %+v", got)
	}

	got = Filter(testSections(), "ctn")
	if len(got) != 1 || got[0].Name != "Dibujos Animados" {
		t.Errorf("Filter(ctn) = %+v", got)
	}

	if got := Filter(testSections(), "zzz"); len(got) != 0 {
		t.Errorf("Filter(zzz) = %+v, want none", got)
	}
}

func TestPrintSectionsPlain(t *testing.T) {
	var buf bytes.Buffer
	PrintSections(&buf, testSections(), false)
	out := buf.String()

	for _, want := range []string{
		"Noticias en Vivo\n",
		"  TN           youtube_channel\n",
		"  Canal Viejo  disabled\n",
		"\nDibujos Animados\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintStreamPlain(t *testing.T) {
	var buf bytes.Buffer
	PrintStream(&buf, "TN", &media.ResolvedStream{
		VideoID:        "abc12345678",
		SourceWatchURL: media.WatchURL("abc12345678"),
		Qualities:      media.Qualities{"480p": "u480", "1080p": "u1080"},
	}, false)

	want := "TN\n" +
		"  video  abc12345678\n" +
		"  watch  https://www.youtube.com/watch?v=abc12345678\n" +
		"  1080p   u1080\n" +
		"  480p    u480\n"
	if buf.String() != want {
		t.Errorf("PrintStream() =\n%q\nwant\n%q", buf.String(), want)
	}
}
