package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/term"

	"criollotv/internal/media"
)

var (
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	channelStyle  = lipgloss.NewStyle().Bold(true)
	methodStyle   = lipgloss.NewStyle().Faint(true)
	disabledStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Styled reports whether f is a terminal and should receive styled output.
func Styled(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or fallback when unknown.
func Width(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

func render(styled bool, st lipgloss.Style, s string) string {
	if !styled {
		return s
	}
	return st.Render(s)
}

// Filter keeps the channels whose name fuzzily matches query, dropping
// sections left empty. An empty query keeps everything.
func Filter(sections []media.Section, query string) []media.Section {
	query = strings.TrimSpace(query)
	if query == "" {
		return sections
	}
	var out []media.Section
	for _, s := range sections {
		var kept []media.ChannelConfig
		for _, ch := range s.Channels {
			if fuzzy.MatchNormalizedFold(query, ch.Name) {
				kept = append(kept, ch)
			}
		}
		if len(kept) > 0 {
			out = append(out, media.Section{Name: s.Name, Channels: kept})
		}
	}
	return out
}

// PrintSections writes the channel listing grouped by section.
func PrintSections(w io.Writer, sections []media.Section, styled bool) {
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, render(styled, sectionStyle, s.Name))

		width := 0
		for _, ch := range s.Channels {
			width = max(width, utf8.RuneCountInString(ch.Name))
		}
		for _, ch := range s.Channels {
			name := fmt.Sprintf("%-*s", width, ch.Name)
			if !ch.Enabled {
				fmt.Fprintf(w, "  %s  %s\n", render(styled, disabledStyle, name), render(styled, methodStyle, "disabled"))
				continue
			}
			fmt.Fprintf(w, "  %s  %s\n", render(styled, channelStyle, name), render(styled, methodStyle, ch.Method.String()))
		}
	}
}

// PrintStream writes a resolved stream in human-readable form, qualities
// highest first.
func PrintStream(w io.Writer, channel string, stream *media.ResolvedStream, styled bool) {
	fmt.Fprintln(w, render(styled, sectionStyle, channel))
	if stream.VideoID != "" {
		fmt.Fprintf(w, "  video  %s\n", stream.VideoID)
		fmt.Fprintf(w, "  watch  %s\n", stream.SourceWatchURL)
	}
	for _, label := range stream.Qualities.Labels() {
		fmt.Fprintf(w, "  %s  %s\n", render(styled, labelStyle, fmt.Sprintf("%-6s", label)), stream.Qualities[label])
	}
}

// Error renders an error line for the terminal.
func Error(styled bool, msg string) string {
	return render(styled, errorStyle, msg)
}
