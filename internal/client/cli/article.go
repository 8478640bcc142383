package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

// Open prompts for an article URL and, optionally, a local file with the
// article content. HTML files are flattened to the plain-text coordinate
// space; everything else is used verbatim. Offsets in add/render refer to
// code points of the flattened text.
func (a *App) Open(ctx context.Context) error {
	url, err := getSimpleText(a.reader, "Enter article URL", os.Stdout)
	if err != nil {
		return err
	}
	if url == "" {
		log.Printf("error: article URL is required")
		return fmt.Errorf("article URL is required")
	}

	path, err := getSimpleText(a.reader, "Enter path to article file (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}

	text := ""
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		text = string(data)
		if strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm") {
			root, err := highlight.ParseHTMLFragment(text)
			if err != nil {
				log.Printf("error: %v", err)
				return err
			}
			text = root.Flatten()
		}
	}

	a.articleURL = url
	a.articleText = text
	fmt.Printf("Opened %s (%d characters)\n", url, len([]rune(text)))
	return nil
}

// List prints the highlights of the open article, or of every article when
// none is open.
func (a *App) List(ctx context.Context) error {
	var (
		items []highlight.LocalHighlight
		err   error
	)
	if a.articleURL != "" {
		items, err = a.highlightService.List(ctx, a.articleURL)
	} else {
		items, err = a.highlightService.ListAll(ctx)
	}
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	for _, item := range items {
		fmt.Println(formatHighlight(item))
	}
	return nil
}

// Show fetches and displays a single highlight by its id.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter highlight id to show", os.Stdout)
	if err != nil {
		return err
	}

	h, err := a.highlightService.Get(ctx, id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Id: %s\n", h.ClientID)
	fmt.Printf("Article: %s\n", h.ArticleURL)
	fmt.Printf("Span: [%d, %d)\n", h.CharacterStart, h.CharacterEnd)
	fmt.Printf("Color: %s\n", h.Color)
	fmt.Printf("Text: %s\n", h.HighlightedText)
	if h.Note != "" {
		fmt.Printf("Note: %s\n", h.Note)
	}
	fmt.Printf("Status: %s\n", h.SyncStatus)
	if h.LastError != "" {
		fmt.Printf("Last error: %s\n", h.LastError)
	}
	return nil
}

// Add prompts for a character span and color and creates a highlight on the
// open article.
func (a *App) Add(ctx context.Context) error {
	if a.articleText == "" {
		log.Printf("error: open an article with text first")
		return fmt.Errorf("no article text loaded")
	}

	span, err := getSimpleText(a.reader, "Enter span as two character offsets (e.g. 120 158)", os.Stdout)
	if err != nil {
		return err
	}
	parts := strings.Fields(span)
	if len(parts) != 2 {
		log.Printf("error: expected two offsets")
		return fmt.Errorf("expected two offsets")
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	color, err := getSimpleText(a.reader, "Enter color (yellow/blue/red/green/purple, empty for yellow)", os.Stdout)
	if err != nil {
		return err
	}
	if color == "" {
		color = string(highlight.ColorYellow)
	}

	h, err := a.highlightService.Add(ctx, a.articleURL, a.articleText, start, end, highlight.Color(color))
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println(formatHighlight(h))
	return nil
}

// Note attaches a note to a highlight.
func (a *App) Note(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter highlight id", os.Stdout)
	if err != nil {
		return err
	}
	note, err := GetMultiline(a.reader, "Enter note text (double Enter to finish):", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.highlightService.SetNote(ctx, id, note); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}

// Color changes a highlight's color.
func (a *App) Color(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter highlight id", os.Stdout)
	if err != nil {
		return err
	}
	color, err := getSimpleText(a.reader, "Enter color (yellow/blue/red/green/purple)", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.highlightService.SetColor(ctx, id, highlight.Color(color)); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}

// Delete removes a highlight by its identifier, prompting the user for the id.
// Synced records become tombstones and disappear from the server on the next
// sync.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter highlight id to delete", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.highlightService.Delete(ctx, id); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}

// Render prints the open article with its highlights styled in the terminal.
func (a *App) Render(ctx context.Context) error {
	if a.articleText == "" {
		log.Printf("error: open an article with text first")
		return fmt.Errorf("no article text loaded")
	}

	active, err := getSimpleText(a.reader, "Enter id of highlight to emphasize (empty for none)", os.Stdout)
	if err != nil {
		return err
	}

	segments, err := a.highlightService.Render(ctx, a.articleURL, a.articleText, active)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println(RenderSegments(segments))
	return nil
}

// Sync pushes pending changes and, when an article is open, pulls and merges
// the server's copy of it.
func (a *App) Sync(ctx context.Context) error {
	if err := a.highlightService.Sync(ctx, a.articleURL); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Sync complete")
	return nil
}

// Export writes the open article's highlight snapshot to a file.
func (a *App) Export(ctx context.Context) error {
	if a.articleURL == "" {
		log.Printf("error: open an article first")
		return fmt.Errorf("no article open")
	}
	path, err := getSimpleText(a.reader, "Enter file path to export to", os.Stdout)
	if err != nil {
		return err
	}
	data, err := a.highlightService.Snapshot(ctx, a.articleURL)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Printf("Snapshot saved to: %s\n", path)
	return nil
}

// Import replaces the open article's highlights from an exported snapshot.
func (a *App) Import(ctx context.Context) error {
	if a.articleURL == "" {
		log.Printf("error: open an article first")
		return fmt.Errorf("no article open")
	}
	path, err := getSimpleText(a.reader, "Enter snapshot file path", os.Stdout)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.highlightService.RestoreSnapshot(ctx, a.articleURL, data); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Snapshot restored")
	return nil
}

// formatHighlight renders a one-line summary for list output.
func formatHighlight(h highlight.LocalHighlight) string {
	text := h.HighlightedText
	if r := []rune(text); len(r) > 40 {
		text = string(r[:40]) + "…"
	}
	s := fmt.Sprintf("%s [%d,%d) %s %q (%s)", h.ClientID, h.CharacterStart, h.CharacterEnd, h.Color, text, h.SyncStatus)
	if h.Note != "" {
		s += " [note]"
	}
	if h.LastError != "" {
		s += " error: " + h.LastError
	}
	return s
}
