package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/karaoke/internal/timing"
)

const (
	DefaultStyleName     = "Default"
	TranslationStyleName = "Translation"

	DefaultPlayResX = 400
	DefaultPlayResY = 320
)

// RGBA colour, A is opacity (255 is opaque)
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ASS notation &HAABBGGRR, where AA is transparency
func (c Color) ASS() string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", 255-c.A, c.B, c.G, c.R)
}

// ParseHexColor reads #RRGGBB or #RRGGBBAA.
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q: want #RRGGBB or #RRGGBBAA", s)
	}
	if len(hex) == 6 {
		hex += "FF"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// visual parameters of one ASS style
type Style struct {
	Name           string
	FontName       string
	FontSize       int
	PrimaryColor   Color
	SecondaryColor Color
	Bold           bool
	// numpad position, 8 is top centre
	Alignment int
	ScaleX    int
	ScaleY    int
	Spacing   int
	MarginL   int
	MarginR   int
	MarginV   int
	Encoding  int
}

// magenta sung text sweeping over cyan
func DefaultStyle() Style {
	return Style{
		Name:           DefaultStyleName,
		FontName:       "Arial Narrow",
		FontSize:       20,
		PrimaryColor:   RGB(255, 0, 255),
		SecondaryColor: RGB(0, 255, 255),
		Bold:           true,
		Alignment:      8,
		ScaleX:         100,
		ScaleY:         100,
		MarginV:        20,
	}
}

// plain style for translated lines, pinned to the bottom of the frame
func (s Style) Translation() Style {
	t := s
	t.Name = TranslationStyleName
	t.FontSize = s.FontSize * 4 / 5
	t.PrimaryColor = RGB(255, 255, 255)
	t.SecondaryColor = RGB(255, 255, 255)
	t.Bold = false
	t.Alignment = 2
	return t
}

type VerticalAlignment string

const (
	AlignTop    VerticalAlignment = "top"
	AlignMiddle VerticalAlignment = "middle"
	AlignBottom VerticalAlignment = "bottom"
)

func ParseVerticalAlignment(s string) (VerticalAlignment, error) {
	switch a := VerticalAlignment(strings.ToLower(strings.TrimSpace(s))); a {
	case AlignTop, AlignMiddle, AlignBottom:
		return a, nil
	case "":
		return AlignMiddle, nil
	default:
		return "", fmt.Errorf("unknown vertical alignment %q", s)
	}
}

// placement of the lines of a screen within the frame
type Layout struct {
	PlayResX          int
	PlayResY          int
	VerticalAlignment VerticalAlignment
	// when positive, the first line sits this far from the top regardless
	// of the alignment
	FirstLineTopMargin int
}

func DefaultLayout() Layout {
	return Layout{
		PlayResX:          DefaultPlayResX,
		PlayResY:          DefaultPlayResY,
		VerticalAlignment: AlignMiddle,
	}
}

// MarginV is the distance from the top of the frame of line i out of n
// lines on a screen. Lines are spaced 1.5 font sizes apart.
func (l Layout) MarginV(i, n, fontSize int) int {
	lineHeight := fontSize * 3 / 2
	resY := l.PlayResY
	if resY <= 0 {
		resY = DefaultPlayResY
	}

	if l.FirstLineTopMargin > 0 {
		return l.FirstLineTopMargin + i*lineHeight
	}

	switch l.VerticalAlignment {
	case AlignTop:
		return (i + 1) * lineHeight
	case AlignBottom:
		return resY - (n-i+1)*lineHeight
	default:
		return resY/2 - n*lineHeight/2 + i*lineHeight
	}
}

// one Dialogue line
type Event struct {
	Layer   int
	Style   string
	Start   time.Duration
	End     time.Duration
	MarginV int
	Text    string
}

// complete ASS karaoke script
type Document struct {
	Title    string
	PlayResX int
	PlayResY int
	Styles   []Style
	Events   []Event
}

type EncodeOptions struct {
	Style  Style
	Layout Layout
	// one entry per Line in display order, empty entries are skipped; no
	// translation events are written when nil
	Translations []string
}

// Encode renders the normalized screens as an ASS karaoke document. Every
// Line becomes one event visible for its whole Screen, with a \k pre-roll
// from the screen start and one \kf sweep per segment.
func Encode(screens []timing.Screen, opts EncodeOptions) *Document {
	style := opts.Style
	if style.Name == "" {
		style.Name = DefaultStyleName
	}
	layout := opts.Layout
	if layout.PlayResX <= 0 {
		layout.PlayResX = DefaultPlayResX
	}
	if layout.PlayResY <= 0 {
		layout.PlayResY = DefaultPlayResY
	}

	doc := &Document{
		Title:    "Karaoke",
		PlayResX: layout.PlayResX,
		PlayResY: layout.PlayResY,
		Styles:   []Style{style},
	}

	var translations []Event
	lineIndex := 0
	for _, screen := range screens {
		end, _ := screen.End()
		// a screen pulled before zero by offset correction starts at zero,
		// and its sweeps are measured from there
		start := max(screen.Start, 0)
		for i, line := range screen.Lines {
			doc.Events = append(doc.Events, Event{
				Style:   style.Name,
				Start:   start,
				End:     end,
				MarginV: layout.MarginV(i, len(screen.Lines), style.FontSize),
				Text:    KaraokeText(line, start),
			})

			if lineIndex < len(opts.Translations) {
				if text := strings.TrimSpace(opts.Translations[lineIndex]); text != "" {
					translations = append(translations, Event{
						Style: TranslationStyleName,
						Start: start,
						End:   end,
						Text:  escapeASSText(text),
					})
				}
			}
			lineIndex++
		}
	}

	if len(translations) > 0 {
		doc.Styles = append(doc.Styles, style.Translation())
		doc.Events = append(doc.Events, translations...)
	}
	return doc
}

// KaraokeText renders a line as karaoke override tags relative to the
// screen start. A gap between one segment ending and the next starting is
// filled with an empty sweep. Every boundary is placed on the centisecond
// grid of the screen before differencing, so rounding never accumulates
// along the line.
func KaraokeText(line timing.Line, screenStart time.Duration) string {
	at := func(d time.Duration) int64 {
		return centiseconds(d - screenStart)
	}

	var sb strings.Builder
	cursor := at(line.Start())
	fmt.Fprintf(&sb, `{\k%d}`, cursor)

	for _, seg := range line.Segments {
		start := at(seg.Start)
		if start > cursor {
			fmt.Fprintf(&sb, `{\kf%d}`, start-cursor)
			cursor = start
		}

		end := start
		if seg.HasEnd {
			end = at(seg.End)
		}
		fill := max(end-cursor, 0)
		fmt.Fprintf(&sb, `{\kf%d}`, fill)
		sb.WriteString(escapeASSText(seg.DisplayText()))
		cursor += fill
	}
	return sb.String()
}

// truncates to whole centiseconds
func centiseconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / (10 * time.Millisecond))
}

func (s Style) assLine() string {
	bold := 0
	if s.Bold {
		bold = -1
	}
	return fmt.Sprintf("Style: %s,%d,%s,%d,%s,%s,%d,%d,%d,%d,%d,%d,%d,%d",
		s.Name,
		s.Alignment,
		s.FontName,
		s.FontSize,
		s.PrimaryColor.ASS(),
		s.SecondaryColor.ASS(),
		bold,
		s.ScaleX,
		s.ScaleY,
		s.Spacing,
		s.MarginL,
		s.MarginR,
		s.MarginV,
		s.Encoding,
	)
}

func (e Event) assLine() string {
	return fmt.Sprintf("Dialogue: %d,%s,%s,%s,%d,%s",
		e.Layer,
		e.Style,
		formatASSTime(e.Start),
		formatASSTime(e.End),
		e.MarginV,
		e.Text,
	)
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	fmt.Fprintf(&sb, "Title: %s\n", d.Title)
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", d.PlayResX)
	fmt.Fprintf(&sb, "PlayResY: %d\n\n", d.PlayResY)

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Alignment, Fontname, Fontsize, PrimaryColour, SecondaryColour, Bold, ScaleX, ScaleY, Spacing, MarginL, MarginR, MarginV, Encoding\n")
	for _, s := range d.Styles {
		sb.WriteString(s.assLine())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Style, Start, End, MarginV, Text\n")
	for _, e := range d.Events {
		sb.WriteString(e.assLine())
		sb.WriteString("\n")
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (d *Document) String() string {
	var sb strings.Builder
	_, _ = d.WriteTo(&sb)
	return sb.String()
}

func (d *Document) Write(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ASS file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	writer := bufio.NewWriter(file)
	if _, err := d.WriteTo(writer); err != nil {
		return fmt.Errorf("failed to write ASS file: %w", err)
	}
	return writer.Flush()
}
