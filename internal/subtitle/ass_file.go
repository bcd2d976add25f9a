package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// override blocks such as {\kf25} or {\an8}
var assTagPattern = regexp.MustCompile(`\{[^}]*\}`)

// ASSFile is an ASS/SSA script held line by line. Only the Dialogue lines
// of the [Events] section are split into fields; everything else is written
// back untouched and in its original position.
type ASSFile struct {
	lines     []string
	dialogues []assDialogue
	columns   assColumns
}

type assDialogue struct {
	line   int // index into lines
	fields []string
}

// positions of the columns named by the [Events] Format line
type assColumns struct {
	count             int
	start, end, text int
}

func parseASSColumns(format string) (assColumns, error) {
	names := strings.Split(format, ",")
	cols := assColumns{count: len(names), start: -1, end: -1, text: -1}
	for i, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "start":
			cols.start = i
		case "end":
			cols.end = i
		case "text":
			cols.text = i
		}
	}
	if cols.text < 0 {
		return cols, fmt.Errorf("ASS file missing Text column in Format line")
	}
	if cols.start < 0 || cols.end < 0 {
		return cols, fmt.Errorf("ASS file missing Start or End column in Format line")
	}
	return cols, nil
}

func parseASSFile(path string) (*ASSFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ASS file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	f := &ASSFile{}
	inEvents := false
	haveFormat := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if len(f.lines) == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		f.lines = append(f.lines, line)

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[events]")
			continue
		}
		if !inEvents {
			continue
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		switch key {
		case "Format":
			if f.columns, err = parseASSColumns(value); err != nil {
				return nil, err
			}
			haveFormat = true
		case "Dialogue":
			if !haveFormat {
				return nil, fmt.Errorf("line %d: Dialogue before the Format line", len(f.lines))
			}
			fields := splitASSFields(strings.TrimSpace(value), f.columns.count)
			if len(fields) < f.columns.count {
				return nil, fmt.Errorf("line %d: expected %d fields, got %d",
					len(f.lines), f.columns.count, len(fields))
			}
			f.dialogues = append(f.dialogues, assDialogue{line: len(f.lines) - 1, fields: fields})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}
	if !haveFormat {
		return nil, fmt.Errorf("ASS file missing Format line in [Events] section")
	}

	return f, nil
}

// splits at most n fields; the last one (Text) keeps its commas
func splitASSFields(content string, n int) []string {
	if n <= 0 {
		return nil
	}
	return strings.SplitN(content, ",", n)
}

// dialogue text with override tags removed and hard breaks as line feeds
func plainASSText(text string) string {
	text = assTagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\\N", "\n")
	return strings.ReplaceAll(text, "\\n", "\n")
}

func (f *ASSFile) Format() Format {
	return FormatASS
}

func (f *ASSFile) Subtitle() *Subtitle {
	entries := make([]Entry, len(f.dialogues))
	for i, d := range f.dialogues {
		start, end := f.times(d)
		entries[i] = Entry{
			Index:     i + 1,
			StartTime: start,
			EndTime:   end,
			Text:      plainASSText(d.fields[f.columns.text]),
		}
	}
	return &Subtitle{
		Entries: entries,
		Format:  string(FormatASS),
	}
}

func (f *ASSFile) times(d assDialogue) (start, end time.Duration) {
	return parseASSTimestamp(d.fields[f.columns.start]),
		parseASSTimestamp(d.fields[f.columns.end])
}

// H:MM:SS.CC; anything else reads as zero
func parseASSTimestamp(ts string) time.Duration {
	h, rest, ok := strings.Cut(strings.TrimSpace(ts), ":")
	if !ok {
		return 0
	}
	m, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return 0
	}
	s, cs, ok := strings.Cut(rest, ".")
	if !ok {
		return 0
	}

	var total time.Duration
	for _, part := range []struct {
		value string
		unit  time.Duration
	}{
		{h, time.Hour},
		{m, time.Minute},
		{s, time.Second},
		{cs, 10 * time.Millisecond},
	} {
		n, err := strconv.Atoi(part.value)
		if err != nil {
			return 0
		}
		total += time.Duration(n) * part.unit
	}
	return total
}

// Shift moves every Dialogue Start and End by delta, clamping at zero.
// Inline karaoke tags are relative to the event start and stay as they are.
func (f *ASSFile) Shift(delta time.Duration) {
	for i := range f.dialogues {
		d := &f.dialogues[i]
		start, end := f.times(*d)
		d.fields[f.columns.start] = formatASSTime(start + delta)
		d.fields[f.columns.end] = formatASSTime(end + delta)
		f.lines[d.line] = "Dialogue: " + strings.Join(d.fields, ",")
	}
}

func (f *ASSFile) Write(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	for _, line := range f.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write ASS file: %w", err)
	}
	return nil
}
