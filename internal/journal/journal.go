package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jottty/jottty/internal/datom"
)

// Loader reads one entity by id.
type Loader interface {
	Load(ctx context.Context, id string) (datom.Entity, error)
}

// Applier applies a batch of datoms. Implemented by *engine.Engine.
type Applier interface {
	Apply(ctx context.Context, datoms []datom.Datom) ([]datom.Entity, error)
}

// ErrEmptyNote is returned by AddNote for blank text.
var ErrEmptyNote = errors.New("note text is empty")

// Journal adds and reads daily notes.
type Journal struct {
	loader  Loader
	applier Applier
	now     func() time.Time
	log     *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) { j.log = l }
}

// New creates a Journal reading through loader and writing through applier.
func New(loader Loader, applier Applier, opts ...Option) *Journal {
	j := &Journal{
		loader:  loader,
		applier: applier,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Block is one note.
type Block struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
}

// Page is one day of notes.
type Page struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Today returns today's date key.
func (j *Journal) Today() string {
	return DateKey(j.now())
}

// AddNote appends a note to today's page and returns the new block.
//
// The block and the page update are applied as one batch, so either both
// are stored or neither is.
func (j *Journal) AddNote(ctx context.Context, text string) (Block, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Block{}, ErrEmptyNote
	}

	now := j.now()
	date := DateKey(now)
	pageID := PageID(date)
	blockID := BlockID(date, now.UnixNano())

	page, err := j.loader.Load(ctx, pageID)
	if err != nil {
		return Block{}, fmt.Errorf("load page %s: %w", pageID, err)
	}
	blocks := append(blockIDs(page), blockID)

	batch := []datom.Datom{
		datom.Add(blockID, AttrBlockContent, datom.String(text)),
		datom.Add(blockID, AttrBlockPage, datom.String(pageID)),
		datom.Add(blockID, AttrBlockCreated, datom.Int(now.UnixNano())),
		datom.Add(pageID, AttrPageTitle, datom.String(LongDate(date))),
		datom.Add(pageID, AttrPageBlocks, datom.Strings(blocks...)),
	}
	if _, err := j.applier.Apply(ctx, batch); err != nil {
		return Block{}, fmt.Errorf("add note: %w", err)
	}

	j.log.Debug("note added", "page", pageID, "block", blockID)
	return Block{ID: blockID, Content: text, Created: now}, nil
}

// Page loads the page for date and each of its blocks. A day without notes
// yields a page with no blocks.
func (j *Journal) Page(ctx context.Context, date string) (Page, error) {
	if _, err := ParseDate(date); err != nil {
		return Page{}, err
	}

	pageID := PageID(date)
	entity, err := j.loader.Load(ctx, pageID)
	if err != nil {
		return Page{}, fmt.Errorf("load page %s: %w", pageID, err)
	}

	page := Page{ID: pageID, Date: date, Title: LongDate(date)}
	if title, ok := entity.Attrs[AttrPageTitle].(datom.String); ok {
		page.Title = string(title)
	}

	for _, id := range blockIDs(entity) {
		b, err := j.loader.Load(ctx, id)
		if err != nil {
			return Page{}, fmt.Errorf("load block %s: %w", id, err)
		}
		if b.IsEmpty() {
			j.log.Warn("page lists missing block", "page", pageID, "block", id)
			continue
		}
		page.Blocks = append(page.Blocks, blockOf(b))
	}
	return page, nil
}

func blockOf(e datom.Entity) Block {
	b := Block{ID: e.ID}
	if v, ok := e.Get(AttrBlockContent); ok {
		b.Content = datom.Text(v)
	}
	if n, ok := e.Attrs[AttrBlockCreated].(datom.Int); ok {
		b.Created = time.Unix(0, int64(n))
	}
	return b
}

// blockIDs reads page/blocks, ignoring non-string entries.
func blockIDs(page datom.Entity) []string {
	arr, _ := page.Attrs[AttrPageBlocks].(datom.Array)
	ids := make([]string, 0, len(arr)+1)
	for _, v := range arr {
		if s, ok := v.(datom.String); ok {
			ids = append(ids, string(s))
		}
	}
	return ids
}

// Render formats a page as markdown: a heading followed by one bullet per
// block.
func Render(page Page, bullet string) string {
	if bullet == "" {
		bullet = "-"
	}
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(page.Title)
	sb.WriteString("\n")
	if len(page.Blocks) == 0 {
		return sb.String()
	}
	sb.WriteString("\n")
	for _, b := range page.Blocks {
		lines := strings.Split(b.Content, "\n")
		sb.WriteString(bullet)
		sb.WriteString(" ")
		sb.WriteString(lines[0])
		sb.WriteString("\n")
		indent := strings.Repeat(" ", len(bullet)+1)
		for _, line := range lines[1:] {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
