package services

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// Kind identifies a strategy's pagination and cursor policy.
type Kind int

// Strategy kinds.
const (
	// KindDefault fetches everything in one paginated call.
	KindDefault Kind = iota
	// KindStatic is KindDefault without cursor fields.
	KindStatic
	// KindSequential pages by the last seen sequence number.
	KindSequential
	// KindTimeWindow pages by page number with a modified-since filter.
	KindTimeWindow
	// KindFanOut fetches a fixed list of documents by ID.
	KindFanOut
	// KindAttachments sweeps attachment metadata across endpoints.
	KindAttachments
)

var kindNames = map[Kind]string{
	KindDefault:     "default",
	KindStatic:      "static",
	KindSequential:  "sequential",
	KindTimeWindow:  "time-window",
	KindFanOut:      "fan-out",
	KindAttachments: "attachments",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Namer maps an entity to its output path relative to the tenant directory.
type Namer func(entity domain.Entity, split domain.Split) string

// Strategy describes how one endpoint is paginated, resumed and named.
type Strategy struct {
	Kind Kind

	// Endpoint is the checkpoint key and the name users select.
	Endpoint string

	// Source is the remote endpoint read from. Empty means Endpoint.
	Source string

	// LatestFields are the cursor fields, advanced to their maximum.
	LatestFields []string

	// SupportsUpdate reports whether update runs append instead of overwrite.
	SupportsUpdate bool

	// GuardBoundary skips entities whose GuardField is not after the
	// cursor value the run started from.
	GuardBoundary bool
	GuardField    string

	// SequenceField drives KindSequential pagination.
	SequenceField string

	// PageSize and Where apply to KindTimeWindow requests.
	PageSize int
	Where    string

	// IDs are the documents a KindFanOut strategy fetches.
	IDs []string

	// Attachments are the parents a KindAttachments strategy sweeps.
	Attachments []AttachmentParent

	Name Namer
}

// AttachmentParent is an endpoint whose entities can carry attachments.
type AttachmentParent struct {
	Endpoint     string
	IDField      string
	DisplayField string
}

// SourceName returns the remote endpoint the strategy reads from.
func (s *Strategy) SourceName() string {
	if s.Source != "" {
		return s.Source
	}
	return s.Endpoint
}

// Begin starts a run resuming from previous, which may be nil.
// previous is copied; the caller's cursor is never modified.
func (s *Strategy) Begin(previous *domain.Cursor) *Run {
	latest := previous.Clone()
	if latest == nil {
		latest = domain.NewCursor()
	}
	return &Run{
		strategy: s,
		snapshot: previous.Clone(),
		latest:   latest,
	}
}

// Run is one pass of a strategy over its source.
type Run struct {
	strategy *Strategy

	// snapshot is frozen at Begin and only used for resume decisions.
	snapshot *domain.Cursor

	// latest accumulates the cursor to persist.
	latest *domain.Cursor
}

// Latest returns the advanced cursor. It is complete once Items is exhausted.
func (r *Run) Latest() *domain.Cursor {
	return r.latest
}

// Items yields the run's entities in order. A non-nil error ends the
// sequence and is fatal to the endpoint.
func (r *Run) Items(ctx context.Context, api driven.AccountingAPI) iter.Seq2[domain.Entity, error] {
	return func(yield func(domain.Entity, error) bool) {
		emit := func(entity domain.Entity) bool {
			if err := r.latest.AdvanceFrom(entity, r.strategy.LatestFields); err != nil {
				yield(nil, fmt.Errorf("advance cursor: %w", err))
				return false
			}
			return yield(entity, nil)
		}
		fail := func(err error) {
			yield(nil, err)
		}

		switch r.strategy.Kind {
		case KindDefault, KindStatic:
			r.fetchAll(ctx, api, emit, fail)
		case KindSequential:
			r.sequential(ctx, api, emit, fail)
		case KindTimeWindow:
			r.timeWindow(ctx, api, emit, fail)
		case KindFanOut:
			r.fanOut(ctx, api, emit, fail)
		case KindAttachments:
			r.attachments(ctx, api, emit, fail)
		default:
			fail(fmt.Errorf("%w: strategy kind %s", domain.ErrInvalidInput, r.strategy.Kind))
		}
	}
}

// skip reports whether entity is the boundary record re-delivered by an
// inclusive since filter.
func (r *Run) skip(entity domain.Entity) bool {
	s := r.strategy
	if !s.GuardBoundary || s.GuardField == "" {
		return false
	}
	threshold, ok := r.snapshot.Time(s.GuardField)
	if !ok {
		return false
	}
	updated, err := entity.Time(s.GuardField)
	if err != nil {
		return false
	}
	return !updated.After(threshold)
}

func (r *Run) fetchAll(ctx context.Context, api driven.AccountingAPI, emit func(domain.Entity) bool, fail func(error)) {
	entities, err := api.Source(r.strategy.SourceName()).FetchAll(ctx)
	if err != nil {
		fail(err)
		return
	}
	for _, entity := range entities {
		if r.skip(entity) {
			continue
		}
		if !emit(entity) {
			return
		}
	}
}

func (r *Run) sequential(ctx context.Context, api driven.AccountingAPI, emit func(domain.Entity) bool, fail func(error)) {
	field := r.strategy.SequenceField
	source := api.Source(r.strategy.SourceName())
	offset, _ := r.snapshot.Int(field)

	for {
		batch, err := source.FetchFiltered(ctx, driven.FetchOptions{Offset: offset})
		if err != nil {
			fail(err)
			return
		}
		if len(batch) == 0 {
			return
		}
		for _, entity := range batch {
			if r.skip(entity) {
				continue
			}
			if !emit(entity) {
				return
			}
		}

		next, err := batch[len(batch)-1].Int(field)
		if err != nil {
			fail(fmt.Errorf("read %s: %w", field, err))
			return
		}
		if next <= offset {
			fail(fmt.Errorf("%w: %s did not advance past %d", domain.ErrInvalidInput, field, offset))
			return
		}
		offset = next
	}
}

func (r *Run) timeWindow(ctx context.Context, api driven.AccountingAPI, emit func(domain.Entity) bool, fail func(error)) {
	source := api.Source(r.strategy.SourceName())
	opts := driven.FetchOptions{
		PageSize: r.strategy.PageSize,
		Where:    r.strategy.Where,
	}
	// Every page uses the cursor the run started from, not the advancing one.
	if since, ok := r.snapshot.Time(r.strategy.GuardField); ok {
		opts.Since = since
	}

	for page := 1; ; page++ {
		opts.Page = page
		batch, err := source.FetchFiltered(ctx, opts)
		if err != nil {
			fail(err)
			return
		}
		if len(batch) == 0 {
			return
		}
		for _, entity := range batch {
			if r.skip(entity) {
				continue
			}
			if !emit(entity) {
				return
			}
		}
	}
}

// tolerate reports whether a fan-out failure can be skipped. Cancellation
// never can.
func tolerate(ctx context.Context, fail func(error)) bool {
	if err := ctx.Err(); err != nil {
		fail(err)
		return false
	}
	return true
}

// lowerName is the default Namer path stem: the endpoint in lowercase.
func lowerName(endpoint string) string {
	return strings.ToLower(endpoint)
}
