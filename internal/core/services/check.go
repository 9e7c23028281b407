package services

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
)

// Ensure CheckService implements the interface.
var _ driving.Checker = (*CheckService)(nil)

// maxLineSize bounds a single NDJSON record.
const maxLineSize = 16 << 20

// checkRule describes how one kind of export file is validated.
type checkRule struct {
	label       string
	title       string
	idField     string
	numberField string
	rangeFields []string
}

var checkRules = map[string]checkRule{
	"journals": {
		label:       "entries",
		title:       "Journal validation errors",
		idField:     "JournalID",
		numberField: "JournalNumber",
		rangeFields: []string{"JournalNumber", "JournalDate", CreatedDateUTC},
	},
	"transactions": {
		label:       "transactions",
		title:       "Transaction validation errors",
		idField:     "BankTransactionID",
		rangeFields: []string{"Date"},
	},
}

// CheckService validates exported files.
type CheckService struct{}

// NewCheckService creates a checker.
func NewCheckService() *CheckService {
	return &CheckService{}
}

// Kinds lists the checkable record kinds.
func (s *CheckService) Kinds() []string {
	kinds := make([]string, 0, len(checkRules))
	for kind := range checkRules {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Check reads every record in paths and reports the number of entries and
// the range of each summary field. Duplicate IDs, and for numbered kinds
// duplicate numbers and gaps, fail with *domain.CheckError.
func (s *CheckService) Check(ctx context.Context, kind string, paths []string) (*domain.CheckSummary, error) {
	rule, ok := checkRules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEndpoint, kind)
	}

	ids := make(map[string]int)
	numbers := make(map[int64]int)
	ranges := make([]fieldRange, len(rule.rangeFields))
	entries := 0

	for _, path := range paths {
		err := readLines(ctx, path, func(line []byte) error {
			entity := domain.Entity(line)
			entries++
			if id := entity.String(rule.idField); id != "" {
				ids[id]++
			}
			if rule.numberField != "" {
				if n, err := entity.Int(rule.numberField); err == nil {
					numbers[n]++
				}
			}
			for i, field := range rule.rangeFields {
				if entity.Has(field) {
					ranges[i].observe(entity, field)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var problems []string
	for id, count := range ids {
		if count > 1 {
			problems = append(problems, fmt.Sprintf("Duplicate %s found: %s", rule.idField, id))
		}
	}
	for n, count := range numbers {
		if count > 1 {
			problems = append(problems, fmt.Sprintf("Duplicate %s found: %d", rule.numberField, n))
		}
	}
	if missing := domain.MissingRanges(presentNumbers(numbers)); missing != "" {
		problems = append(problems, fmt.Sprintf("Missing %ss: %s", rule.numberField, missing))
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, &domain.CheckError{Title: rule.title, Problems: problems}
	}

	summary := &domain.CheckSummary{Label: rule.label, Entries: entries}
	for i, field := range rule.rangeFields {
		summary.Ranges = append(summary.Ranges, domain.FieldRange{Field: field, Min: ranges[i].min, Max: ranges[i].max})
	}
	return summary, nil
}

// presentNumbers returns the distinct numbers seen, ascending.
func presentNumbers(numbers map[int64]int) []int64 {
	present := make([]int64, 0, len(numbers))
	for n := range numbers {
		present = append(present, n)
	}
	slices.Sort(present)
	return present
}

// fieldRange tracks the lowest and highest raw value of a field, ordered
// numerically for numbers and chronologically for timestamps.
type fieldRange struct {
	min, max         string
	minKey, maxKey   float64
	minTime, maxTime time.Time
	seen             bool
}

func (r *fieldRange) observe(entity domain.Entity, field string) {
	raw := entity.String(field)
	if domain.IsTimeField(field) {
		t, err := entity.Time(field)
		if err != nil {
			return
		}
		if !r.seen || t.Before(r.minTime) {
			r.min, r.minTime = raw, t
		}
		if !r.seen || t.After(r.maxTime) {
			r.max, r.maxTime = raw, t
		}
		r.seen = true
		return
	}
	n := entity.Get(field).Float()
	if !r.seen || n < r.minKey {
		r.min, r.minKey = raw, n
	}
	if !r.seen || n > r.maxKey {
		r.max, r.maxKey = raw, n
	}
	r.seen = true
}

// readLines calls fn for every non-empty line of path.
func readLines(ctx context.Context, path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(append([]byte(nil), line...)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
