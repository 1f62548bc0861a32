package sheets

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Store errors.
var (
	ErrMissingIDColumn  = errors.New("sheet has no " + model.AttrID + " column")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrReadOnlyField    = errors.New("attribute is read-only")
	ErrEmptyPatch       = errors.New("patch cannot be empty")
	ErrInexactNumber    = errors.New("number cannot be stored exactly")
)

// Store implements service.BudgetStore over a single sheet. The first row
// holds attribute names; every following row with a non-empty id is a budget.
type Store struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
	sheetName     string
	retry         service.RetryOptions
}

var _ service.BudgetStore = (*Store)(nil)

// NewStore creates a store authenticated from cfg.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ts, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return NewStoreWithService(cfg, srv), nil
}

// NewStoreWithService creates a store over an existing Sheets service.
func NewStoreWithService(cfg Config, srv *sheets.Service) *Store {
	name := cfg.SheetName
	if name == "" {
		name = DefaultSheetName
	}
	logger := slog.Default().With("component", "sheets")
	return &Store{
		service:       srv,
		logger:        logger,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		retry: service.RetryOptions{
			Logger:       logger,
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryDelay,
		},
	}
}

// table is the decoded sheet contents.
type table struct {
	header map[string]int
	rows   [][]any
}

func (t *table) cell(row []any, attr string) any {
	idx, ok := t.header[attr]
	if !ok || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func (s *Store) readTable(ctx context.Context) (*table, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(s.sheetName)).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	t := &table{header: make(map[string]int)}
	if len(resp.Values) == 0 {
		return nil, ErrMissingIDColumn
	}
	for i, v := range resp.Values[0] {
		if name := strings.TrimSpace(fmt.Sprint(v)); name != "" {
			t.header[name] = i
		}
	}
	if _, ok := t.header[model.AttrID]; !ok {
		return nil, ErrMissingIDColumn
	}
	t.rows = resp.Values[1:]
	return t, nil
}

// ListBudgets implements service.BudgetStore. Ordering and the top-N limit
// are applied client-side.
func (s *Store) ListBudgets(ctx context.Context, opts service.ListOptions) ([]service.Record, error) {
	var t *table
	err := common.WithRetry(ctx, func() error {
		var readErr error
		t, readErr = s.readTable(ctx)
		return readErr
	}, s.retry)
	if err != nil {
		return nil, userFacing(err)
	}

	attrs := opts.Select
	if len(attrs) == 0 {
		attrs = model.BudgetAttributes
	}

	all := make([]service.Record, 0, len(t.rows))
	for _, row := range t.rows {
		if model.ValueText(t.cell(row, model.AttrID)) == "" {
			continue
		}
		rec := make(service.Record, len(t.header))
		for attr := range t.header {
			rec[attr] = t.cell(row, attr)
		}
		all = append(all, rec)
	}

	sortRecords(all, opts.OrderBy)
	if opts.Top > 0 && len(all) > opts.Top {
		all = all[:opts.Top]
	}

	records := make([]service.Record, len(all))
	for i, full := range all {
		rec := make(service.Record, len(attrs))
		for _, attr := range attrs {
			rec[attr] = full[attr]
		}
		records[i] = rec
	}

	s.logger.Debug("Read budgets from sheet", "sheet", s.sheetName, "count", len(records))
	return records, nil
}

// UpdateBudget implements service.BudgetStore. The row is located by id and
// the patched cells are written in one batch request.
func (s *Store) UpdateBudget(ctx context.Context, id string, patch service.Patch) error {
	if len(patch) == 0 {
		return ErrEmptyPatch
	}

	cells := make(map[string]any, len(patch))
	for attr, v := range patch {
		cell, err := cellValue(v)
		if err != nil {
			return err
		}
		cells[attr] = cell
	}

	t, err := s.readTable(ctx)
	if err != nil {
		return userFacing(err)
	}

	rowNum := 0
	for i, row := range t.rows {
		if model.ValueText(t.cell(row, model.AttrID)) == id {
			rowNum = i + 2 // 1-based, after the header row
			break
		}
	}
	if rowNum == 0 {
		return common.NewUserError("This budget no longer exists.",
			fmt.Errorf("%w: budget %s", common.ErrNotFound, id))
	}

	attrs := make([]string, 0, len(patch))
	for attr := range patch {
		attrs = append(attrs, attr)
	}
	slices.Sort(attrs)

	data := make([]*sheets.ValueRange, 0, len(attrs))
	for _, attr := range attrs {
		if attr == model.AttrID {
			return fmt.Errorf("%w: %s", ErrReadOnlyField, attr)
		}
		col, ok := t.header[attr]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAttribute, attr)
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", quoteSheet(s.sheetName), columnLetter(col), rowNum),
			Values: [][]any{{cells[attr]}},
		})
	}

	// RAW keeps user text from being parsed as formulas.
	_, err = s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return userFacing(classify(err))
	}

	s.logger.Debug("Updated budget in sheet", "id", id, "row", rowNum)
	return nil
}

func sortRecords(records []service.Record, orderBy []service.OrderBy) {
	if len(orderBy) == 0 {
		return
	}
	slices.SortStableFunc(records, func(a, b service.Record) int {
		for _, ob := range orderBy {
			c := compareValues(ob.Attribute, a[ob.Attribute], b[ob.Attribute])
			if ob.Direction == service.SortDescending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareValues(attr string, a, b any) int {
	if attr == model.AttrBudgetConsumed {
		da, aErr := model.ParseAmount(model.ValueText(a))
		db, bErr := model.ParseAmount(model.ValueText(b))
		switch {
		case aErr == nil && bErr == nil:
			return da.Cmp(db)
		case aErr != nil && bErr == nil:
			return -1
		case aErr == nil && bErr != nil:
			return 1
		}
	}
	return cmp.Compare(strings.ToLower(model.ValueText(a)), strings.ToLower(model.ValueText(b)))
}

// cellValue converts a patch value for the Sheets API. Decimals are written
// as numbers, which Sheets holds as doubles, so a decimal that does not
// survive the conversion is rejected.
func cellValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case decimal.Decimal:
		f := val.InexactFloat64()
		if !decimal.NewFromFloat(f).Equal(val) {
			return nil, common.NewUserError("Google Sheets cannot store this number exactly. Use fewer digits.",
				fmt.Errorf("%w: %s", ErrInexactNumber, val))
		}
		return f, nil
	default:
		return val, nil
	}
}

// quoteSheet quotes a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a zero-based column index to its A1 letters.
func columnLetter(idx int) string {
	var letters []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters)
}

// classify marks throttling and server failures as retryable.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 429 || gerr.Code >= 500) {
		return &common.RetryableError{Err: err, Retryable: true}
	}
	return err
}

// userFacing surfaces the API's message, when there is one, to the user.
func userFacing(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return common.NewUserError(gerr.Message, err)
	}
	return err
}
