package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/huandu/go-sqlbuilder"
)

// lineItemColumns is the canonical SELECT column list for line_items.
const lineItemColumns = `id, parent_id, code, description, kind, before_amount, after_amount,
		monthly_allocation, is_blocked, is_open, order_index, created_at, updated_at`

var lineItemInsertCols = []string{
	"id", "parent_id", "code", "description", "kind", "before_amount", "after_amount",
	"monthly_allocation", "is_blocked", "is_open", "order_index", "created_at", "updated_at",
}

// SQLiteLineItemRepo implements LineItemRepo on a SQLite connection or
// transaction.
type SQLiteLineItemRepo struct {
	db db.DBTX
}

// NewSQLiteLineItemRepo creates a new SQLiteLineItemRepo.
func NewSQLiteLineItemRepo(db db.DBTX) *SQLiteLineItemRepo {
	return &SQLiteLineItemRepo{db: db}
}

func (r *SQLiteLineItemRepo) Create(ctx context.Context, item *domain.LineItem) error {
	return r.BulkCreate(ctx, []*domain.LineItem{item})
}

// BulkCreate inserts items with multi-row INSERTs of at most bulkChunk rows.
// It is not atomic on its own; run it inside a UnitOfWork for that.
func (r *SQLiteLineItemRepo) BulkCreate(ctx context.Context, items []*domain.LineItem) error {
	for start := 0; start < len(items); start += bulkChunk {
		end := min(start+bulkChunk, len(items))

		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("line_items")
		ib.Cols(lineItemInsertCols...)
		for _, it := range items[start:end] {
			vals, err := lineItemValues(it)
			if err != nil {
				return fmt.Errorf("line item %s: %w", it.ID, err)
			}
			ib.Values(vals...)
		}

		query, args := ib.Build()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting line items: %w", err)
		}
	}
	return nil
}

func lineItemValues(it *domain.LineItem) ([]any, error) {
	before, err := detailToValue(it.BeforeAmount)
	if err != nil {
		return nil, err
	}
	after, err := detailToValue(it.AfterAmount)
	if err != nil {
		return nil, err
	}
	monthly, err := allocationToValue(it.MonthlyAllocation)
	if err != nil {
		return nil, err
	}
	return []any{
		it.ID,
		it.ParentID, // *string: nil becomes SQL NULL
		it.Code,
		it.Description,
		string(it.Kind),
		before,
		after,
		monthly,
		nullableBoolToValue(it.IsBlocked),
		boolToInt(it.Open()),
		it.Order,
		formatTime(it.CreatedAt),
		formatTime(it.UpdatedAt),
	}, nil
}

func (r *SQLiteLineItemRepo) GetByID(ctx context.Context, id string) (*domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE id = ?`
	item, err := scanLineItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("line item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning line item: %w", err)
	}
	return item, nil
}

// ListAll returns every row in insertion order. This is the single bulk
// fetch the tree builder works from.
func (r *SQLiteLineItemRepo) ListAll(ctx context.Context) ([]*domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}
	defer rows.Close()
	return scanLineItems(rows)
}

func (r *SQLiteLineItemRepo) ListChildren(ctx context.Context, parentID *string) ([]*domain.LineItem, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(lineItemColumns)
	sb.From("line_items")
	sb.Where(parentCond(&sb.Cond, parentID))
	sb.OrderBy("order_index", "rowid")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing child line items: %w", err)
	}
	defer rows.Close()
	return scanLineItems(rows)
}

// MaxChildOrder returns the highest order among the children of parentID.
// ok is false when the parent has no children.
func (r *SQLiteLineItemRepo) MaxChildOrder(ctx context.Context, parentID *string) (int, bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("MAX(order_index)")
	sb.From("line_items")
	sb.Where(parentCond(&sb.Cond, parentID))

	query, args := sb.Build()
	var maxOrder sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&maxOrder); err != nil {
		return 0, false, fmt.Errorf("reading max sibling order: %w", err)
	}
	if !maxOrder.Valid {
		return 0, false, nil
	}
	return int(maxOrder.Int64), true, nil
}

// Update writes only the fields present in patch. It reports whether a row
// matched; an empty patch touches nothing and reports false.
func (r *SQLiteLineItemRepo) Update(ctx context.Context, id string, patch domain.LineItemPatch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("line_items")

	var sets []string
	if v, ok := patch.Code.Get(); ok {
		sets = append(sets, ub.Assign("code", v))
	}
	if v, ok := patch.Description.Get(); ok {
		sets = append(sets, ub.Assign("description", v))
	}
	if v, ok := patch.Kind.Get(); ok {
		sets = append(sets, ub.Assign("kind", string(v)))
	}
	if v, ok := patch.BeforeAmount.Get(); ok {
		val, err := detailToValue(v)
		if err != nil {
			return false, err
		}
		sets = append(sets, ub.Assign("before_amount", val))
	}
	if v, ok := patch.AfterAmount.Get(); ok {
		val, err := detailToValue(v)
		if err != nil {
			return false, err
		}
		sets = append(sets, ub.Assign("after_amount", val))
	}
	if v, ok := patch.MonthlyAllocation.Get(); ok {
		val, err := allocationToValue(v)
		if err != nil {
			return false, err
		}
		sets = append(sets, ub.Assign("monthly_allocation", val))
	}
	if v, ok := patch.IsBlocked.Get(); ok {
		sets = append(sets, ub.Assign("is_blocked", nullableBoolToValue(v)))
	}
	if v, ok := patch.IsOpen.Get(); ok {
		sets = append(sets, ub.Assign("is_open", boolToInt(v)))
	}
	sets = append(sets, ub.Assign("updated_at", formatTime(time.Now())))

	ub.Set(sets...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating line item: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

// SetMonthly upserts one month of the allocation in a single statement so
// concurrent writers to different months do not overwrite each other.
func (r *SQLiteLineItemRepo) SetMonthly(ctx context.Context, id string, month int, detail domain.MonthlyDetail) (bool, error) {
	payload, err := json.Marshal(detail)
	if err != nil {
		return false, fmt.Errorf("encoding monthly detail: %w", err)
	}
	path := fmt.Sprintf(`$."%s"`, domain.MonthKey(month))
	query := `UPDATE line_items
		SET monthly_allocation = json_set(COALESCE(NULLIF(monthly_allocation, ''), '{}'), ?, json(?)),
		    updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, path, string(payload), formatTime(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("updating monthly allocation: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

// ShiftOrders moves every child of parentID with order >= fromOrder one
// slot down, opening a gap at fromOrder.
func (r *SQLiteLineItemRepo) ShiftOrders(ctx context.Context, parentID *string, fromOrder int) (int64, error) {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("line_items")
	ub.Set(ub.Incr("order_index"))
	ub.Where(
		parentCond(&ub.Cond, parentID),
		ub.GreaterEqualThan("order_index", fromOrder),
	)

	query, args := ub.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("shifting sibling orders: %w", err)
	}
	return affected(res)
}

// DeleteMany removes the given ids and reports how many rows went away.
func (r *SQLiteLineItemRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var total int64
	for start := 0; start < len(ids); start += bulkChunk {
		end := min(start+bulkChunk, len(ids))

		dlb := sqlbuilder.SQLite.NewDeleteBuilder()
		dlb.DeleteFrom("line_items")
		dlb.Where(dlb.In("id", stringsToAny(ids[start:end])...))

		query, args := dlb.Build()
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("deleting line items: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *SQLiteLineItemRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM line_items`)
	if err != nil {
		return 0, fmt.Errorf("clearing line items: %w", err)
	}
	return affected(res)
}

func (r *SQLiteLineItemRepo) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "line_items")
}

// parentCond matches rows under parentID, treating nil as the root level.
func parentCond(c *sqlbuilder.Cond, parentID *string) string {
	if parentID == nil {
		return c.IsNull("parent_id")
	}
	return c.Equal("parent_id", *parentID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanLineItem scans a single line item; sql.ErrNoRows is returned as is.
func scanLineItem(row rowScanner) (*domain.LineItem, error) {
	var it domain.LineItem
	var kind, monthly, createdAt, updatedAt string
	var parentID, before, after sql.NullString
	var isBlocked sql.NullInt64
	var isOpen int64

	err := row.Scan(
		&it.ID, &parentID, &it.Code, &it.Description, &kind, &before, &after,
		&monthly, &isBlocked, &isOpen, &it.Order, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Kind = domain.RowKind(kind)
	if parentID.Valid {
		it.ParentID = &parentID.String
	}
	if it.BeforeAmount, err = parseDetail(before); err != nil {
		return nil, err
	}
	if it.AfterAmount, err = parseDetail(after); err != nil {
		return nil, err
	}
	if it.MonthlyAllocation, err = parseAllocation(monthly); err != nil {
		return nil, err
	}
	it.IsBlocked = nullableBool(isBlocked)
	it.IsOpen = domain.BoolPtr(intToBool(isOpen))

	if it.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if it.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &it, nil
}

// scanLineItems scans multiple line items from *sql.Rows.
func scanLineItems(rows *sql.Rows) ([]*domain.LineItem, error) {
	var items []*domain.LineItem
	for rows.Next() {
		it, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning line item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line items: %w", err)
	}
	return items, nil
}
