package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"myfeed/internal/adapter/out/storage"
	"myfeed/internal/model"
	"myfeed/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

var (
	ErrBuildingQuery = errors.New("error building sql-query")
)

type PreferenceStorage struct {
	db     trmpgx.Tr
	getter *trmpgx.CtxGetter
}

// NewPreferenceStorage takes the pool (or anything shaped like it); queries
// join the transaction carried by ctx when there is one.
func NewPreferenceStorage(db trmpgx.Tr, getter *trmpgx.CtxGetter) *PreferenceStorage {
	return &PreferenceStorage{
		db:     db,
		getter: getter,
	}
}

func returning() string {
	return "RETURNING " + strings.Join(tableinfo.PreferenceColumns, ", ")
}

func (s *PreferenceStorage) UpsertPreference(ctx context.Context, p model.ContentPreference) (model.ContentPreference, error) {
	query, args, err := sq.
		Insert(tableinfo.PreferencesTableName).
		Columns(
			tableinfo.PreferenceUserIDColumn,
			tableinfo.PreferenceReferenceIDColumn,
			tableinfo.PreferenceTypeColumn,
			tableinfo.PreferenceStatusColumn,
			tableinfo.PreferenceFeedIDColumn,
		).
		Values(p.UserID, p.ReferenceID, string(p.Type), string(p.Status), p.FeedID).
		Suffix(fmt.Sprintf("ON CONFLICT (%s, %s, %s, %s) DO UPDATE SET %s = EXCLUDED.%s %s",
			tableinfo.PreferenceUserIDColumn,
			tableinfo.PreferenceReferenceIDColumn,
			tableinfo.PreferenceTypeColumn,
			tableinfo.PreferenceFeedIDColumn,
			tableinfo.PreferenceStatusColumn,
			tableinfo.PreferenceStatusColumn,
			returning(),
		)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.ContentPreference{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	out, err := scanPreference(tr.QueryRow(ctx, query, args...))
	if err != nil {
		return model.ContentPreference{}, fmt.Errorf("exec upsert preference: %w", err)
	}
	return out, nil
}

func (s *PreferenceStorage) DeletePreference(ctx context.Context, params storage.DeletePreferenceParams) (int64, error) {
	where := sq.Eq{
		tableinfo.PreferenceUserIDColumn:      params.UserID,
		tableinfo.PreferenceReferenceIDColumn: params.ReferenceID,
		tableinfo.PreferenceTypeColumn:        string(params.Type),
	}
	if !params.AnyFeed {
		where[tableinfo.PreferenceFeedIDColumn] = params.FeedID
	}
	if len(params.Statuses) > 0 {
		where[tableinfo.PreferenceStatusColumn] = statusStrings(params.Statuses)
	}

	query, args, err := sq.
		Delete(tableinfo.PreferencesTableName).
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	tag, err := tr.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec delete preference: %w", err)
	}
	return tag.RowsAffected(), nil
}

func listPreferencesQueryBuilder(params storage.ListPreferencesParams) (sq.SelectBuilder, error) {
	qb := sq.
		Select(tableinfo.PreferenceColumns...).
		From(tableinfo.PreferencesTableName).
		Where(sq.Eq{
			tableinfo.PreferenceUserIDColumn: params.UserID,
			tableinfo.PreferenceTypeColumn:   string(params.Type),
			tableinfo.PreferenceFeedIDColumn: params.FeedID,
		}).
		Limit(uint64(params.Limit)).
		PlaceholderFormat(sq.Dollar)

	if len(params.Statuses) > 0 {
		qb = qb.Where(sq.Eq{tableinfo.PreferenceStatusColumn: statusStrings(params.Statuses)})
	}

	keyset := fmt.Sprintf("(%s, %s)", tableinfo.PreferenceCreatedAtColumn, tableinfo.PreferenceIDColumn)
	desc := []string{
		fmt.Sprintf("%s DESC", tableinfo.PreferenceCreatedAtColumn),
		fmt.Sprintf("%s DESC", tableinfo.PreferenceIDColumn),
	}

	if params.Cursor == nil {
		return qb.OrderBy(desc...), nil
	}

	switch params.Direction {
	case storage.DirectionAfter:
		return qb.
			Where(sq.Expr(keyset+" < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)).
			OrderBy(desc...), nil
	case storage.DirectionBefore:
		return qb.
			Where(sq.Expr(keyset+" > (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)).
			OrderBy(
				fmt.Sprintf("%s ASC", tableinfo.PreferenceCreatedAtColumn),
				fmt.Sprintf("%s ASC", tableinfo.PreferenceIDColumn),
			), nil
	default:
		return qb, storage.ErrDirectionUnset
	}
}

func (s *PreferenceStorage) ListPreferences(ctx context.Context, params storage.ListPreferencesParams) ([]model.ContentPreference, error) {
	qb, err := listPreferencesQueryBuilder(params)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select preferences: %w", err)
	}
	defer rows.Close()

	out := make([]model.ContentPreference, 0, params.Limit)
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if params.Cursor != nil && params.Direction == storage.DirectionBefore {
		slices.Reverse(out)
	}
	return out, nil
}

func scanPreference(row pgx.Row) (model.ContentPreference, error) {
	var (
		p           model.ContentPreference
		typ, status string
		createdAt   time.Time
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.ReferenceID,
		&typ,
		&status,
		&p.FeedID,
		&createdAt,
	); err != nil {
		return model.ContentPreference{}, err
	}
	p.Type = model.ContentPreferenceType(typ)
	p.Status = model.ContentPreferenceStatus(status)
	p.CreatedAt = createdAt
	return p, nil
}

func statusStrings(in []model.ContentPreferenceStatus) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
