package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/andyjacy/aicommonplatform/store"
)

// CreateQAHistory inserts one completed run.
func (d *DB) CreateQAHistory(ctx context.Context, create *store.QAHistory) (*store.QAHistory, error) {
	stmt := `
		INSERT INTO qa_history (qa_id, user_id, question, answer, intent, confidence, sources, execution_time, trace_id, trace_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_ts
	`
	err := d.db.QueryRowContext(ctx, stmt,
		create.QAID,
		create.UserID,
		create.Question,
		create.Answer,
		create.Intent,
		create.Confidence,
		create.Sources,
		create.ExecutionTime,
		create.TraceID,
		create.TraceData,
	).Scan(&create.ID, &create.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert qa history")
	}
	return create, nil
}

// ListQAHistory lists runs matching the filter, newest first.
func (d *DB) ListQAHistory(ctx context.Context, find *store.FindQAHistory) ([]*store.QAHistory, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.QAID != nil {
		where, args = append(where, "qa_id = ?"), append(args, *find.QAID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}

	query := `SELECT id, qa_id, user_id, question, answer, intent, confidence, sources, execution_time, trace_id, trace_data, created_ts
		FROM qa_history
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`

	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list qa history")
	}
	defer rows.Close()

	list := []*store.QAHistory{}
	for rows.Next() {
		var h store.QAHistory
		if err := rows.Scan(
			&h.ID,
			&h.QAID,
			&h.UserID,
			&h.Question,
			&h.Answer,
			&h.Intent,
			&h.Confidence,
			&h.Sources,
			&h.ExecutionTime,
			&h.TraceID,
			&h.TraceData,
			&h.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan qa history")
		}
		list = append(list, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate qa history")
	}
	return list, nil
}

// CountQAHistory returns the total number of persisted runs.
func (d *DB) CountQAHistory(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM qa_history").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count qa history")
	}
	return count, nil
}
