package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"tasknav/internal/model"
	"tasknav/internal/repo"

	"github.com/google/uuid"
)

const selectColumns = `t.id, t.parent_id, t.rank, t.title, t.completed, t.created_at_unixms`

// subtreeCTE selects the ids of ? and all of its descendants.
const subtreeCTE = `WITH RECURSIVE sub(id) AS (
	SELECT id FROM tasks WHERE id = ?
	UNION ALL
	SELECT c.id FROM tasks c JOIN sub ON c.parent_id = sub.id
)`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanRows(rows *sql.Rows) ([]taskRow, error) {
	defer rows.Close()
	var out []taskRow
	for rows.Next() {
		var r taskRow
		var completed int
		if err := rows.Scan(&r.id, &r.parentID, &r.rank, &r.title, &completed, &r.createdMs); err != nil {
			return nil, err
		}
		r.completed = completed != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildForest assembles the children of parentID from a flat row set.
func buildForest(rows []taskRow, parentID string) []model.Task {
	byParent := map[string][]taskRow{}
	for _, r := range rows {
		byParent[r.parentID] = append(byParent[r.parentID], r)
	}
	var build func(pid string) []model.Task
	build = func(pid string) []model.Task {
		sibs := byParent[pid]
		sortRows(sibs)
		out := make([]model.Task, 0, len(sibs))
		for _, r := range sibs {
			out = append(out, model.Task{
				ID:        r.id,
				Title:     r.title,
				Completed: r.completed,
				Children:  build(r.id),
			})
		}
		return out
	}
	return build(parentID)
}

func loadSubtree(ctx context.Context, q querier, id string) (model.Task, error) {
	rows, err := q.QueryContext(ctx, subtreeCTE+` SELECT `+selectColumns+` FROM tasks t JOIN sub ON t.id = sub.id`, id)
	if err != nil {
		return model.Task{}, err
	}
	rs, err := scanRows(rows)
	if err != nil {
		return model.Task{}, err
	}
	for _, r := range rs {
		if r.id == id {
			return model.Task{
				ID:        r.id,
				Title:     r.title,
				Completed: r.completed,
				Children:  buildForest(rs, id),
			}, nil
		}
	}
	return model.Task{}, repo.NotFoundError{Kind: "task", ID: id}
}

func exists(ctx context.Context, q querier, id string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// maxRankLen bounds appended ranks. Repeated appends past the top digits
// grow the rank by one character each, so the group is renumbered instead.
const maxRankLen = 8

// nextRank returns a rank after every current child of parentID.
func nextRank(ctx context.Context, tx *sql.Tx, parentID string) (string, error) {
	var max sql.NullString
	if err := tx.QueryRowContext(ctx, `SELECT MAX(rank) FROM tasks WHERE parent_id = ?`, parentID).Scan(&max); err != nil {
		return "", err
	}
	if !max.Valid || strings.TrimSpace(max.String) == "" {
		return RankInitial()
	}
	if r, err := RankAfter(max.String); err == nil && len(r) <= maxRankLen {
		return r, nil
	}
	return rebalance(ctx, tx, parentID)
}

// rebalance rewrites the children of parentID with evenly spaced ranks and
// returns a free rank after the last of them.
func rebalance(ctx context.Context, tx *sql.Tx, parentID string) (string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks t WHERE t.parent_id = ?`, parentID)
	if err != nil {
		return "", err
	}
	rs, err := scanRows(rows)
	if err != nil {
		return "", err
	}
	sortRows(rs)
	ranks := SequentialRanks(len(rs) + 1)
	for i, r := range rs {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET rank = ? WHERE id = ?`, ranks[i], r.id); err != nil {
			return "", err
		}
	}
	return ranks[len(rs)], nil
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	t, err := loadSubtree(ctx, s.db, id)
	return t, repo.Unavailable("get_task", err)
}

func (s *Store) LoadRootTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks t`)
	if err != nil {
		return nil, repo.Unavailable("load_root_tasks", err)
	}
	rs, err := scanRows(rows)
	if err != nil {
		return nil, repo.Unavailable("load_root_tasks", err)
	}
	return buildForest(rs, ""), nil
}

func (s *Store) LoadSubtasks(ctx context.Context, parentID string) ([]model.Task, error) {
	t, err := loadSubtree(ctx, s.db, parentID)
	if err != nil {
		return nil, repo.Unavailable("load_subtasks", err)
	}
	return t.Children, nil
}

func (s *Store) AddTask(ctx context.Context, parentID, title string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if err := repo.ValidateTitle("add_task", title); err != nil {
		return model.Task{}, err
	}
	var out model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if parentID != "" {
			ok, err := exists(ctx, tx, parentID)
			if err != nil {
				return err
			}
			if !ok {
				return repo.NotFoundError{Kind: "task", ID: parentID}
			}
		}
		rank, err := nextRank(ctx, tx, parentID)
		if err != nil {
			return err
		}
		out = model.Task{ID: uuid.NewString(), Title: title, Children: []model.Task{}}
		_, err = tx.ExecContext(ctx, `INSERT INTO tasks(id, parent_id, rank, title, completed, created_at_unixms) VALUES(?, ?, ?, ?, 0, ?)`,
			out.ID, parentID, rank, title, time.Now().UTC().UnixMilli())
		return err
	})
	if err != nil {
		return model.Task{}, repo.Unavailable("add_task", err)
	}
	return out, nil
}

func (s *Store) UpdateTask(ctx context.Context, id, newTitle string) (model.Task, error) {
	newTitle = strings.TrimSpace(newTitle)
	if err := repo.ValidateTitle("update_task", newTitle); err != nil {
		return model.Task{}, err
	}
	return s.updateOne(ctx, "update_task", id, `UPDATE tasks SET title = ? WHERE id = ?`, newTitle, id)
}

func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	return s.updateOne(ctx, "toggle_complete", id, `UPDATE tasks SET completed = 1 - completed WHERE id = ?`, id)
}

func (s *Store) updateOne(ctx context.Context, op, id, stmt string, args ...any) (model.Task, error) {
	var out model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return repo.NotFoundError{Kind: "task", ID: id}
		}
		out, err = loadSubtree(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.Task{}, repo.Unavailable(op, err)
	}
	return out, nil
}

// RemoveTask deletes id and its whole subtree.
func (s *Store) RemoveTask(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, subtreeCTE+` DELETE FROM tasks WHERE id IN (SELECT id FROM sub)`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repo.NotFoundError{Kind: "task", ID: id}
		}
		return nil
	})
	return repo.Unavailable("remove_task", err)
}

// ReorderChildren rewrites the ranks of parentID's children in newOrder.
func (s *Store) ReorderChildren(ctx context.Context, parentID string, newOrder []string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if parentID != "" {
			ok, err := exists(ctx, tx, parentID)
			if err != nil {
				return err
			}
			if !ok {
				return repo.NotFoundError{Kind: "task", ID: parentID}
			}
		}
		rows, err := tx.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks t WHERE t.parent_id = ?`, parentID)
		if err != nil {
			return err
		}
		rs, err := scanRows(rows)
		if err != nil {
			return err
		}
		kids := make([]model.Task, 0, len(rs))
		for _, r := range rs {
			kids = append(kids, model.Task{ID: r.id})
		}
		if err := repo.ValidateOrder(kids, newOrder); err != nil {
			return err
		}
		for i, rank := range SequentialRanks(len(newOrder)) {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET rank = ? WHERE id = ?`, rank, newOrder[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return repo.Unavailable("reorder_children", err)
}

// MoveTask re-parents id under newParentID ("" is root) as its last child.
func (s *Store) MoveTask(ctx context.Context, id, newParentID string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return repo.NotFoundError{Kind: "task", ID: id}
		}
		if newParentID != "" {
			ok, err := exists(ctx, tx, newParentID)
			if err != nil {
				return err
			}
			if !ok {
				return repo.NotFoundError{Kind: "task", ID: newParentID}
			}
			var inside int
			if err := tx.QueryRowContext(ctx, subtreeCTE+` SELECT COUNT(1) FROM sub WHERE id = ?`, id, newParentID).Scan(&inside); err != nil {
				return err
			}
			if inside > 0 {
				return repo.InvalidOperationError{Op: "move_task", Reason: "cannot move a task under itself"}
			}
		}
		rank, err := nextRank(ctx, tx, newParentID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE tasks SET parent_id = ?, rank = ? WHERE id = ?`, newParentID, rank, id)
		return err
	})
	return repo.Unavailable("move_task", err)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

var _ repo.Repository = (*Store)(nil)
