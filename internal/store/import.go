package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// legacyTask is the nested wire format of tasks.json written by the desktop
// app: siblings carry an explicit integer order.
type legacyTask struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Completed bool         `json:"completed"`
	Children  []legacyTask `json:"children"`
	Order     int          `json:"order,omitempty"`
}

// ImportJSON inserts the tasks of a legacy tasks.json file, keeping their ids
// and sibling order. Tasks without an id get a fresh one. It returns the
// number of tasks imported.
func (s *Store) ImportJSON(ctx context.Context, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(string(b)) == "" {
		return 0, nil
	}
	var roots []legacyTask
	if err := json.Unmarshal(b, &roots); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	n := 0
	nowMs := time.Now().UTC().UnixMilli()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var insert func(parentID string, sibs []legacyTask) error
		insert = func(parentID string, sibs []legacyTask) error {
			sort.SliceStable(sibs, func(i, j int) bool { return sibs[i].Order < sibs[j].Order })
			ranks := SequentialRanks(len(sibs))
			for i, t := range sibs {
				id := strings.TrimSpace(t.ID)
				if id == "" {
					id = uuid.NewString()
				}
				if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id, parent_id, rank, title, completed, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
					id, parentID, ranks[i], t.Title, boolToInt(t.Completed), nowMs); err != nil {
					return fmt.Errorf("import %s: %w", id, err)
				}
				n++
				if err := insert(id, t.Children); err != nil {
					return err
				}
			}
			return nil
		}
		return insert("", roots)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
