package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"drive/internal/core"

	"github.com/jackc/pgx/v5"
)

// Repository reads and seeds the drive_nodes catalogue.
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CountNodes returns the number of catalogue rows.
func (r *Repository) CountNodes(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM drive_nodes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return n, nil
}

// SeedIfEmpty writes tree into an empty catalogue. It reports whether
// anything was written.
func (r *Repository) SeedIfEmpty(ctx context.Context, tree *core.Filetree) (bool, error) {
	n, err := r.CountNodes(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertLevel(ctx, tx, nil, tree.Root()); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}

	files, folders := tree.Count()
	slog.Info("seeded catalogue", "files", files, "folders", folders)
	return true, nil
}

func insertLevel(ctx context.Context, tx pgx.Tx, parentID *int64, nodes []core.Node) error {
	for i, n := range nodes {
		var link *string
		if f, ok := n.(*core.File); ok {
			l := f.Link()
			link = &l
		}

		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO drive_nodes (parent_id, position, kind, name, link)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, parentID, i, string(n.Kind()), n.Name(), link).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert node %q: %w", n.Name(), err)
		}

		if folder, ok := n.(*core.Folder); ok {
			if err := insertLevel(ctx, tx, &id, folder.Contents()); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadTree reads the whole catalogue and assembles it into a tree.
func (r *Repository) LoadTree(ctx context.Context) (*core.Filetree, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, parent_id, position, kind, name, link
		FROM drive_nodes
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodeRows []NodeRow
	for rows.Next() {
		var row NodeRow
		if err := rows.Scan(
			&row.ID,
			&row.ParentID,
			&row.Position,
			&row.Kind,
			&row.Name,
			&row.Link,
		); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		nodeRows = append(nodeRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}

	nodes, err := assembleTree(nodeRows)
	if err != nil {
		return nil, err
	}
	return core.NewFiletree(nodes...), nil
}

// assembleTree links rows to their parents and orders every level by
// position. Rows that cannot be reached from the top level are an error.
func assembleTree(rows []NodeRow) ([]core.Node, error) {
	children := make(map[int64][]NodeRow)
	var top []NodeRow
	for _, row := range rows {
		if row.ParentID == nil {
			top = append(top, row)
			continue
		}
		children[*row.ParentID] = append(children[*row.ParentID], row)
	}

	built := 0
	var build func(level []NodeRow) ([]core.Node, error)
	build = func(level []NodeRow) ([]core.Node, error) {
		sort.SliceStable(level, func(i, j int) bool {
			return level[i].Position < level[j].Position
		})

		nodes := make([]core.Node, 0, len(level))
		for _, row := range level {
			built++
			switch core.Kind(row.Kind) {
			case core.KindFile:
				link := ""
				if row.Link != nil {
					link = *row.Link
				}
				nodes = append(nodes, core.NewFile(row.Name, link))
			case core.KindFolder:
				contents, err := build(children[row.ID])
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, core.NewFolder(row.Name, contents...))
			default:
				return nil, fmt.Errorf("%w: row %d has unknown kind %q", core.ErrInvalidNode, row.ID, row.Kind)
			}
		}
		return nodes, nil
	}

	nodes, err := build(top)
	if err != nil {
		return nil, err
	}
	if built != len(rows) {
		return nil, fmt.Errorf("%w: %d rows unreachable from the top level", core.ErrInvalidNode, len(rows)-built)
	}
	return nodes, nil
}
