package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS kg_nodes (
	id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS kg_edges (
	position INTEGER NOT NULL,
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	relation TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (source, target)
);`

// PostgresBackend keeps the graph in two tables. Every Write replaces both
// tables inside one transaction.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create graph tables: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Location() string { return "postgres:kg_nodes,kg_edges" }

func (p *PostgresBackend) Write(ctx context.Context, snap *kg.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM kg_edges"); err != nil {
		return fmt.Errorf("clear edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM kg_nodes"); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}

	ids := make([]string, len(snap.Nodes))
	for i, n := range snap.Nodes {
		ids[i] = n.ID
	}
	if len(ids) > 0 {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO kg_nodes (id) SELECT DISTINCT unnest($1::text[]) ON CONFLICT DO NOTHING",
			pq.Array(ids))
		if err != nil {
			return fmt.Errorf("insert nodes: %w", err)
		}
	}

	sources, targets, relations := splitLinks(snap.Links)
	if len(sources) > 0 {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kg_edges (position, source, target, relation)
			 SELECT ord::int, s, t, r FROM unnest($1::text[], $2::text[], $3::text[]) WITH ORDINALITY AS e(s, t, r, ord)
			 ON CONFLICT (source, target) DO UPDATE SET relation = EXCLUDED.relation`,
			pq.Array(sources), pq.Array(targets), pq.Array(relations))
		if err != nil {
			return fmt.Errorf("insert edges: %w", err)
		}
	}

	return tx.Commit()
}

func (p *PostgresBackend) Read(ctx context.Context) (*kg.Snapshot, error) {
	snap := &kg.Snapshot{Graph: map[string]any{}}

	rows, err := p.db.QueryContext(ctx, "SELECT id FROM kg_nodes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n kg.Node
		if err := rows.Scan(&n.ID); err != nil {
			return nil, err
		}
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := p.db.QueryContext(ctx, "SELECT source, target, relation FROM kg_edges ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var l kg.Link
		if err := edgeRows.Scan(&l.Source, &l.Target, &l.Relation); err != nil {
			return nil, err
		}
		snap.Links = append(snap.Links, l)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	if len(snap.Nodes) == 0 && len(snap.Links) == 0 {
		return nil, kg.ErrNoSnapshot
	}
	return snap, nil
}

// splitLinks turns links into parallel columns. Pairs are normalised so
// that (a,b) and (b,a) collide on the primary key; the later link wins.
func splitLinks(links []kg.Link) (sources, targets, relations []string) {
	index := make(map[[2]string]int, len(links))
	for _, l := range links {
		key := [2]string{l.Source, l.Target}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if i, ok := index[key]; ok {
			relations[i] = l.Relation
			continue
		}
		index[key] = len(sources)
		sources = append(sources, l.Source)
		targets = append(targets, l.Target)
		relations = append(relations, l.Relation)
	}
	return sources, targets, relations
}
