package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// Run is one batch analysis.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Root       string
	Files      int
	Failed     int
	Summary    analyzer.Summary
}

// Entry is a file result to persist with its content hash.
type Entry struct {
	Result *analyzer.Result
	Hash   string
}

// File is a persisted file result.
type File struct {
	ID              int64
	RunID           int64
	Path            string
	Language        parser.Language
	Hash            string
	Cyclomatic      int
	Maintainability float64
	SLOC            int
}

// Space is a persisted space row. ParentID is nil for the file's unit.
type Space struct {
	ID              int64
	FileID          int64
	ParentID        *int64
	Depth           int
	Kind            models.SpaceKind
	Name            string
	StartLine       int
	EndLine         int
	Cyclomatic      int
	OwnCyclomatic   int
	MaxNesting      int
	NArgs           int
	NExits          int
	Volume          float64
	Maintainability float64
	LOC             models.LOC
}

// SaveRun stores a run and all of its file results in one transaction and
// sets run.ID.
func (s *Store) SaveRun(ctx context.Context, run *Run, entries []Entry) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("save run: encode summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (started_at, finished_at, root, files, failed, summary) VALUES (?, ?, ?, ?, ?, ?)",
		run.StartedAt, run.FinishedAt, run.Root, run.Files, run.Failed, string(summary),
	)
	if err != nil {
		return fmt.Errorf("save run: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("save run: last insert id: %w", err)
	}

	for _, e := range entries {
		if e.Result == nil || e.Result.Root == nil {
			continue
		}
		if err := insertFileTx(ctx, tx, runID, e); err != nil {
			return fmt.Errorf("save run: file %s: %w", e.Result.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: commit: %w", err)
	}
	run.ID = runID
	return nil
}

func insertFileTx(ctx context.Context, tx *sql.Tx, runID int64, e Entry) error {
	root := e.Result.Root
	res, err := tx.ExecContext(ctx,
		"INSERT INTO files (run_id, path, language, hash, cyclomatic, maintainability, sloc) VALUES (?, ?, ?, ?, ?, ?, ?)",
		runID, e.Result.Path, string(e.Result.Language), e.Hash,
		root.Metrics.Cyclomatic, root.Metrics.MaintainabilityIndex, root.Metrics.LOC.Source,
	)
	if err != nil {
		return err
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO spaces (
  file_id, parent_id, depth, kind, name, start_line, end_line,
  cyclomatic, own_cyclomatic, max_nesting, nargs, nexits, volume, maintainability,
  sloc, ploc, lloc, cloc, blank
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Pre-order insertion: a parent always has its id before its children.
	var insert func(sp *models.Space, parent *int64, depth int) error
	insert = func(sp *models.Space, parent *int64, depth int) error {
		m := sp.Metrics
		res, err := stmt.ExecContext(ctx,
			fileID, parent, depth, string(sp.Kind), sp.Name, sp.StartLine, sp.EndLine,
			m.Cyclomatic, sp.Own.Cyclomatic, m.MaxNesting, sp.Own.NArgs.Total, m.NExits,
			m.Halstead.Volume, m.MaintainabilityIndex,
			m.LOC.Source, m.LOC.Physical, m.LOC.Logical, m.LOC.Comment, m.LOC.Blank,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, child := range sp.Spaces {
			if err := insert(child, &id, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return insert(root, nil, 0)
}

// LatestRun returns the most recent run, or nil if none was saved.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, root, files, failed, summary FROM runs ORDER BY id DESC LIMIT 1")
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// Runs returns up to limit runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, root, files, failed, summary FROM runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("runs: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(...any) error }) (*Run, error) {
	run := &Run{}
	var summary string
	if err := scanner.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Root, &run.Files, &run.Failed, &summary); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return run, nil
}

// Files returns the file results of a run ordered by path.
func (s *Store) Files(ctx context.Context, runID int64) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, path, language, hash, cyclomatic, maintainability, sloc FROM files WHERE run_id = ? ORDER BY path",
		runID)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		var lang string
		var hash sql.NullString
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &lang, &hash, &f.Cyclomatic, &f.Maintainability, &f.SLOC); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.Language = parser.Language(lang)
		f.Hash = hash.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// FileSpaces returns the spaces recorded for path in a run, in pre-order.
// It returns nil if the file is not part of the run.
func (s *Store) FileSpaces(ctx context.Context, runID int64, path string) ([]*Space, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
  s.id, s.file_id, s.parent_id, s.depth, s.kind, s.name, s.start_line, s.end_line,
  s.cyclomatic, s.own_cyclomatic, s.max_nesting, s.nargs, s.nexits, s.volume, s.maintainability,
  s.sloc, s.ploc, s.lloc, s.cloc, s.blank
FROM spaces s JOIN files f ON f.id = s.file_id
WHERE f.run_id = ? AND f.path = ?
ORDER BY s.id`, runID, path)
	if err != nil {
		return nil, fmt.Errorf("file spaces: %w", err)
	}
	defer rows.Close()

	var spaces []*Space
	for rows.Next() {
		sp := &Space{}
		var parent sql.NullInt64
		var kind string
		var name sql.NullString
		if err := rows.Scan(
			&sp.ID, &sp.FileID, &parent, &sp.Depth, &kind, &name, &sp.StartLine, &sp.EndLine,
			&sp.Cyclomatic, &sp.OwnCyclomatic, &sp.MaxNesting, &sp.NArgs, &sp.NExits, &sp.Volume, &sp.Maintainability,
			&sp.LOC.Source, &sp.LOC.Physical, &sp.LOC.Logical, &sp.LOC.Comment, &sp.LOC.Blank,
		); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		if parent.Valid {
			id := parent.Int64
			sp.ParentID = &id
		}
		sp.Kind = models.SpaceKind(kind)
		sp.Name = name.String
		spaces = append(spaces, sp)
	}
	return spaces, rows.Err()
}
