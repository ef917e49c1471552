package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func analyze(t *testing.T, lang parser.Language, path, src string) *analyzer.Result {
	t.Helper()
	res, err := analyzer.New().AnalyzeSource(context.Background(), lang, path, []byte(src))
	require.NoError(t, err)
	return res
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func TestLatestRunEmpty(t *testing.T) {
	s := newTestStore(t)

	run, err := s.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestSaveRunAndReadBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goRes := analyze(t, parser.LangGo, "a.go", "package a\n\nfunc A(x int) int {\n\tif x > 0 {\n\t\treturn x\n\t}\n\treturn 0\n}\n")
	pyRes := analyze(t, parser.LangPython, "b.py", "class B:\n    def m(self, y):\n        return y\n")

	started := time.Now().Add(-time.Second).Truncate(time.Second)
	run := &Run{
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Root:       ".",
		Files:      2,
		Summary:    analyzer.Summarize([]*analyzer.Result{goRes, pyRes}, models.DefaultThresholds()),
	}
	require.NoError(t, s.SaveRun(ctx, run, []Entry{
		{Result: goRes, Hash: "h1"},
		{Result: pyRes, Hash: "h2"},
		{Result: nil},
	}))
	require.Positive(t, run.ID)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, ".", latest.Root)
	assert.Equal(t, 2, latest.Files)
	assert.Equal(t, run.Summary, latest.Summary)
	assert.WithinDuration(t, started, latest.StartedAt, time.Second)

	files, err := s.Files(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.go", files[0].Path)
	assert.Equal(t, parser.LangGo, files[0].Language)
	assert.Equal(t, "h1", files[0].Hash)
	assert.Equal(t, goRes.Root.Metrics.Cyclomatic, files[0].Cyclomatic)
	assert.Equal(t, "b.py", files[1].Path)

	spaces, err := s.FileSpaces(ctx, run.ID, "b.py")
	require.NoError(t, err)
	require.Len(t, spaces, 3)

	unit, class, method := spaces[0], spaces[1], spaces[2]
	assert.Equal(t, models.SpaceUnit, unit.Kind)
	assert.Nil(t, unit.ParentID)
	assert.Equal(t, models.SpaceClass, class.Kind)
	assert.Equal(t, "B", class.Name)
	require.NotNil(t, class.ParentID)
	assert.Equal(t, unit.ID, *class.ParentID)
	assert.Equal(t, models.SpaceFunction, method.Kind)
	assert.Equal(t, "m", method.Name)
	assert.Equal(t, 2, method.Depth)
	assert.Equal(t, 2, method.NArgs)
	assert.Equal(t, pyRes.Root.Metrics.LOC, unit.LOC)
}

func TestFileSpacesUnknownFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &Run{StartedAt: time.Now(), FinishedAt: time.Now(), Root: "."}
	require.NoError(t, s.SaveRun(ctx, run, nil))

	spaces, err := s.FileSpaces(ctx, run.ID, "missing.go")
	require.NoError(t, err)
	assert.Empty(t, spaces)
}

func TestRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, root := range []string{"one", "two", "three"} {
		run := &Run{StartedAt: time.Now(), FinishedAt: time.Now(), Root: root}
		require.NoError(t, s.SaveRun(ctx, run, nil))
	}

	runs, err := s.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "three", runs[0].Root)
	assert.Equal(t, "two", runs[1].Root)
}

func TestSaveRunRollsBackOnDuplicatePath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res := analyze(t, parser.LangGo, "a.go", "package a\n")
	run := &Run{StartedAt: time.Now(), FinishedAt: time.Now(), Root: "."}
	err := s.SaveRun(ctx, run, []Entry{{Result: res}, {Result: res}})
	require.Error(t, err)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest, "failed save must not leave a run behind")
}
