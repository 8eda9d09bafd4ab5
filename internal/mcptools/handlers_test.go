package mcptools

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/hunkctx/internal/enclosing"
	"github.com/dusk-indust/hunkctx/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureAbsPath returns the absolute path of the shared fixture directory.
func fixtureAbsPath(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/fixtures")
	require.NoError(t, err)
	return abs
}

// newTestService creates a ContextService rooted at the fixture directory.
func newTestService(t *testing.T) *ContextService {
	t.Helper()
	svc := NewContextService(enclosing.NewRegistry(), review.BuilderConfig{})
	svc.SetRoot(fixtureAbsPath(t))
	return svc
}

const classWithMethod = "class C:\n    def m(self):\n        x = 1\n        y = 2\n"

func TestFindEnclosingContext_Source(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, out, err := svc.FindEnclosingContext(ctx, nil, FindEnclosingContextInput{
		Path:      "c.py",
		Source:    classWithMethod,
		StartLine: 3,
	})
	require.NoError(t, err)
	require.True(t, out.Found)
	assert.Equal(t, "C", out.Context.Name)
	assert.Equal(t, 1, out.Context.StartLine)
	assert.Equal(t, 4, out.Context.EndLine)

	_, out, err = svc.FindEnclosingContext(ctx, nil, FindEnclosingContextInput{
		Path:      "c.py",
		Source:    classWithMethod,
		StartLine: 3,
		EndLine:   3,
		Innermost: true,
	})
	require.NoError(t, err)
	require.True(t, out.Found)
	assert.Equal(t, "m", out.Context.Name)
}

func TestResolverFor_InnermostSharesConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewContextService(enclosing.NewRegistry(enclosing.WithLogger(logger)), review.BuilderConfig{})

	first, err := svc.resolverFor("a.py", "", true)
	require.NoError(t, err)
	second, err := svc.resolverFor("b.py", "", true)
	require.NoError(t, err)
	assert.Same(t, first, second, "innermost resolvers are built once")
	assert.Equal(t, enclosing.SelectInnermost, first.(*enclosing.TreeSitterResolver).Selection())

	limited, err := enclosing.NewRegistry().Restrict([]enclosing.Language{enclosing.LangGo})
	require.NoError(t, err)
	_, err = NewContextService(limited, review.BuilderConfig{}).resolverFor("a.py", "", true)
	assert.ErrorIs(t, err, enclosing.ErrUnsupportedLanguage, "innermost honours the configured languages")
}

func TestFindEnclosingContext_ReadsRelativePath(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.FindEnclosingContext(context.Background(), nil, FindEnclosingContextInput{
		Path:      "go_project/service.go",
		StartLine: 17,
		EndLine:   19,
	})
	require.NoError(t, err)
	require.True(t, out.Found)
	assert.Equal(t, "GetUser", out.Context.Name)
	assert.Equal(t, enclosing.KindMethod, out.Context.Kind)
}

func TestFindEnclosingContext_None(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.FindEnclosingContext(context.Background(), nil, FindEnclosingContextInput{
		Path:      "python/shapes.py",
		StartLine: 29,
	})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Nil(t, out.Context)
}

func TestFindEnclosingContext_Errors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.FindEnclosingContext(ctx, nil, FindEnclosingContextInput{Path: "notes.txt", Source: "x", StartLine: 1})
	assert.ErrorIs(t, err, enclosing.ErrUnsupportedLanguage)

	_, _, err = svc.FindEnclosingContext(ctx, nil, FindEnclosingContextInput{Path: "c.py", Source: classWithMethod, StartLine: 0})
	assert.ErrorIs(t, err, enclosing.ErrInvalidRange)

	_, _, err = svc.FindEnclosingContext(ctx, nil, FindEnclosingContextInput{Path: "missing.py", StartLine: 1})
	assert.Error(t, err)

	// An explicit language overrides the extension.
	_, out, err := svc.FindEnclosingContext(ctx, nil, FindEnclosingContextInput{
		Path: "snippet.txt", Source: classWithMethod, Language: "Python", StartLine: 2,
	})
	require.NoError(t, err)
	assert.True(t, out.Found)
}

func TestCheckValidity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, out, err := svc.CheckValidity(ctx, nil, CheckValidityInput{Path: "rust/point.rs"})
	require.NoError(t, err)
	assert.True(t, out.Validity.Valid)
	assert.Empty(t, out.Validity.Error)

	_, out, err = svc.CheckValidity(ctx, nil, CheckValidityInput{Path: "c.py", Source: "def f(:\n    pass\n"})
	require.NoError(t, err)
	assert.False(t, out.Validity.Valid)
	assert.NotEmpty(t, out.Validity.Error)
}

func TestExpandPatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	old := classWithMethod
	current := "class C:\n    def m(self):\n        x = 1\n        y = 3\n"
	file := review.PRFile{
		Filename:        "c.py",
		Patch:           "@@ -4,1 +4,1 @@\n-        y = 2\n+        y = 3\n",
		OldContents:     &old,
		CurrentContents: &current,
	}

	_, out, err := svc.ExpandPatch(ctx, nil, ExpandPatchInput{File: file})
	require.NoError(t, err)
	assert.Equal(t, "## c.py\n\n"+
		"@@ -1,4 +1,4 @@ class C:\n"+
		" class C:\n"+
		"     def m(self):\n"+
		"         x = 1\n"+
		"-        y = 2\n"+
		"+        y = 3", out.Patch)

	_, out, err = svc.ExpandPatch(ctx, nil, ExpandPatchInput{File: file, Numbered: true})
	require.NoError(t, err)
	assert.Equal(t, "## c.py\n\n@@ -4,1 +4,1 @@\n4: +        y = 3\n", out.Patch)

	_, _, err = svc.ExpandPatch(ctx, nil, ExpandPatchInput{})
	assert.Error(t, err)
}

func TestBuildReviewPrompt(t *testing.T) {
	svc := newTestService(t)

	file := review.PRFile{Filename: "new.go", Patch: "@@ -0,0 +1,1 @@\n+package x\n"}
	_, out, err := svc.BuildReviewPrompt(context.Background(), nil, BuildReviewPromptInput{Files: []review.PRFile{file}})
	require.NoError(t, err)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "system", out.Messages[0].Role)
	assert.Equal(t, "## new.go\n\n@@ -0,0 +1,1 @@\n+package x\n", out.Messages[1].Content)
	assert.Greater(t, out.Tokens, 0)

	_, _, err = svc.BuildReviewPrompt(context.Background(), nil, BuildReviewPromptInput{})
	assert.Error(t, err)
}

func TestListLanguages(t *testing.T) {
	limited, err := enclosing.NewRegistry().Restrict([]enclosing.Language{enclosing.LangRust, enclosing.LangGo})
	require.NoError(t, err)
	svc := NewContextService(limited, review.BuilderConfig{})

	_, out, err := svc.ListLanguages(context.Background(), nil, ListLanguagesInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, out.Languages)

	_, _, err = svc.FindEnclosingContext(context.Background(), nil, FindEnclosingContextInput{Path: "a.py", Source: "x = 1\n", StartLine: 1})
	assert.ErrorIs(t, err, enclosing.ErrUnsupportedLanguage)
}
