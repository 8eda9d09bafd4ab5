package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dusk-indust/hunkctx/internal/enclosing"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructPrompt_PreservesFileOrder(t *testing.T) {
	files := make([]PRFile, 20)
	for i := range files {
		files[i] = PRFile{Filename: fmt.Sprintf("f%02d.py", i), Patch: "+x"}
	}

	var inFlight, peak atomic.Int32
	slow := func(ctx context.Context, f PRFile) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		// Later files finish first.
		var i int
		fmt.Sscanf(f.Filename, "f%d.py", &i)
		time.Sleep(time.Duration(len(files)-i) * time.Millisecond)
		return RawPatchStrategy(ctx, f)
	}

	convo, err := constructPrompt(context.Background(), files, slow, ReviewMessages, 4)
	require.NoError(t, err)
	require.Len(t, convo, 2)

	user := convo[1].Content
	last := -1
	for _, f := range files {
		idx := strings.Index(user, "## "+f.Filename)
		require.GreaterOrEqual(t, idx, 0, "missing %s", f.Filename)
		assert.Greater(t, idx, last, "%s out of order", f.Filename)
		last = idx
	}
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestConstructPrompt_JoinsWithNewline(t *testing.T) {
	files := []PRFile{
		{Filename: "a.go", Patch: "+a"},
		{Filename: "b.go", Patch: "+b"},
	}
	convo, err := ConstructPrompt(context.Background(), files, RawPatchStrategy, XMLReviewMessages)
	require.NoError(t, err)
	assert.Equal(t, XMLReviewPrompt, convo[0].Content)
	assert.Equal(t, "## a.go\n\n+a\n## b.go\n\n+b", convo[1].Content)
}

func TestConstructPrompt_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(_ context.Context, f PRFile) (string, error) {
		if f.Filename == "bad.py" {
			return "", boom
		}
		return f.Patch, nil
	}
	files := []PRFile{{Filename: "ok.py"}, {Filename: "bad.py"}}

	_, err := ConstructPrompt(context.Background(), files, failing, ReviewMessages)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad.py")
}

func TestBuilder_UsesExpandedContextWhenItFits(t *testing.T) {
	b := NewBuilder(enclosing.NewRegistry(), BuilderConfig{Model: "mixtral-8x7b-32768"})

	convo, err := b.Build(context.Background(), []PRFile{shapesFile(t, areaHunk)})
	require.NoError(t, err)
	require.Len(t, convo, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, convo[0].Role)
	assert.Equal(t, ReviewDiffPrompt, convo[0].Content)
	assert.Contains(t, convo[1].Content, "class Circle(Shape):")
}

func TestBuilder_FallsBackToRawPatches(t *testing.T) {
	file := shapesFile(t, areaHunk)
	counter := NewCharacterCounter(0)

	raw, err := ConstructPrompt(context.Background(), []PRFile{file}, RawPatchStrategy, ReviewMessages)
	require.NoError(t, err)
	rawTokens := counter.CountMessages(raw)

	// Room for the raw patch but not for the expanded class.
	budget := NewBudget(counter, map[string]int{"tiny": rawTokens + 1})
	b := NewBuilder(enclosing.NewRegistry(), BuilderConfig{Model: "tiny", Budget: budget})

	convo, err := b.Build(context.Background(), []PRFile{file})
	require.NoError(t, err)
	assert.Equal(t, raw, convo)
}

func TestBuilder_OverBudget(t *testing.T) {
	budget := NewBudget(nil, map[string]int{"tiny": 10})
	b := NewBuilder(enclosing.NewRegistry(), BuilderConfig{Model: "tiny", Budget: budget})

	_, err := b.Build(context.Background(), []PRFile{shapesFile(t, areaHunk)})
	assert.ErrorIs(t, err, ErrOverBudget)
}
