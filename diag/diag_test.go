package diag_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docbind/diag"
)

func TestEvents_ErrorSummarizesFirstThree(t *testing.T) {
	evs := diag.Events{
		{Code: diag.CodeRequired, Path: "/a"},
		{Code: diag.CodeInvalidType, Path: "/b"},
		{Code: diag.CodeParseError, Path: "/c"},
		{Code: diag.CodeOverflow, Path: "/d"},
	}
	assert.Equal(t, "required at /a; invalid_type at /b; parse_error at /c; ... (total 4)", evs.Error())
	assert.Equal(t, "", diag.Events(nil).Error())
}

func TestEvent_ErrorIncludesPositionAndUnwraps(t *testing.T) {
	cause := strconv.ErrSyntax
	e := diag.Event{Code: diag.CodeParseError, Path: "/age", Line: 2, Column: 6, Message: "bad", Cause: cause}
	assert.Equal(t, "parse_error at /age (line 2, column 6): bad", e.Error())
	assert.True(t, errors.Is(e, strconv.ErrSyntax))
}

func TestAsEvents(t *testing.T) {
	evs := diag.Events{{Code: diag.CodeRequired, Path: "/name"}}
	wrapped := fmt.Errorf("load config: %w", evs)

	got, ok := diag.AsEvents(wrapped)
	require.True(t, ok)
	assert.True(t, got.HasCode(diag.CodeRequired))

	_, ok = diag.AsEvents(errors.New("plain"))
	assert.False(t, ok)
	_, ok = diag.AsEvents(nil)
	assert.False(t, ok)
}

func TestCollector_ConcurrentReportAndErr(t *testing.T) {
	c := diag.NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sev := diag.SeverityError
			if i%2 == 0 {
				sev = diag.SeverityWarning
			}
			c.Report(diag.Event{Severity: sev, Code: diag.CodeNullValue})
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Events(), 50)
	err := c.Err()
	require.Error(t, err)
	evs, ok := diag.AsEvents(err)
	require.True(t, ok)
	assert.Len(t, evs, 25)

	c.Reset()
	assert.NoError(t, c.Err())
}

func TestTee_SkipsNil(t *testing.T) {
	var got []string
	r := diag.Tee(nil, diag.ReporterFunc(func(e diag.Event) { got = append(got, e.Code) }), diag.Discard)
	r.Report(diag.Event{Code: diag.CodeUnknownKey})
	assert.Equal(t, []string{diag.CodeUnknownKey}, got)
}

func TestSlogReporter_LevelsAndAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	r := diag.NewSlogReporter(logger)

	r.Report(diag.Event{
		Severity: diag.SeverityWarning,
		Code:     diag.CodeNullValue,
		Message:  "null value",
		Path:     "/port",
		Field:    "Port",
		Expected: "int",
	})
	r.Report(diag.Event{Code: diag.CodeParseError, Message: "bad int", Path: "/age", Line: 3, Column: 5})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "code=null_value")
	assert.Contains(t, out, "field=Port")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "line=3")
}
