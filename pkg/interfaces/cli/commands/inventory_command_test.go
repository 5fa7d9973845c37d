package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/pantry/pkg/domain/entities"
)

type harness struct {
	dir     string
	data    string
	log     string
	format  string
	stdin   string
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	lastErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{
		dir:    dir,
		data:   filepath.Join(dir, "data.txt"),
		log:    filepath.Join(dir, "log.txt"),
		format: "text",
	}
}

// run executes one command line with fresh output buffers, as a separate process would
func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	cmd := NewInventoryCommand(Config{
		DataFile: h.data,
		LogFile:  h.log,
		Format:   h.format,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdin:    strings.NewReader(h.stdin),
		Stdout:   &h.stdout,
		Stderr:   &h.stderr,
	})
	h.lastErr = cmd.Execute(context.Background(), args)
	return Report(&h.stderr, h.lastErr)
}

func TestExecute_AddListAcrossRuns(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("add", "-name", "Milk", "-qty", "10", "-expires", "2024-01-05"))
	assert.Equal(t, "Added Perishable | Milk | Qty: 10 | Expires: 2024-01-05\n", h.stdout.String())
	require.Equal(t, 0, h.run("add", "-name", "Milk", "-qty", "5", "-expires", "2024-01-05"))
	require.Equal(t, 0, h.run("add", "-name", "Rice", "-qty", "20"))

	require.Equal(t, 0, h.run("list"))
	assert.Equal(t,
		"Perishable | Milk | Qty: 15 | Expires: 2024-01-05\n"+
			"Non-Perishable | Rice | Qty: 20\n",
		h.stdout.String())

	require.Equal(t, 0, h.run("list", "-by", "alphabetical"))
	assert.Equal(t, "Milk | Qty: 15\nRice | Qty: 20\n", h.stdout.String())

	state, err := os.ReadFile(h.data)
	require.NoError(t, err)
	assert.Equal(t,
		"DATE: 0001-01-01\n"+
			"Perishable | Milk | Qty: 15 | Expires: 2024-01-05\n"+
			"Non-Perishable | Rice | Qty: 20\n",
		string(state))
}

func TestExecute_UsePerishableEarliestFirst(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "-name", "Milk", "-qty", "10", "-expires", "2024-01-05"))
	require.Equal(t, 0, h.run("add", "-name", "Milk", "-qty", "3", "-expires", "2024-01-10"))

	require.Equal(t, 0, h.run("use", "-name", "Milk", "-qty", "12", "-perishable"))
	assert.Equal(t,
		"Used 12 of Milk\n"+
			"  2024-01-05: 10 (depleted)\n"+
			"  2024-01-10: 2\n",
		h.stdout.String())

	require.Equal(t, 0, h.run("info", "-name", "Milk"))
	assert.Equal(t, "Perishable | Milk | Qty: 1 | Expires: 2024-01-10\n", h.stdout.String())
}

func TestExecute_DomainErrorsExitOne(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "-name", "Rice", "-qty", "20"))

	testCases := []struct {
		name string
		args []string
		kind error
	}{
		{"insufficient stock", []string{"use", "-name", "Rice", "-qty", "25"}, entities.ErrInsufficientStock},
		{"unknown item", []string{"use", "-name", "Beans", "-qty", "1"}, entities.ErrItemNotFound},
		{"zero quantity", []string{"add", "-name", "Beans", "-qty", "0"}, entities.ErrValidation},
		{"bad quantity", []string{"add", "-name", "Beans", "-qty", "lots"}, entities.ErrValidation},
		{"bad date", []string{"set-date", "2024-13-01"}, entities.ErrValidation},
		{"no batch", []string{"info", "-name", "Rice", "-expires", "2024-01-05"}, entities.ErrBatchNotFound},
		{"no item", []string{"info", "-name", "Beans"}, entities.ErrItemNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, 1, h.run(tc.args...))
			assert.ErrorIs(t, h.lastErr, tc.kind)
			assert.True(t, strings.HasPrefix(h.stderr.String(), "Error: "), h.stderr.String())
		})
	}

	require.Equal(t, 0, h.run("list"))
	assert.Equal(t, "Non-Perishable | Rice | Qty: 20\n", h.stdout.String())
}

func TestExecute_UsageErrorsExitTwo(t *testing.T) {
	h := newHarness(t)

	testCases := [][]string{
		{},
		{"frobnicate"},
		{"add", "-bogus"},
		{"add", "-name", "Rice"},
		{"set-date"},
		{"list", "-by", "size"},
		{"info", "-name", "Rice", "-expires", "2024-01-05", "-non-perishable"},
		{"date", "extra"},
	}
	for _, args := range testCases {
		assert.Equal(t, 2, h.run(args...), "args %v", args)
		assert.ErrorIs(t, h.lastErr, ErrUsage, "args %v", args)
	}

	h.format = "yaml"
	assert.Equal(t, 2, h.run("list"))
}

func TestExecute_SetDatePastIsRejected(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("set-date", "2024-02-01"))

	assert.Equal(t, 1, h.run("set-date", "2024-01-15"))
	assert.ErrorIs(t, h.lastErr, entities.ErrPastDate)

	require.Equal(t, 0, h.run("date"))
	assert.Equal(t, "2024-02-01\n", h.stdout.String())
}

func TestExecute_SetDateSweepsAndJournals(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "-name", "Yogurt", "-qty", "4", "-expires", "2024-01-03"))
	require.Equal(t, 0, h.run("set-date", "2024-01-03"))
	assert.Equal(t, "Date set to 2024-01-03\n", h.stdout.String())

	require.Equal(t, 0, h.run("list"))
	assert.Empty(t, h.stdout.String())

	log, err := os.ReadFile(h.log)
	require.NoError(t, err)
	assert.Contains(t, string(log), "\n=== 2024-01-03 ===\nEXPIRED: Perishable | Yogurt | Qty: 4 | Expires: 2024-01-03\n")
}

func TestExecute_StorageWarningExitsZero(t *testing.T) {
	h := newHarness(t)
	h.data = filepath.Join(h.dir, "missing", "data.txt")

	code := h.run("add", "-name", "Rice", "-qty", "20")
	assert.Equal(t, 0, code)
	assert.True(t, entities.IsWarning(h.lastErr))
	assert.Equal(t, "Added Non-Perishable | Rice | Qty: 20\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "Warning: ")
}

func TestExecute_JSONOutput(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "-name", "Milk", "-qty", "2.5", "-expires", "2024-01-05"))

	h.format = "json"
	require.Equal(t, 0, h.run("list"))

	var views []map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Milk;2024-01-05", views[0]["key"])
	assert.Equal(t, "Perishable", views[0]["kind"])
	assert.Equal(t, "2024-01-05", views[0]["expiration_date"])

	require.Equal(t, 0, h.run("date"))
	assert.JSONEq(t, `{"date": "0001-01-01"}`, h.stdout.String())

	require.Equal(t, 0, h.run("add", "-name", "Rice", "-qty", "1"))
	assert.Empty(t, h.stdout.String(), "confirmations are text only")
}

func TestExecute_ImportExport(t *testing.T) {
	h := newHarness(t)
	source := filepath.Join(h.dir, "in.csv")
	require.NoError(t, os.WriteFile(source, []byte(
		"kind,name,quantity,expiration_date\n"+
			"Perishable,Milk,10,2024-01-05\n"+
			"Perishable,Milk,2,2024-01-05\n"+
			"Non-Perishable,Rice,20,\n"), 0o644))

	require.Equal(t, 0, h.run("import", source))
	assert.Equal(t, "Imported 3 batches from "+source+"\n", h.stdout.String())

	target := filepath.Join(h.dir, "out.csv")
	require.Equal(t, 0, h.run("export", target))

	exported, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t,
		"kind,name,quantity,expiration_date\n"+
			"Perishable,Milk,12,2024-01-05\n"+
			"Non-Perishable,Rice,20,\n",
		string(exported))

	assert.Equal(t, 1, h.run("import", filepath.Join(h.dir, "nope.csv")))
}

func TestExecute_Shell(t *testing.T) {
	h := newHarness(t)
	h.stdin = strings.Join([]string{
		`add -name "Oat Milk" -qty 10 -expires 2024-01-05`,
		`add -name 'Oat Milk' -qty 3 -expires 2024-01-10`,
		``,
		`use -name "Oat Milk" -qty 99 -perishable`,
		`set-date 2024-01-05`,
		`list`,
		`quit`,
		`add -name Never -qty 1`,
	}, "\n")

	require.Equal(t, 0, h.run("shell"))
	assert.Equal(t,
		"Added Perishable | Oat Milk | Qty: 10 | Expires: 2024-01-05\n"+
			"Added Perishable | Oat Milk | Qty: 3 | Expires: 2024-01-10\n"+
			"Date set to 2024-01-05\n"+
			"Perishable | Oat Milk | Qty: 3 | Expires: 2024-01-10\n",
		h.stdout.String())
	assert.Contains(t, h.stderr.String(), "Error: not enough stock")

	assert.Equal(t, 1, h.run("info", "-name", "Never"), "lines after quit are not run")
}

func TestSplitArgs(t *testing.T) {
	testCases := []struct {
		line     string
		expected []string
	}{
		{"", nil},
		{"   ", nil},
		{"list", []string{"list"}},
		{"add  -name Rice\t-qty 2", []string{"add", "-name", "Rice", "-qty", "2"}},
		{`info -name "Oat Milk"`, []string{"info", "-name", "Oat Milk"}},
		{`info -name 'say "hi"'`, []string{"info", "-name", `say "hi"`}},
		{`add -name ""`, []string{"add", "-name", ""}},
		{`a"b c"d`, []string{"ab cd"}},
	}

	for _, tc := range testCases {
		args, err := SplitArgs(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.expected, args, tc.line)
	}

	_, err := SplitArgs(`info -name "Oat`)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 0, ExitCode(entities.ErrStorage))
	assert.Equal(t, 1, ExitCode(errors.Join(entities.ErrStorage, entities.ErrItemNotFound)))
	assert.Equal(t, 1, ExitCode(entities.ErrPastDate))
	assert.Equal(t, 2, ExitCode(ErrUsage))
}
