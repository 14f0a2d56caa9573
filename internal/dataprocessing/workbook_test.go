package dataprocessing

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cpikit/internal/shared/testutil"
)

type fixture struct {
	start  time.Time
	groups bool
	items  [][]interface{}
	index  [][]interface{}
}

func defaultFixture() fixture {
	return fixture{
		start:  time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC),
		groups: true,
		items: [][]interface{}{
			{"_01101", "Rice", 2.5},
			{"_01102", "Bread", 1.5},
			{"_02101", "Beer", 1},
		},
		index: [][]interface{}{
			{101, 100, 102},
			{102.01, 100, 104.04},
			{103.0301, 100, 106.1208},
		},
	}
}

func (fx fixture) build(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "IPC"))

	header := []interface{}{"Date", "_01101", "_01102", "_02101"}
	require.NoError(t, f.SetSheetRow("IPC", "A1", &header))
	baseRow := []interface{}{"Base", 100, 100, 100}
	require.NoError(t, f.SetSheetRow("IPC", "A2", &baseRow))
	for i, vals := range fx.index {
		if vals == nil {
			continue
		}
		row := append([]interface{}{fx.start.AddDate(0, i, 0).Format("2006-01")}, vals...)
		require.NoError(t, f.SetSheetRow("IPC", fmt.Sprintf("A%d", i+3), &row))
	}

	_, err := f.NewSheet("items")
	require.NoError(t, err)
	itemHeader := []interface{}{"Code", "Name", "Weight"}
	require.NoError(t, f.SetSheetRow("items", "A1", &itemHeader))
	for i, row := range fx.items {
		row := row
		require.NoError(t, f.SetSheetRow("items", fmt.Sprintf("A%d", i+2), &row))
	}

	if fx.groups {
		_, err := f.NewSheet("groups")
		require.NoError(t, err)
		rows := [][]interface{}{
			{"Code", "Name"},
			{"_01", "Food"},
			{"_011", "Cereals"},
			{"_02", "Beverages"},
		}
		for i, row := range rows {
			row := row
			require.NoError(t, f.SetSheetRow("groups", fmt.Sprintf("A%d", i+1), &row))
		}
	}
	return f
}

func TestLoad(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	wb, err := NewLoader(logger).Load(defaultFixture().build(t))
	require.NoError(t, err)

	b := wb.Base
	assert.Equal(t, []string{"_01101", "_01102", "_02101"}, b.Codes)
	assert.Equal(t, []string{"Rice", "Bread", "Beer"}, b.Names)
	assert.Equal(t, []float64{2.5, 1.5, 1}, b.W)
	assert.Equal(t, 3, b.Periods())
	assert.Equal(t, time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC), b.Dates[2])

	rice, ok := b.Column("_01101")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{101, 102.01, 103.0301}, rice, 1e-9)
	assert.InDelta(t, 1.0, b.V.At(2, 0), 1e-9)
	assert.InDelta(t, 2.0, b.V.At(0, 2), 1e-9)
	assert.InDelta(t, 0.0, b.V.At(1, 1), 1e-9)

	assert.Equal(t, []string{"_01", "_011", "_02"}, wb.GroupCodes)
	assert.Equal(t, []string{"Food", "Cereals", "Beverages"}, wb.GroupNames)
}

func TestLoadWithoutGroups(t *testing.T) {
	fx := defaultFixture()
	fx.groups = false
	logger, handler := testutil.NewTestLogger(t)

	wb, err := NewLoader(logger).Load(fx.build(t))
	require.NoError(t, err)
	assert.Empty(t, wb.GroupCodes)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "no groups sheet")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*fixture)
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing item",
			mutate:  func(fx *fixture) { fx.items = fx.items[:2] },
			wantErr: ErrMissingItem,
		},
		{
			name:    "bad number",
			mutate:  func(fx *fixture) { fx.index[1][0] = "n/a" },
			wantMsg: "row 4 column 2",
		},
		{
			name:    "empty cell",
			mutate:  func(fx *fixture) { fx.index[0] = fx.index[0][:2] },
			wantErr: ErrMalformedSheet,
		},
		{
			name: "blank row between periods",
			mutate: func(fx *fixture) {
				fx.index = [][]interface{}{fx.index[0], nil, fx.index[1], fx.index[2]}
			},
			wantErr: ErrMalformedSheet,
			wantMsg: "row 4 is empty",
		},
		{
			name:    "short items row",
			mutate:  func(fx *fixture) { fx.items[0] = fx.items[0][:2] },
			wantErr: ErrMalformedSheet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := defaultFixture()
			tt.mutate(&fx)
			_, err := NewLoader(nil).Load(fx.build(t))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	_, err := NewLoader(nil).Load(f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestLoadCountryStructure(t *testing.T) {
	dir := t.TempDir()

	first := defaultFixture()
	second := defaultFixture()
	second.start = first.start.AddDate(0, len(first.index), 0)

	paths := []string{filepath.Join(dir, "2010.xlsx"), filepath.Join(dir, "2010b.xlsx")}
	require.NoError(t, first.build(t).SaveAs(paths[0]))
	require.NoError(t, second.build(t).SaveAs(paths[1]))

	cs, books, err := NewLoader(nil).LoadCountryStructure("Testland", paths...)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, 2, cs.Eras())
	assert.Equal(t, 6, cs.Periods())

	t.Run("gap between bases", func(t *testing.T) {
		gap := defaultFixture()
		gap.start = first.start.AddDate(1, 0, 0)
		path := filepath.Join(dir, "gap.xlsx")
		require.NoError(t, gap.build(t).SaveAs(path))

		_, _, err := NewLoader(nil).LoadCountryStructure("Testland", paths[0], path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := NewLoader(nil).LoadCountryStructure("Testland", filepath.Join(dir, "nope.xlsx"))
		assert.Error(t, err)
	})
}

func TestParseDate(t *testing.T) {
	want := time.Date(2010, time.February, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2010-02", "2010-02-15", "02/2010", "Feb 2010", "40224"} {
		got, err := parseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := parseDate("soon")
	assert.Error(t, err)
}

func TestParseIndexBlankRow(t *testing.T) {
	rows := [][]string{{"Date", "_0111"}, {"2020-01", "100"}, {}, {"2020-02", "101"}}
	assert.NotPanics(t, func() {
		_, _, _, _, err := parseIndex(rows)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedSheet)
		assert.Contains(t, err.Error(), "row 3 is empty")
	})
}
