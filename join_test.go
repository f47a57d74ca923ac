package medallion_test

import (
	"reflect"
	"testing"

	medallion "github.com/rigo1999/medellion-datawarehousing"
)

func joinFixtures(t testing.TB) (left, right *medallion.Table) {
	t.Helper()
	left = mustTable(t, []string{"id", "qty"}, [][]medallion.Value{
		{medallion.IntValue(1), medallion.IntValue(10)},
		{medallion.IntValue(2), medallion.IntValue(20)},
		{medallion.IntValue(4), medallion.IntValue(40)},
	})
	right = mustTable(t, []string{"id", "name"}, [][]medallion.Value{
		{medallion.IntValue(1), medallion.StringValue("one")},
		{medallion.IntValue(2), medallion.StringValue("two")},
		{medallion.IntValue(3), medallion.StringValue("three")},
	})
	return left, right
}

func TestJoinKinds(t *testing.T) {
	left, right := joinFixtures(t)
	tests := []struct {
		how  medallion.JoinKind
		rows int
	}{
		{how: medallion.JoinInner, rows: 2},
		{how: medallion.JoinLeft, rows: 3},
		{how: medallion.JoinRight, rows: 3},
		{how: medallion.JoinOuter, rows: 4},
	}
	for _, test := range tests {
		t.Run(string(test.how), func(t *testing.T) {
			got, err := medallion.Join(left, right, []string{"id"}, test.how)
			if err != nil {
				t.Fatalf("joining: %v", err)
			}
			if got.NumRows() != test.rows {
				t.Fatalf("expected %d rows, got %d", test.rows, got.NumRows())
			}
			if !reflect.DeepEqual(got.Columns(), []string{"id", "qty", "name"}) {
				t.Fatalf("unexpected columns: %v", got.Columns())
			}
		})
	}
}

func TestJoinUnmatchedSides(t *testing.T) {
	left, right := joinFixtures(t)

	got, err := medallion.Join(left, right, []string{"id"}, medallion.JoinLeft)
	if err != nil {
		t.Fatalf("joining: %v", err)
	}
	// left row id=4 has no match; its right columns are null
	v, _ := got.Cell(2, "name")
	if !v.IsNull() {
		t.Fatalf("expected null name for unmatched left row, got %q", v)
	}

	got, err = medallion.Join(left, right, []string{"id"}, medallion.JoinOuter)
	if err != nil {
		t.Fatalf("joining: %v", err)
	}
	// unmatched right row id=3 comes last with null left columns
	last := got.NumRows() - 1
	v, _ = got.Cell(last, "id")
	if i, _ := v.Int64(); i != 3 {
		t.Fatalf("expected trailing right row id=3, got %q", v)
	}
	v, _ = got.Cell(last, "qty")
	if !v.IsNull() {
		t.Fatalf("expected null qty for unmatched right row, got %q", v)
	}
}

func TestJoinSuffixesOverlappingColumns(t *testing.T) {
	left := mustTable(t, []string{"id", "name"}, [][]medallion.Value{
		{medallion.IntValue(1), medallion.StringValue("l")},
	})
	right := mustTable(t, []string{"id", "name"}, [][]medallion.Value{
		{medallion.IntValue(1), medallion.StringValue("r")},
	})
	got, err := medallion.Join(left, right, []string{"id"}, medallion.JoinInner)
	if err != nil {
		t.Fatalf("joining: %v", err)
	}
	if !reflect.DeepEqual(got.Columns(), []string{"id", "name_x", "name_y"}) {
		t.Fatalf("unexpected columns: %v", got.Columns())
	}
}

func TestJoinNullKeysNeverMatch(t *testing.T) {
	left := mustTable(t, []string{"id", "qty"}, [][]medallion.Value{
		{medallion.NullValue(), medallion.IntValue(10)},
	})
	right := mustTable(t, []string{"id", "name"}, [][]medallion.Value{
		{medallion.NullValue(), medallion.StringValue("null row")},
	})
	got, err := medallion.Join(left, right, []string{"id"}, medallion.JoinInner)
	if err != nil {
		t.Fatalf("joining: %v", err)
	}
	if got.NumRows() != 0 {
		t.Fatalf("null keys matched: %d rows", got.NumRows())
	}
	got, err = medallion.Join(left, right, []string{"id"}, medallion.JoinOuter)
	if err != nil {
		t.Fatalf("joining: %v", err)
	}
	if got.NumRows() != 2 {
		t.Fatalf("outer join should keep both null-keyed rows, got %d", got.NumRows())
	}
}

func TestJoinMultipleKeys(t *testing.T) {
	left := mustTable(t, []string{"a", "b", "v"}, [][]medallion.Value{
		{medallion.IntValue(1), medallion.StringValue("x"), medallion.IntValue(10)},
		{medallion.IntValue(1), medallion.StringValue("y"), medallion.IntValue(20)},
	})
	right := mustTable(t, []string{"a", "b", "w"}, [][]medallion.Value{
		{medallion.IntValue(1), medallion.StringValue("y"), medallion.IntValue(99)},
	})
	got, err := medallion.Join(left, right, []string{"a", "b"}, medallion.JoinInner)
	if err != nil {
		t.Fatalf("joining: %v", err)
	}
	if got.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", got.NumRows())
	}
	v, _ := got.Cell(0, "w")
	if i, _ := v.Int64(); i != 99 {
		t.Fatalf("expected w=99, got %q", v)
	}
}

func TestJoinErrors(t *testing.T) {
	left, right := joinFixtures(t)
	if _, err := medallion.Join(left, right, []string{"id"}, "cross"); err == nil {
		t.Fatal("expected error for unsupported join kind")
	}
	if _, err := medallion.Join(left, right, nil, medallion.JoinInner); err == nil {
		t.Fatal("expected error for empty key set")
	}
	if _, err := medallion.Join(left, right, []string{"qty"}, medallion.JoinInner); err == nil {
		t.Fatal("expected error for key missing from right table")
	}
}
