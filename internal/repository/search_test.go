package repository

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

var testSpec = EntitySearchSpec{
	Columns: map[string]string{
		"name":      "name",
		"type":      "type",
		"color":     "color",
		"tags":      "tags",
		"createdAt": "created_at",
		"user.id":   "user_id",
	},
	SearchableAttrs:      []string{"name"},
	SearchableArrayAttrs: []string{"tags"},
	DefaultSortAttr:      "createdAt",
}

func TestBuildWhereOwnershipAlwaysApplies(t *testing.T) {
	userID := uuid.New()
	where, args := BuildWhere(testSpec, nil, nil, userID)
	if where != "user_id = ?" {
		t.Fatalf("where = %q", where)
	}
	if !reflect.DeepEqual(args, []any{userID.String()}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereSearchText(t *testing.T) {
	userID := uuid.New()
	where, args := BuildWhere(testSpec, nil, &Search{SearchText: "  Denim "}, userID)
	want := "user_id = ? AND (LOWER(name) LIKE ? OR LOWER(tags) LIKE ?)"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{userID.String(), "%denim%", "%denim%"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereSearchInOverridesDefaults(t *testing.T) {
	userID := uuid.New()
	where, _ := BuildWhere(testSpec, nil, &Search{
		SearchText: "blue",
		SearchIn:   []string{"color"},
	}, userID)
	want := "user_id = ? AND (LOWER(color) LIKE ?)"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
}

func TestBuildWhereSearchInIntersectsArrayAttrs(t *testing.T) {
	userID := uuid.New()
	// searchIn includes tags, so the array attribute survives the
	// intersection alongside the scalar override.
	where, _ := BuildWhere(testSpec, nil, &Search{
		SearchText: "summer",
		SearchIn:   []string{"name", "tags"},
	}, userID)
	want := "user_id = ? AND (LOWER(name) LIKE ? OR LOWER(tags) LIKE ? OR LOWER(tags) LIKE ?)"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
}

func TestBuildWhereEmptySearchTextIsNoOp(t *testing.T) {
	userID := uuid.New()
	where, _ := BuildWhere(testSpec, nil, &Search{SearchText: "   "}, userID)
	if where != "user_id = ?" {
		t.Fatalf("where = %q", where)
	}
}

func TestBuildWhereFilterValue(t *testing.T) {
	userID := uuid.New()
	where, args := BuildWhere(testSpec, &Filter{Filters: []FilterItem{
		{Attribute: "type", Value: "TOP"},
	}}, nil, userID)
	want := "user_id = ? AND LOWER(type) = LOWER(?)"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{userID.String(), "TOP"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereFilterValueList(t *testing.T) {
	userID := uuid.New()
	where, args := BuildWhere(testSpec, &Filter{Filters: []FilterItem{
		{Attribute: "type", ValueList: []string{"top", "shoes"}},
	}}, nil, userID)
	want := "user_id = ? AND LOWER(type) IN (LOWER(?),LOWER(?))"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{userID.String(), "top", "shoes"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereValueListBeatsValue(t *testing.T) {
	userID := uuid.New()
	where, _ := BuildWhere(testSpec, &Filter{Filters: []FilterItem{
		{Attribute: "type", Value: "dress", ValueList: []string{"top"}},
	}}, nil, userID)
	want := "user_id = ? AND LOWER(type) IN (LOWER(?))"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
}

func TestBuildWhereArrayFilterUsesContainment(t *testing.T) {
	userID := uuid.New()
	where, args := BuildWhere(testSpec, &Filter{Filters: []FilterItem{
		{Attribute: "tags", Value: "Summer"},
	}}, nil, userID)
	want := "user_id = ? AND LOWER(tags) LIKE ?"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{userID.String(), "%summer%"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereSkipsUnknownAndEmptyFilters(t *testing.T) {
	userID := uuid.New()
	where, _ := BuildWhere(testSpec, &Filter{Filters: []FilterItem{
		{Attribute: "password_hash", Value: "x"}, // not in the column map
		{Attribute: "type"},                      // no value at all
	}}, nil, userID)
	if where != "user_id = ?" {
		t.Fatalf("where = %q, want hostile/empty filters dropped", where)
	}
}

func TestOrderBy(t *testing.T) {
	cases := []struct {
		name string
		sort *Sort
		want string
	}{
		{"default", nil, "ORDER BY created_at DESC"},
		{"explicit ascending", &Sort{SortBy: "name", SortOrder: SortAscending}, "ORDER BY name ASC"},
		{"explicit descending", &Sort{SortBy: "name", SortOrder: SortDescending}, "ORDER BY name DESC"},
		{"missing attr falls back", &Sort{SortBy: "evil; DROP TABLE", SortOrder: SortAscending}, "ORDER BY created_at ASC"},
		{"empty sort uses defaults", &Sort{}, "ORDER BY created_at DESC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OrderBy(testSpec, tc.sort); got != tc.want {
				t.Fatalf("OrderBy = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPagination(t *testing.T) {
	cases := []struct {
		page, maxSize         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{0, 20, 20, 0},
		{2, 20, 20, 40},
		{-1, 20, 20, 0},
		{0, 500, 100, 0},
		{3, -5, 50, 150},
	}
	for _, tc := range cases {
		limit, offset := Pagination(tc.page, tc.maxSize)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("Pagination(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.maxSize, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}
