package pagination

import (
	"reflect"
	"testing"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{95, 10, 10},
		{100, 10, 10},
		{101, 10, 11},
		{0, 10, 1},
		{-3, 10, 1},
		{3, 0, 1},
		{1, 10, 1},
	}

	for _, tt := range tests {
		if got := PageCount(tt.total, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	count := PageCount(95, 10)

	tests := []struct {
		page, want int
	}{
		{0, 1},
		{-4, 1},
		{1, 1},
		{5, 5},
		{10, 10},
		{11, 10},
	}

	for _, tt := range tests {
		if got := ClampPage(tt.page, count); got != tt.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, count, got, tt.want)
		}
	}

	if got := ClampPage(3, 0); got != 1 {
		t.Errorf("ClampPage with zero page count = %d, want 1", got)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	if got := Slice(items, 1, 3); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("page 1 = %v", got)
	}
	if got := Slice(items, 3, 3); !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("page 3 = %v", got)
	}
	if got := Slice(items, 4, 3); len(got) != 0 {
		t.Errorf("page 4 = %v, want empty", got)
	}
	if got := Slice(items, 0, 3); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("page 0 = %v, want first page", got)
	}
}
