package index

import "testing"

func TestNew(t *testing.T) {
	x := New(64)
	if x.Total() != 1 || x.NumPages() != 1 || x.Current() != 0 {
		t.Errorf("New() = total %d pages %d current %d", x.Total(), x.NumPages(), x.Current())
	}
	if x.MultiPage() {
		t.Error("fresh document spans pages")
	}
}

func TestDeltas(t *testing.T) {
	x := New(4)
	x.Reset([]int{4, 4, 2})
	x.SetCurrent(1)

	x.Apply(-1)
	x.Apply(-1)
	x.Apply(1)
	if x.Total() != 9 {
		t.Errorf("Total() = %d, want 9", x.Total())
	}
	if x.PageLines(1) != 3 {
		t.Errorf("PageLines(1) = %d, want 3", x.PageLines(1))
	}
	if x.NumPages() != 3 {
		t.Errorf("NumPages() = %d, want 3", x.NumPages())
	}
}

func TestAddPageAndResize(t *testing.T) {
	x := New(4)
	x.SetPageLines(0, 4)
	p := x.AddPage(1)
	if p != 1 || x.Total() != 5 || !x.IsLast(1) {
		t.Fatalf("AddPage = %d, total %d", p, x.Total())
	}

	x.Resize(4)
	if x.NumPages() != 4 || x.Total() != 7 {
		t.Errorf("after grow: pages %d total %d, want 4 and 7", x.NumPages(), x.Total())
	}

	x.SetCurrent(3)
	x.Resize(2)
	if x.NumPages() != 2 || x.Total() != 5 || x.Current() != 1 {
		t.Errorf("after shrink: pages %d total %d current %d", x.NumPages(), x.Total(), x.Current())
	}
}

func TestLocate(t *testing.T) {
	x := New(64)
	x.Reset([]int{64, 64, 2})

	tests := []struct {
		line     int
		wantPage int
		wantRow  int
		wantOK   bool
	}{
		{0, 0, 0, true},
		{63, 0, 63, true},
		{64, 1, 0, true},
		{129, 2, 1, true},
		{130, 0, 0, false},
		{-1, 0, 0, false},
	}

	for _, tt := range tests {
		p, r, ok := x.Locate(tt.line)
		if p != tt.wantPage || r != tt.wantRow || ok != tt.wantOK {
			t.Errorf("Locate(%d) = %d, %d, %v, want %d, %d, %v",
				tt.line, p, r, ok, tt.wantPage, tt.wantRow, tt.wantOK)
		}
	}

	if got := x.FirstLine(2); got != 128 {
		t.Errorf("FirstLine(2) = %d, want 128", got)
	}
}
