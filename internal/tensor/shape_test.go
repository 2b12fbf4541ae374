package tensor

import "testing"

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Shape
		want    Shape
		bcast   bool
		wantErr bool
	}{
		{"same", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"column", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"row", Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"rank", Shape{5}, Shape{2, 3, 5}, Shape{2, 3, 5}, true, false},
		{"bias", Shape{2, 24}, Shape{24}, Shape{2, 24}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v vs %v", tt.a, tt.b)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("shape = %v, want %v", got, tt.want)
			}
			if bcast != tt.bcast {
				t.Errorf("needsBroadcast = %v, want %v", bcast, tt.bcast)
			}
		})
	}
}

func TestShapeStridesAndElements(t *testing.T) {
	s := Shape{2, 3, 4}
	if n := s.NumElements(); n != 24 {
		t.Errorf("NumElements = %d, want 24", n)
	}
	want := []int{12, 4, 1}
	got := s.ComputeStrides()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("strides = %v, want %v", got, want)
		}
	}
	if Shape(nil).NumElements() != 1 {
		t.Error("scalar shape should have one element")
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension should not validate")
	}
}

func TestNormalizeDim(t *testing.T) {
	s := Shape{2, 3, 4}
	if got := s.NormalizeDim(-1); got != 2 {
		t.Errorf("NormalizeDim(-1) = %d, want 2", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out of range dim")
		}
	}()
	s.NormalizeDim(3)
}

func TestRawViews(t *testing.T) {
	r := MustRaw(Shape{2, 3}, Float32, CPU)
	data := r.AsFloat32()
	for i := range data {
		data[i] = float32(i)
	}

	v, err := r.WithShape(Shape{3, 2})
	if err != nil {
		t.Fatalf("WithShape: %v", err)
	}
	if v.AsFloat32()[5] != 5 {
		t.Error("view should share the buffer")
	}
	if _, err := r.WithShape(Shape{4}); err == nil {
		t.Error("expected element count error")
	}

	c := r.Clone()
	c.AsFloat32()[0] = 42
	if data[0] != 0 {
		t.Error("Clone should not share the buffer")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected dtype panic")
		}
	}()
	_ = r.AsInt32()
}
