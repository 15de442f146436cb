package tensor

import "testing"

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if !raw.Shape().Equal(Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != Float32 {
		t.Errorf("DType() = %s, want float32", raw.DType())
	}
	if raw.Device() != CPU {
		t.Errorf("Device() = %s, want CPU", raw.Device())
	}
	if raw.ByteSize() != 6*4 {
		t.Errorf("ByteSize() = %d, want 24", raw.ByteSize())
	}

	// Fresh buffers are zero-filled.
	for i, v := range raw.AsFloat32() {
		if v != 0 {
			t.Errorf("element %d = %f, want 0", i, v)
		}
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, -1}, Float32, CPU); err == nil {
		t.Error("NewRaw should reject negative dimensions")
	}
	if _, err := NewRaw(Shape{0}, Float32, CPU); err == nil {
		t.Error("NewRaw should reject zero dimensions")
	}
}

func TestRawTensorTypedViews(t *testing.T) {
	raw := MustNewRaw(Shape{4}, Int64, CPU)
	data := raw.AsInt64()
	if len(data) != 4 {
		t.Fatalf("AsInt64 length = %d, want 4", len(data))
	}

	// Views are zero-copy.
	data[0] = 42
	if raw.AsInt64()[0] != 42 {
		t.Error("AsInt64 should return a zero-copy view")
	}
}

func TestRawTensorViewDTypeMismatchPanics(t *testing.T) {
	raw := MustNewRaw(Shape{2}, Float32, CPU)
	defer func() {
		if recover() == nil {
			t.Error("AsInt32 on a float32 tensor should panic")
		}
	}()
	raw.AsInt32()
}

func TestRawTensorClone(t *testing.T) {
	raw := MustNewRaw(Shape{2}, Float32, CPU)
	raw.AsFloat32()[0] = 1

	clone := raw.Clone()
	if raw.IsUnique() || clone.IsUnique() {
		t.Error("after Clone, neither view should be unique")
	}

	// Clones share the buffer until an engine copies on write.
	if clone.AsFloat32()[0] != 1 {
		t.Error("Clone should share the underlying buffer")
	}

	clone.Release()
	if !raw.IsUnique() {
		t.Error("releasing the clone should make the original unique again")
	}
}

func TestRawTensorCopy(t *testing.T) {
	raw := MustNewRaw(Shape{2}, Float32, CPU)
	raw.AsFloat32()[0] = 1

	cp := raw.Copy()
	cp.AsFloat32()[0] = 9
	if raw.AsFloat32()[0] != 1 {
		t.Error("Copy should allocate an independent buffer")
	}
	if !raw.IsUnique() || !cp.IsUnique() {
		t.Error("Copy should leave both tensors unique")
	}
}

func TestRawTensorForceNonUnique(t *testing.T) {
	raw := MustNewRaw(Shape{2}, Float32, CPU)
	if !raw.IsUnique() {
		t.Fatal("fresh tensor should be unique")
	}

	unpin := raw.ForceNonUnique()
	if raw.IsUnique() {
		t.Error("ForceNonUnique should pin the buffer")
	}

	unpin()
	if !raw.IsUnique() {
		t.Error("the returned func should unpin the buffer")
	}
}

func TestDeviceString(t *testing.T) {
	if CPU.String() != "CPU" {
		t.Errorf("CPU.String() = %q", CPU.String())
	}
	if WebGPU.String() != "WebGPU" {
		t.Errorf("WebGPU.String() = %q", WebGPU.String())
	}
}
