package tensor

// stubBackend satisfies Backend for tests that only need Device and Name.
// Any compute method reaching the embedded nil interface panics, which is
// the correct outcome: creation helpers must not invoke the engine.
type stubBackend struct{ Backend }

func (stubBackend) Name() string   { return "stub" }
func (stubBackend) Device() Device { return CPU }

var _ Backend = stubBackend{}
