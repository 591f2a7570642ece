package control

// None leaves the loop open: zero control regardless of error.
type None struct{}

func NewNone() *None { return &None{} }

func (*None) Compute(err, dt float64) float64 { return 0 }

func (*None) Reset() {}
