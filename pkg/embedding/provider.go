package embedding

import "context"

// Device selects where the provider backend runs its model. It is an explicit
// construction parameter; there is no process-wide model switch.
type Device string

const (
	DeviceCPU Device = "cpu"
	DeviceGPU Device = "gpu"
)

// Provider generates a vector embedding for a piece of text. Calls are
// network-bound, fallible and rate-limited; callers bound each call with a
// context deadline.
type Provider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	// Dimensions reports the width of the vectors this provider returns.
	Dimensions() int
}
