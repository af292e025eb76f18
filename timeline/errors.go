package timeline

import "fmt"

// BuildError reports a malformed frame graph. Nothing is played when it occurs.
type BuildError struct {
	FrameID string
	ItemID  string
	Reason  string
}

func (e *BuildError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("frame %s: %s", e.FrameID, e.Reason)
	}
	return fmt.Sprintf("frame %s, item %s: %s", e.FrameID, e.ItemID, e.Reason)
}

const (
	reasonDangling    = "continues an unknown item"
	reasonBrokenSpan  = "continues an item that is not open in the previous frame"
	reasonNotSpanning = "continues an item that does not span frames"
	reasonDuplicate   = "duplicate item id"
	reasonUnknownType = "unknown media type"
)
