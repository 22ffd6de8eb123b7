package bulk

import "github.com/pkg/errors"

// Window identifies a contiguous slice [Offset, Offset+Size) of the target
// identifiers resolved and dispatched in one orchestrator invocation.
type Window struct {
	Offset int `json:"offset"`
	Size   int `json:"size"`
}

// Clamp validates the window and trims it to the total number of targets.
// A window starting at or past the end yields Size 0.
func (w Window) Clamp(total int) (Window, error) {
	if w.Offset < 0 || w.Size < 0 {
		return w, errors.Wrapf(ErrInvalidWindow, "offset: %d, size: %d", w.Offset, w.Size)
	}
	if w.Offset >= total {
		return Window{Offset: w.Offset}, nil
	}
	if w.Offset+w.Size > total {
		w.Size = total - w.Offset
	}
	return w, nil
}

// End returns the exclusive end offset
func (w Window) End() int {
	return w.Offset + w.Size
}

// Windows splits total targets into consecutive windows of batchSize.
func Windows(total, batchSize int) []Window {
	if total <= 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = total
	}
	result := make([]Window, 0, (total+batchSize-1)/batchSize)
	for offset := 0; offset < total; offset += batchSize {
		size := batchSize
		if offset+size > total {
			size = total - offset
		}
		result = append(result, Window{Offset: offset, Size: size})
	}
	return result
}
