package video

// Normalize converts a planar NV12 frame into the NV21 layout consumed by
// downstream image consumers. The luma plane is copied verbatim and each
// interleaved chroma pair is swapped (UVUV -> VUVU).
//
// The function is pure and safe for concurrent invocation across frames; the
// input buffer is never modified. The chroma permutation is an involution, so
// normalizing an already-normalized buffer restores the original bytes.
func Normalize(f *Frame) (*Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	out := make([]byte, len(f.Data))
	lumaSize := f.LumaSize()

	copy(out[:lumaSize], f.Data[:lumaSize])

	// Swap each chroma byte pair.
	for i := lumaSize; i < len(f.Data); i += 2 {
		out[i] = f.Data[i+1]
		out[i+1] = f.Data[i]
	}

	return &Frame{
		Data:   out,
		Width:  f.Width,
		Height: f.Height,
		Layout: swappedLayout(f.Layout),
	}, nil
}

func swappedLayout(l Layout) Layout {
	if l == LayoutNV21 {
		return LayoutNV12
	}
	return LayoutNV21
}
