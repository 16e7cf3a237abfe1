package audio

// ToFloat32 flattens int16 chunks into one float32 slice in [-1.0, 1.0),
// preserving chunk order. The division is exact, so equal input always
// yields bit-identical output.
func ToFloat32(chunks [][]int16) []float32 {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	out := make([]float32, 0, total)
	for _, c := range chunks {
		for _, s := range c {
			out = append(out, float32(s)/32768.0)
		}
	}
	return out
}
