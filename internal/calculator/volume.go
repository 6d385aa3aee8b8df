package calculator

// VolumeRatio compares the latest volume against its simple moving average
// over the trailing period. A ratio well above 1.0 indicates a volume surge.
func VolumeRatio(volumes []float64, period int) (float64, error) {
	if len(volumes) < period+1 {
		return 0, ErrInsufficientData
	}
	avg, err := SMA(volumes[:len(volumes)-1], period)
	if err != nil {
		return 0, err
	}
	if avg == 0 {
		return 0, ErrInsufficientData
	}
	return volumes[len(volumes)-1] / avg, nil
}
