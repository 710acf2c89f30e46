package parallel

// Band is a half-open range of output rows [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	return b.Y1 - b.Y0
}

// RowBands splits height rows into contiguous bands of rowsPerBand rows.
// The last band holds the remainder. Bands never overlap and together
// cover every row exactly once.
//
// rowsPerBand <= 0 is treated as 1.
func RowBands(height, rowsPerBand int) []Band {
	if height <= 0 {
		return nil
	}
	if rowsPerBand <= 0 {
		rowsPerBand = 1
	}

	bands := make([]Band, 0, (height+rowsPerBand-1)/rowsPerBand)
	for y := 0; y < height; y += rowsPerBand {
		bands = append(bands, Band{Y0: y, Y1: min(y+rowsPerBand, height)})
	}
	return bands
}

// BandsFor picks a band height that gives each worker a few bands to
// steal between, then splits height into bands of that size.
func BandsFor(height, workers int) []Band {
	if workers <= 0 {
		workers = 1
	}
	perBand := max(height/(workers*4), 1)
	return RowBands(height, perBand)
}

// ForEachBand runs fn once per band on the pool and waits for all bands.
func (p *WorkerPool) ForEachBand(bands []Band, fn func(Band)) error {
	jobs := make([]func(), len(bands))
	for i, b := range bands {
		jobs[i] = func() { fn(b) }
	}
	return p.ExecuteAll(jobs)
}
