package technical

import (
	"math/rand"
	"testing"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// benchBars creates a random-walk daily series for benchmarks.
func benchBars(n int) []models.OHLCV {
	bars := make([]models.OHLCV, n)
	rng := rand.New(rand.NewSource(42))
	price := 4500.0
	t := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range bars {
		change := (rng.Float64() - 0.48) * 40 // slight upward bias
		open := price
		close := price + change
		high := max(open, close) + rng.Float64()*15
		low := min(open, close) - rng.Float64()*15

		bars[i] = models.OHLCV{
			Timestamp: t,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    int64(rng.Intn(5_000_000) + 100_000),
		}
		price = close
		t = t.Add(24 * time.Hour)
	}
	return bars
}

func BenchmarkRSILatest_500(b *testing.B) {
	data := closesOf(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RSILatest(data, 14)
	}
}

func BenchmarkMACDLatest_500(b *testing.B) {
	data := closesOf(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MACDLatest(data, 12, 26, 9)
	}
}

func BenchmarkGoldenCross_1000(b *testing.B) {
	data := closesOf(benchBars(1000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GoldenCross(data, 50, 200, 5)
	}
}

func BenchmarkExtract_5000(b *testing.B) {
	s := seriesOf(benchBars(5000)) // ~20 years of daily bars
	ex := NewExtractor(DefaultConfig())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ex.Extract(s); err != nil {
			b.Fatal(err)
		}
	}
}
