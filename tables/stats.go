package tables

import "time"

// QualityStats summarizes the quality scores of accepted tables.
type QualityStats struct {
	Average float64
	Minimum float64
	Maximum float64
	Count   int
}

// TimingStats summarizes extraction timing.
type TimingStats struct {
	Total      time.Duration
	AvgPerPage time.Duration
}

// Statistics aggregates a document's extraction results.
type Statistics struct {
	TotalPages       int
	SuccessfulPages  int
	SuccessRate      float64
	TotalTables      int
	AvgTablesPerPage float64
	MethodUsage      map[string]int
	Quality          QualityStats
	Timing           TimingStats
}

// Statistics summarizes per-page results across a document.
func (e *Extractor) Statistics(results []Result) Statistics {
	if len(results) == 0 {
		return Statistics{}
	}

	stats := Statistics{
		TotalPages:  len(results),
		MethodUsage: make(map[string]int),
	}
	var scores []float64
	for _, r := range results {
		if r.Success {
			stats.SuccessfulPages++
			stats.MethodUsage[r.Method]++
		}
		stats.TotalTables += len(r.Tables)
		scores = append(scores, r.QualityScores...)
		stats.Timing.Total += r.Duration
	}

	stats.SuccessRate = float64(stats.SuccessfulPages) / float64(stats.TotalPages)
	if stats.SuccessfulPages > 0 {
		stats.AvgTablesPerPage = float64(stats.TotalTables) / float64(stats.SuccessfulPages)
	}
	stats.Timing.AvgPerPage = stats.Timing.Total / time.Duration(stats.TotalPages)

	if len(scores) > 0 {
		min, max, sum := scores[0], scores[0], 0.0
		for _, s := range scores {
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
			sum += s
		}
		stats.Quality = QualityStats{
			Average: sum / float64(len(scores)),
			Minimum: min,
			Maximum: max,
			Count:   len(scores),
		}
	}
	return stats
}
