package robot

// StatsEntry is the slice of a robot that statistics look at.
type StatsEntry struct {
	Type     string
	Year     int
	Archived bool
}

// Stats summarizes a robot collection.
type Stats struct {
	Total      int
	Archived   int
	ByType     map[string]int
	ByYear     map[int]int
	OldestYear int
	NewestYear int
}

// ComputeStats counts robots per type and year. Oldest and newest year are
// zero for an empty collection.
func ComputeStats(entries []StatsEntry) Stats {
	s := Stats{
		Total:  len(entries),
		ByType: make(map[string]int),
		ByYear: make(map[int]int),
	}
	for i, e := range entries {
		s.ByType[e.Type]++
		s.ByYear[e.Year]++
		if e.Archived {
			s.Archived++
		}
		if i == 0 || e.Year < s.OldestYear {
			s.OldestYear = e.Year
		}
		if i == 0 || e.Year > s.NewestYear {
			s.NewestYear = e.Year
		}
	}
	return s
}
