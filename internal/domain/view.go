package domain

import "sort"

// Status selects which half of the collection a view shows.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
)

// SortOrder for score-based sorting. Empty means "leave creation order".
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortScoreAsc  SortOrder = "score_asc"
	SortScoreDesc SortOrder = "score_desc"
)

// MatrixCell is one of the 25 fixed cells of the risk matrix.
type MatrixCell struct {
	Impact     int         `json:"impact"`
	Likelihood int         `json:"likelihood"`
	Score      int         `json:"score"`
	Category   Category    `json:"category"`
	Color      string      `json:"color"`
	Bugs       []BugRecord `json:"bugs"`
}

// FilterStatus keeps the open or the completed partition.
func FilterStatus(in []BugRecord, st Status) []BugRecord {
	out := make([]BugRecord, 0, len(in))
	for _, b := range in {
		if (st == StatusCompleted) == b.Completed() {
			out = append(out, b)
		}
	}
	return out
}

// FilterLabels keeps records whose label is in the selected set. An empty
// set means no filtering.
func FilterLabels(in []BugRecord, selected []Label) []BugRecord {
	if len(selected) == 0 {
		return in
	}
	set := make(map[Label]struct{}, len(selected))
	for _, l := range selected {
		set[l] = struct{}{}
	}
	out := make([]BugRecord, 0, len(in))
	for _, b := range in {
		if _, ok := set[b.Label]; ok {
			out = append(out, b)
		}
	}
	return out
}

// GroupMatrix buckets records into the 25 (impact, likelihood) cells,
// ordered impact 1..5 then likelihood 1..5. Every cell is present even
// when empty so the client can render the full grid.
func GroupMatrix(in []BugRecord) []MatrixCell {
	cells := make([]MatrixCell, 0, 25)
	for impact := 1; impact <= 5; impact++ {
		for likelihood := 1; likelihood <= 5; likelihood++ {
			score := Score(impact, likelihood)
			cat := CategoryFor(score)
			cells = append(cells, MatrixCell{
				Impact:     impact,
				Likelihood: likelihood,
				Score:      score,
				Category:   cat,
				Color:      Color(cat),
				Bugs:       []BugRecord{},
			})
		}
	}
	for _, b := range in {
		if b.Impact < 1 || b.Impact > 5 || b.Likelihood < 1 || b.Likelihood > 5 {
			continue
		}
		idx := (b.Impact-1)*5 + (b.Likelihood - 1)
		cells[idx].Bugs = append(cells[idx].Bugs, b)
	}
	return cells
}

// SortByScore orders records by computed risk score. The sort is stable, so
// records with equal scores keep their original (creation) order.
func SortByScore(in []BugRecord, order SortOrder) []BugRecord {
	if order == SortNone {
		return in
	}
	out := make([]BugRecord, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if order == SortScoreDesc {
			return out[i].RiskScore() > out[j].RiskScore()
		}
		return out[i].RiskScore() < out[j].RiskScore()
	})
	return out
}
