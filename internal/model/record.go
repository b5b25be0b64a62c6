package model

// RecordKind classifies a biographical record.
type RecordKind string

const (
	KindWork    RecordKind = "Work"
	KindProject RecordKind = "Project"
)

// Record is one biographical entry loaded from the corpus spreadsheet.
// ID is the stable position of the record in the loaded corpus.
// Records are never mutated after load.
type Record struct {
	ID           int        `json:"id"`
	Kind         RecordKind `json:"kind"`
	Organization string     `json:"organization"`
	Title        string     `json:"title"`
	Narrative    string     `json:"narrative"`
}

// ScoredMatch is a per-query retrieval result.
type ScoredMatch struct {
	Score  float64 `json:"score"`
	Record Record  `json:"record"`
}

// CorpusSummary describes the loaded corpus for the system info endpoint.
type CorpusSummary struct {
	TotalRecords  int      `json:"total_records"`
	WorkCount     int      `json:"work_experience"`
	ProjectCount  int      `json:"project_experience"`
	Organizations []string `json:"organizations"`
	KeySkills     []string `json:"key_skills"`
}
