package contracts

// FileIdentity locates one converted file inside its year/month partition
// ⭐ SSOT: partition identity is derived from the storage path only
type FileIdentity struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Year  int    `json:"year"`
	Month int    `json:"month"`

	// Resolved is false when the path carries no usable year=/month= segments
	Resolved bool `json:"resolved"`
}

// FileSummary is the per-file metadata recorded in a report
type FileSummary struct {
	File    string `json:"file"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Rows    int64  `json:"rows"`
	Columns int    `json:"columns"`
}

// FileResult is what the inspector hands to the aggregator for one file
type FileResult struct {
	Identity FileIdentity `json:"identity"`
	Rows     int64        `json:"rows"`
	Columns  int          `json:"columns"`
	Defects  []Defect     `json:"defects"`

	// Skipped marks files excluded from inspection by partition policy
	Skipped bool `json:"skipped,omitempty"`
}

// Summary converts the result into report metadata
func (r *FileResult) Summary() FileSummary {
	return FileSummary{
		File:    r.Identity.Name,
		Year:    r.Identity.Year,
		Month:   r.Identity.Month,
		Rows:    r.Rows,
		Columns: r.Columns,
	}
}
