package output

// CheckDiagnostic is one diagnostic in structured check output. Columns
// are 1-based.
type CheckDiagnostic struct {
	Code     string `json:"code" yaml:"code"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
}

// CheckFileResult holds the outcome for one file.
type CheckFileResult struct {
	Path        string            `json:"path" yaml:"path"`
	Diagnostics []CheckDiagnostic `json:"diagnostics" yaml:"diagnostics"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckSummary counts a check run's results.
type CheckSummary struct {
	FilesChecked int `json:"files_checked" yaml:"files_checked"`
	FilesCached  int `json:"files_cached" yaml:"files_cached"`
	ParseErrors  int `json:"parse_errors" yaml:"parse_errors"`
	TotalIssues  int `json:"total_issues" yaml:"total_issues"`
	Errors       int `json:"errors" yaml:"errors"`
	Warnings     int `json:"warnings" yaml:"warnings"`
	Info         int `json:"info" yaml:"info"`
	Hints        int `json:"hints" yaml:"hints"`
}

// CheckOutput is the structured form of a check run. Files without
// diagnostics or errors are omitted.
type CheckOutput struct {
	RunID   string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Summary CheckSummary      `json:"summary" yaml:"summary"`
	Files   []CheckFileResult `json:"files" yaml:"files"`
}

// RunInfo is one entry of the run history.
type RunInfo struct {
	ID          string `json:"id" yaml:"id"`
	Status      string `json:"status" yaml:"status"`
	StartedAt   string `json:"started_at" yaml:"started_at"`
	CompletedAt string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Files       int    `json:"files" yaml:"files"`
	Issues      int    `json:"issues" yaml:"issues"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}
