package logs

type logsResponse struct {
	Count int      `json:"count"`
	Lines []string `json:"lines"`
}
