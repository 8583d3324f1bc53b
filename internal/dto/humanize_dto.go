package dto

type HumanizeRequest struct {
	Text string `json:"text"`
}

type HumanizeResponse struct {
	HumanizedText string `json:"humanizedText"`
	WordCount     int    `json:"wordCount"`
	DBSaveError   bool   `json:"dbSaveError,omitempty"`
}

type HistoryItem struct {
	ID            string `json:"id"`
	OriginalText  string `json:"original_text"`
	HumanizedText string `json:"humanized_text"`
	Status        string `json:"status"`
	TokensUsed    int    `json:"tokens_used"`
	CreatedAt     string `json:"created_at"`
}

type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
