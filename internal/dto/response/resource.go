package response

type ResourceBlock struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Text        string `json:"text"`
	HasChildren bool   `json:"has_children"`
}

type ResourcePageResponse struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	URL    string          `json:"url"`
	Blocks []ResourceBlock `json:"blocks"`
}
