package outbound

import (
	"context"
)

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	System    string
	User      string
	MaxTokens int
	// JSONMode asks the provider to answer with a raw JSON object.
	JSONMode    bool
	Temperature *float64
}

// CompletionResponse carries the assistant message and usage figures.
type CompletionResponse struct {
	Content          string
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// CompletionClient issues one LLM completion per call. No conversation
// state is kept between calls.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// PhotoSearchQuery is a stock photo search.
type PhotoSearchQuery struct {
	Query       string
	Page        int
	PerPage     int
	Orientation string
}

// PhotoURLs are the renditions of a photo.
type PhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// PhotoUser is the uploader of a photo.
type PhotoUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Links    struct {
		HTML string `json:"html"`
	} `json:"links"`
}

// PhotoLinks are the provider links of a photo.
type PhotoLinks struct {
	HTML             string `json:"html"`
	DownloadLocation string `json:"download_location"`
}

// Photo is one search hit.
type Photo struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	AltDescription string     `json:"alt_description"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Color          string     `json:"color"`
	URLs           PhotoURLs  `json:"urls"`
	User           PhotoUser  `json:"user"`
	Links          PhotoLinks `json:"links"`
}

// PhotoSearchResult is one page of search hits.
type PhotoSearchResult struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []Photo `json:"results"`
}

// PhotoSearcher is the stock photo provider.
type PhotoSearcher interface {
	Search(ctx context.Context, q PhotoSearchQuery) (*PhotoSearchResult, error)
	// TrackDownload pings the provider's download endpoint for a used photo.
	TrackDownload(ctx context.Context, downloadLocation string) error
}
