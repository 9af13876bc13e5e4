package models

import "time"

// CandidateArticle is a feed entry after text/image/video extraction,
// prior to relevance filtering.
type CandidateArticle struct {
	Title        string
	Body         string // plain text, HTML stripped
	Link         string
	ImageURL     string // empty if no image could be extracted
	VideoID      string // YouTube video id, empty if none
	Published    time.Time
	PublishedRaw string // provider-supplied date string, loosely formatted
	FeedKey      string
}

// RewrittenArticle is the validated output of the content rewriter:
// bilingual titles, long-form descriptions, and short image captions.
type RewrittenArticle struct {
	TitleEN        string `json:"title_en"`
	TitleES        string `json:"title_es"`
	DescriptionEN  string `json:"description_en"`
	DescriptionES  string `json:"description_es"`
	ImageCaptionEN string `json:"image_caption_en"`
	ImageCaptionES string `json:"image_caption_es"`
}

// PublishRecord is the JSON body submitted to the content-creation API.
type PublishRecord struct {
	ID             string `json:"id"`
	TitleEN        string `json:"title_en"`
	TitleES        string `json:"title_es"`
	DescriptionEN  string `json:"description_en"`
	DescriptionES  string `json:"description_es"`
	PublishedDate  string `json:"published_date"` // YYYY-MM-DD
	ImageURL       string `json:"image_url"`
	ImageCaptionEN string `json:"image_caption_en"`
	ImageCaptionES string `json:"image_caption_es"`
	SourceURL      string `json:"source_url"`
	IsAutomated    bool   `json:"is_automated"`
	CommentsActive bool   `json:"comments_active"`
	VideoID        string `json:"youtube_video_id,omitempty"`
}

// RunStats accumulates counters for one pipeline execution.
type RunStats struct {
	FeedsPolled int
	Entries     int // entries read across all feeds
	Relevant    int // candidates the filter accepted
	Created     int // records the publish API accepted
	Skipped     int // rewrite or publish failures
	Seen        int // links already published by an earlier run
	Duplicates  int // near-identical titles within this run
}
