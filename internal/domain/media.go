package domain

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// MediaKind identifies which kind of media a successful acquisition produced
type MediaKind string

const (
	KindVideo  MediaKind = "video"
	KindImages MediaKind = "images"
)

// UnexpectedErrorMessage is shown when an acquisition fails for a reason no adapter anticipated
const UnexpectedErrorMessage = "An unexpected error occurred. Please try again later."

// NoImagesFoundMessage is used when gallery-dl reports nothing useful
const NoImagesFoundMessage = "No images found"

// MediaRequest is one user submission
type MediaRequest struct {
	ID  string
	URL string
}

// NewMediaRequest creates a media request for the given URL.
// Only absolute http(s) URLs are accepted; the URL is later handed to external tools.
func NewMediaRequest(rawURL string) (*MediaRequest, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrEmptyURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	return &MediaRequest{
		ID:  uuid.New().String(),
		URL: rawURL,
	}, nil
}

// VideoResult describes a downloaded video
type VideoResult struct {
	ID       string   `json:"id"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	FPS      *float64 `json:"fps,omitempty"`
	Ext      string   `json:"ext"`
	FilePath string   `json:"file_path"`
	SizeMB   float64  `json:"size_mb"`
}

// Resolution renders the video dimensions as WxH
func (v *VideoResult) Resolution() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// ImageSetResult describes a set of downloaded images
type ImageSetResult struct {
	Count  int      `json:"count"`
	SizeMB float64  `json:"size_mb"`
	Files  []string `json:"files"`
}

// Outcome is the result of an extraction or acquisition.
// Exactly one of Video, Images or Error is set.
type Outcome struct {
	SourceURL string          `json:"url,omitempty"`
	Video     *VideoResult    `json:"video,omitempty"`
	Images    *ImageSetResult `json:"images,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// VideoOutcome creates a successful video outcome
func VideoOutcome(video VideoResult) *Outcome {
	return &Outcome{Video: &video}
}

// ImageSetOutcome creates a successful image set outcome
func ImageSetOutcome(images ImageSetResult) *Outcome {
	return &Outcome{Images: &images}
}

// FailureOutcome creates a failed outcome carrying a user facing message
func FailureOutcome(message string) *Outcome {
	if message == "" {
		message = UnexpectedErrorMessage
	}
	return &Outcome{Error: message}
}

// Success reports whether the outcome carries media
func (o *Outcome) Success() bool {
	return o != nil && (o.Video != nil || o.Images != nil)
}

// Kind returns the media kind of a successful outcome, or "" for a failure
func (o *Outcome) Kind() MediaKind {
	switch {
	case o == nil:
		return ""
	case o.Video != nil:
		return KindVideo
	case o.Images != nil:
		return KindImages
	default:
		return ""
	}
}

// Files returns the artifact paths referenced by the outcome
func (o *Outcome) Files() []string {
	switch o.Kind() {
	case KindVideo:
		return []string{o.Video.FilePath}
	case KindImages:
		return append([]string(nil), o.Images.Files...)
	default:
		return nil
	}
}

// BytesToMB converts a byte count to megabytes rounded to two decimals
func BytesToMB(size int64) float64 {
	if size <= 0 {
		return 0
	}
	return math.Round(float64(size)/(1024*1024)*100) / 100
}
