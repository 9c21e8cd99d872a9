package napkin

import (
	"golang.org/x/text/language"
)

// Format is the output format of a generated visual.
type Format string

// Supported output formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPPT Format = "ppt"
)

// ColorMode selects which color variants to generate.
type ColorMode string

// Supported color modes.
const (
	ColorModeLight ColorMode = "light"
	ColorModeDark  ColorMode = "dark"
	ColorModeBoth  ColorMode = "both"
)

// Orientation hints at the preferred layout of the visual.
type Orientation string

// Supported orientation hints.
const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
	OrientationSquare     Orientation = "square"
)

// Variant count bounds per request.
const (
	MinVisuals = 1
	MaxVisuals = 4
)

// Request describes a visual generation request. It is treated as an
// immutable value once validated.
type Request struct {
	// Format is the output format (svg, png, ppt). Required.
	Format Format `json:"format"`

	// Content is the text to visualize. Required.
	Content string `json:"content"`

	// Context is optional surrounding text that informs generation.
	Context string `json:"context,omitempty"`

	// Language is an optional BCP-47 language tag (e.g., "en-US").
	Language string `json:"language,omitempty"`

	// StyleID selects a visual style from the catalog.
	StyleID string `json:"style_id,omitempty"`

	// VisualID selects a single specific visual by ID.
	// Mutually exclusive with the query selectors.
	VisualID string `json:"visual_id,omitempty"`

	// VisualIDs selects one visual per variant; its length must equal
	// NumberOfVisuals. Mutually exclusive with VisualID and the query
	// selectors.
	VisualIDs []string `json:"visual_ids,omitempty"`

	// VisualQuery selects a single visual by free-text query.
	VisualQuery string `json:"visual_query,omitempty"`

	// VisualQueries selects one visual per variant by query; its length
	// must equal NumberOfVisuals.
	VisualQueries []string `json:"visual_queries,omitempty"`

	// NumberOfVisuals is the variant count (1-4). Zero means 1.
	NumberOfVisuals int `json:"number_of_visuals,omitempty"`

	// TransparentBackground requests a transparent background.
	TransparentBackground bool `json:"transparent_background,omitempty"`

	// ColorMode selects light, dark, or both variants.
	ColorMode ColorMode `json:"color_mode,omitempty"`

	// Width is the pixel width; only meaningful for png output.
	Width int `json:"width,omitempty"`

	// Height is the pixel height; only meaningful for png output.
	Height int `json:"height,omitempty"`

	// Orientation hints at the preferred layout.
	Orientation Orientation `json:"orientation,omitempty"`

	// TextExtraction controls how text is extracted from Content.
	TextExtraction string `json:"text_extraction,omitempty"`

	// SortBy controls the ordering strategy for suggested visuals.
	SortBy string `json:"sort_by,omitempty"`
}

// Validate checks the request invariants. It is called once at the tool
// boundary before any network call is made.
func (r *Request) Validate() error {
	if r.Content == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}

	switch r.Format {
	case FormatSVG, FormatPNG, FormatPPT:
	case "":
		return &ValidationError{Field: "format", Message: "format is required"}
	default:
		return &ValidationError{Field: "format", Message: "format must be one of svg, png, ppt"}
	}

	if r.NumberOfVisuals != 0 && (r.NumberOfVisuals < MinVisuals || r.NumberOfVisuals > MaxVisuals) {
		return &ValidationError{Field: "number_of_visuals", Message: "number_of_visuals must be between 1 and 4"}
	}

	hasID := r.VisualID != "" || len(r.VisualIDs) > 0
	hasQuery := r.VisualQuery != "" || len(r.VisualQueries) > 0
	if hasID && hasQuery {
		return &ValidationError{Field: "visual_id", Message: "visual id and visual query selectors are mutually exclusive"}
	}
	if r.VisualID != "" && len(r.VisualIDs) > 0 {
		return &ValidationError{Field: "visual_ids", Message: "visual_id and visual_ids are mutually exclusive"}
	}
	if r.VisualQuery != "" && len(r.VisualQueries) > 0 {
		return &ValidationError{Field: "visual_queries", Message: "visual_query and visual_queries are mutually exclusive"}
	}

	if n := len(r.VisualIDs); n > 0 && n != r.variantCount() {
		return &ValidationError{Field: "visual_ids", Message: "visual_ids length must equal number_of_visuals"}
	}
	if n := len(r.VisualQueries); n > 0 && n != r.variantCount() {
		return &ValidationError{Field: "visual_queries", Message: "visual_queries length must equal number_of_visuals"}
	}

	switch r.ColorMode {
	case "", ColorModeLight, ColorModeDark, ColorModeBoth:
	default:
		return &ValidationError{Field: "color_mode", Message: "color_mode must be one of light, dark, both"}
	}

	if (r.Width != 0 || r.Height != 0) && r.Format != FormatPNG {
		return &ValidationError{Field: "width", Message: "width and height only apply to png output"}
	}
	if r.Width < 0 || r.Height < 0 {
		return &ValidationError{Field: "width", Message: "width and height must be positive"}
	}

	if r.Language != "" {
		if _, err := language.Parse(r.Language); err != nil {
			return &ValidationError{Field: "language", Message: "language must be a valid BCP-47 tag"}
		}
	}

	return nil
}

func (r *Request) variantCount() int {
	if r.NumberOfVisuals == 0 {
		return 1
	}
	return r.NumberOfVisuals
}

// Status is the lifecycle state of a generation request.
type Status string

// Generation statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status ends the polling loop.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Known reports whether the status is one the client understands.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// SubmitResponse is the response from submitting a generation request.
type SubmitResponse struct {
	// ID is the opaque handle used for all subsequent status and
	// download calls.
	ID string `json:"id"`

	// Status is the initial status, normally pending.
	Status Status `json:"status"`

	// Warning carries a non-fatal notice from the API, if any.
	Warning string `json:"warning,omitempty"`
}

// GeneratedFile describes one produced file of a completed request.
type GeneratedFile struct {
	URL         string `json:"url"`
	VisualID    string `json:"visual_id"`
	VisualQuery string `json:"visual_query,omitempty"`
	StyleID     string `json:"style_id,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	ColorMode   string `json:"color_mode,omitempty"`
}

// StatusResponse is a point-in-time snapshot of a generation request.
// Each poll returns a fresh snapshot; it has no independent lifecycle.
type StatusResponse struct {
	ID             string          `json:"id"`
	Status         Status          `json:"status"`
	GeneratedFiles []GeneratedFile `json:"generated_files,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// VerifyResult reports whether an API key was accepted by the service.
type VerifyResult struct {
	// Valid is true when the key was accepted.
	Valid bool `json:"valid"`

	// Error explains why the key was rejected or unverifiable.
	Error string `json:"error,omitempty"`
}
