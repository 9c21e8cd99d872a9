package napkin

// Style describes one entry in the visual style catalog.
type Style struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Style categories.
const (
	StyleCategoryColorful   = "colorful"
	StyleCategoryCasual     = "casual"
	StyleCategoryHandDrawn  = "hand-drawn"
	StyleCategoryFormal     = "formal"
	StyleCategoryMonochrome = "monochrome"
)

// styleCatalog is the static informational style catalog. The API accepts
// any of these IDs as style_id on a generation request.
var styleCatalog = []Style{
	{ID: "vibrant-strokes", Name: "Vibrant Strokes", Category: StyleCategoryColorful},
	{ID: "glowful-breeze", Name: "Glowful Breeze", Category: StyleCategoryColorful},
	{ID: "bold-canvas", Name: "Bold Canvas", Category: StyleCategoryColorful},
	{ID: "radiant-blocks", Name: "Radiant Blocks", Category: StyleCategoryColorful},
	{ID: "casual-chalk", Name: "Casual Chalk", Category: StyleCategoryCasual},
	{ID: "friendly-lines", Name: "Friendly Lines", Category: StyleCategoryCasual},
	{ID: "sketch-notes", Name: "Sketch Notes", Category: StyleCategoryHandDrawn},
	{ID: "pencil-draft", Name: "Pencil Draft", Category: StyleCategoryHandDrawn},
	{ID: "ink-wash", Name: "Ink Wash", Category: StyleCategoryHandDrawn},
	{ID: "corporate-clean", Name: "Corporate Clean", Category: StyleCategoryFormal},
	{ID: "boardroom", Name: "Boardroom", Category: StyleCategoryFormal},
	{ID: "blueprint", Name: "Blueprint", Category: StyleCategoryFormal},
	{ID: "minimal-mono", Name: "Minimal Mono", Category: StyleCategoryMonochrome},
	{ID: "silver-tone", Name: "Silver Tone", Category: StyleCategoryMonochrome},
	{ID: "carbon-lines", Name: "Carbon Lines", Category: StyleCategoryMonochrome},
}

// Styles returns the style catalog, optionally filtered by category.
// An empty category returns every style.
func Styles(category string) []Style {
	if category == "" {
		out := make([]Style, len(styleCatalog))
		copy(out, styleCatalog)
		return out
	}

	var out []Style
	for _, s := range styleCatalog {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// StyleByID looks up a style in the catalog.
func StyleByID(id string) (Style, bool) {
	for _, s := range styleCatalog {
		if s.ID == id {
			return s, true
		}
	}
	return Style{}, false
}

// StyleCategories returns the known catalog categories in display order.
func StyleCategories() []string {
	return []string{
		StyleCategoryColorful,
		StyleCategoryCasual,
		StyleCategoryHandDrawn,
		StyleCategoryFormal,
		StyleCategoryMonochrome,
	}
}
