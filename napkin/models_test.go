package napkin

import (
	"errors"
	"testing"
)

func validRequest() *Request {
	return &Request{
		Format:  FormatSVG,
		Content: "Plan, build, ship",
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(r *Request)
		wantField string
	}{
		{
			name:   "minimal valid request",
			modify: func(r *Request) {},
		},
		{
			name: "full valid request",
			modify: func(r *Request) {
				r.Format = FormatPNG
				r.Language = "en-US"
				r.StyleID = "vibrant-strokes"
				r.NumberOfVisuals = 3
				r.VisualQueries = []string{"mindmap", "timeline", "flowchart"}
				r.ColorMode = ColorModeBoth
				r.Width = 1200
				r.Height = 800
				r.Orientation = OrientationHorizontal
			},
		},
		{
			name:      "missing content",
			modify:    func(r *Request) { r.Content = "" },
			wantField: "content",
		},
		{
			name:      "missing format",
			modify:    func(r *Request) { r.Format = "" },
			wantField: "format",
		},
		{
			name:      "unknown format",
			modify:    func(r *Request) { r.Format = "gif" },
			wantField: "format",
		},
		{
			name:      "too many visuals",
			modify:    func(r *Request) { r.NumberOfVisuals = 5 },
			wantField: "number_of_visuals",
		},
		{
			name:      "negative visuals",
			modify:    func(r *Request) { r.NumberOfVisuals = -1 },
			wantField: "number_of_visuals",
		},
		{
			name: "id and query selectors together",
			modify: func(r *Request) {
				r.VisualID = "v-1"
				r.VisualQuery = "mindmap"
			},
			wantField: "visual_id",
		},
		{
			name: "single and plural id selectors together",
			modify: func(r *Request) {
				r.VisualID = "v-1"
				r.VisualIDs = []string{"v-2"}
			},
			wantField: "visual_ids",
		},
		{
			name: "single and plural query selectors together",
			modify: func(r *Request) {
				r.VisualQuery = "mindmap"
				r.VisualQueries = []string{"timeline"}
			},
			wantField: "visual_queries",
		},
		{
			name: "visual_ids length mismatch",
			modify: func(r *Request) {
				r.NumberOfVisuals = 3
				r.VisualIDs = []string{"v-1", "v-2"}
			},
			wantField: "visual_ids",
		},
		{
			name: "visual_queries mismatch with implicit count",
			modify: func(r *Request) {
				r.VisualQueries = []string{"mindmap", "timeline"}
			},
			wantField: "visual_queries",
		},
		{
			name:      "unknown color mode",
			modify:    func(r *Request) { r.ColorMode = "sepia" },
			wantField: "color_mode",
		},
		{
			name: "dimensions on svg",
			modify: func(r *Request) {
				r.Width = 800
			},
			wantField: "width",
		},
		{
			name: "negative height on png",
			modify: func(r *Request) {
				r.Format = FormatPNG
				r.Height = -100
			},
			wantField: "width",
		},
		{
			name:      "invalid language tag",
			modify:    func(r *Request) { r.Language = "not a language!" },
			wantField: "language",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(req)

			err := req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %T (%v), want *ValidationError", err, err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
		known    bool
	}{
		{StatusPending, false, true},
		{StatusProcessing, false, true},
		{StatusCompleted, true, true},
		{StatusFailed, true, true},
		{Status("exploded"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.Known(); got != tt.known {
				t.Errorf("Known() = %v, want %v", got, tt.known)
			}
		})
	}
}

func TestStyles(t *testing.T) {
	all := Styles("")
	if len(all) == 0 {
		t.Fatal("Styles(\"\") returned an empty catalog")
	}

	for _, category := range StyleCategories() {
		subset := Styles(category)
		if len(subset) == 0 {
			t.Errorf("Styles(%q) returned no entries", category)
		}
		for _, s := range subset {
			if s.Category != category {
				t.Errorf("Styles(%q) returned style %q in category %q", category, s.ID, s.Category)
			}
		}
	}

	if got := Styles("baroque"); len(got) != 0 {
		t.Errorf("Styles(\"baroque\") = %v, want empty", got)
	}

	s, ok := StyleByID("vibrant-strokes")
	if !ok || s.Name != "Vibrant Strokes" {
		t.Errorf("StyleByID(\"vibrant-strokes\") = %+v, %v", s, ok)
	}
	if _, ok := StyleByID("nope"); ok {
		t.Error("StyleByID(\"nope\") reported found")
	}
}
