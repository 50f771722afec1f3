package pipeline

import "testing"

func TestInjectBackground(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		svg   string
		color string
		want  string
	}{
		{
			name:  "mathjax output",
			svg:   `<svg style="vertical-align: -0.186ex;" xmlns="http://www.w3.org/2000/svg"></svg>`,
			color: "white",
			want:  `<svg style="background-color: white; vertical-align: -0.186ex;" xmlns="http://www.w3.org/2000/svg"></svg>`,
		},
		{
			name:  "custom color",
			svg:   `<svg style="">`,
			color: "#fafafa",
			want:  `<svg style="background-color: #fafafa; ">`,
		},
		{
			name:  "no style attribute",
			svg:   `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
			color: "white",
			want:  `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
		},
		{
			name:  "style not first",
			svg:   `<svg width="1ex" style="x">`,
			color: "white",
			want:  `<svg width="1ex" style="x">`,
		},
		{
			name:  "empty color disables",
			svg:   `<svg style="vertical-align: 0;">`,
			color: "",
			want:  `<svg style="vertical-align: 0;">`,
		},
		{
			name:  "empty markup",
			svg:   "",
			color: "white",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InjectBackground(tt.svg, tt.color); got != tt.want {
				t.Errorf("InjectBackground() = %q, want %q", got, tt.want)
			}
		})
	}
}
