package address

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Parsed
	}{
		{
			name: "pincode embedded in state token",
			raw:  "12 MG Road, Andheri, Mumbai, Maharashtra 400001",
			want: Parsed{Line: "12 MG Road, Andheri", City: "Mumbai", State: "Maharashtra", Pincode: "400001"},
		},
		{
			name: "pincode as its own token",
			raw:  "12 MG Road, Mumbai, Maharashtra, 400001",
			want: Parsed{Line: "12 MG Road", City: "Mumbai", State: "Maharashtra", Pincode: "400001"},
		},
		{
			name: "two tokens only extracts pincode",
			raw:  "Flat 4B, Mumbai 400001",
			want: Parsed{Line: "Flat 4B, Mumbai 400001", Pincode: "400001"},
		},
		{
			name: "single line",
			raw:  "Somewhere",
			want: Parsed{Line: "Somewhere"},
		},
		{
			name: "empty",
			raw:  "   ",
			want: Parsed{},
		},
		{
			name: "no pincode",
			raw:  "12 MG Road, Mumbai, Maharashtra",
			want: Parsed{Line: "12 MG Road", City: "Mumbai", State: "Maharashtra"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
