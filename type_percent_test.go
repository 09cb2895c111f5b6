package pnl

import "testing"

func TestPercent(t *testing.T) {
	testCases := []struct {
		num, den   string
		want       string
		wantSigned string
	}{
		{num: "1", den: "8", want: "12.50%", wantSigned: "+12.50%"},
		{num: "-1", den: "20", want: "-5.00%", wantSigned: "-5.00%"},
		{num: "3", den: "0", want: "0.00%", wantSigned: "-"},
		{num: "0.00001", den: "1", want: "0.00%", wantSigned: "-"},
	}
	for _, tc := range testCases {
		p := ratio(D(tc.num), D(tc.den))
		if got := p.String(); got != tc.want {
			t.Errorf("ratio(%s, %s).String() = %q, want %q", tc.num, tc.den, got, tc.want)
		}
		if got := p.SignedString(); got != tc.wantSigned {
			t.Errorf("ratio(%s, %s).SignedString() = %q, want %q", tc.num, tc.den, got, tc.wantSigned)
		}
	}
}
