package pnl

import "testing"

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		amount     string
		want       string
		wantSigned string
	}{
		{amount: "0", want: "$0.00", wantSigned: "-"},
		{amount: "0.004", want: "$0.00", wantSigned: "-"},
		{amount: "1234.5", want: "$1,234.50", wantSigned: "+$1,234.50"},
		{amount: "-3.456", want: "-$3.46", wantSigned: "-$3.46"},
		{amount: "1000000", want: "$1,000,000.00", wantSigned: "+$1,000,000.00"},
	}
	for _, tc := range testCases {
		m := USD(tc.amount)
		if got := m.String(); got != tc.want {
			t.Errorf("USD(%s).String() = %q, want %q", tc.amount, got, tc.want)
		}
		if got := m.SignedString(); got != tc.wantSigned {
			t.Errorf("USD(%s).SignedString() = %q, want %q", tc.amount, got, tc.wantSigned)
		}
	}
}
