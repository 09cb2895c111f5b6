package pnl

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestJsonObjectWriter(t *testing.T) {
	testCases := []struct {
		name  string
		write func(w *jsonObjectWriter)
		want  string
	}{
		{
			name:  "no field",
			write: func(*jsonObjectWriter) {},
			want:  `{}`,
		},
		{
			name: "fields in call order",
			write: func(w *jsonObjectWriter) {
				w.Append("command", CmdDeposit)
				w.Append("time", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
				w.Append("shares", 0) // Append keeps zero values
			},
			want: `{"command":"deposit","time":"2024-01-02T00:00:00Z","shares":0}`,
		},
		{
			name: "optional fields",
			write: func(w *jsonObjectWriter) {
				w.Optional("id", "")
				w.Optional("memo", "rebalance")
				w.Optional("claims", []Claim(nil))
			},
			want: `{"memo":"rebalance"}`,
		},
		{
			name: "decimal fields",
			write: func(w *jsonObjectWriter) {
				w.Decimal("a", D("1.50"))
				w.Decimal("b", decimal.Decimal{})
				w.Decimal("c", D("1.5").Sub(D("1.5"))) // computed zero
				w.Decimal("d", D("-0.001"))
			},
			want: `{"a":1.5,"d":-0.001}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w jsonObjectWriter
			tc.write(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestJsonObjectWriter_MarshalError(t *testing.T) {
	var w jsonObjectWriter
	w.Append("a", 1)
	w.Append("b", make(chan int))
	w.Append("c", 3)
	if _, err := w.MarshalJSON(); err == nil {
		t.Error("MarshalJSON() expected an error for an unsupported value")
	}
}
