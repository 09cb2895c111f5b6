package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var timelineFiles = predict.Files("*.jsonl")

var positionCompletion = map[string]complete.Predictor{
	"wallet": predict.Something,
	"vault":  predict.Something,
}

func withPosition(flags map[string]complete.Predictor) map[string]complete.Predictor {
	for k, v := range positionCompletion {
		flags[k] = v
	}
	return flags
}

// Complete runs shell completion when requested by the shell, and returns
// otherwise. It must be called before flag.Parse.
func Complete() {
	quote := map[string]complete.Predictor{
		"price":      predict.Something,
		"rate":       predict.Something,
		"quote-file": predict.Files("*.json"),
		"price-path": predict.Something,
		"rate-path":  predict.Something,
	}
	withQuote := func(flags map[string]complete.Predictor) map[string]complete.Predictor {
		for k, v := range quote {
			flags[k] = v
		}
		return flags
	}

	cmd := &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":   predict.Files("*.yaml"),
			"timeline": timelineFiles,
			"raw":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"report": {Flags: withQuote(withPosition(map[string]complete.Predictor{"json": predict.Nothing}))},
			"clm": {Flags: withPosition(map[string]complete.Predictor{
				"token0":     predict.Something,
				"token1":     predict.Something,
				"underlying": predict.Something,
				"t0ps":       predict.Something,
				"t1ps":       predict.Something,
				"ups":        predict.Something,
				"json":       predict.Nothing,
			})},
			"lots":      {Flags: withPosition(map[string]complete.Predictor{"clm": predict.Nothing, "all": predict.Nothing})},
			"positions": {Flags: withQuote(map[string]complete.Predictor{"parallel": predict.Something})},
			"fmt":       {Flags: map[string]complete.Predictor{"o": timelineFiles}},
			"import":    {Flags: withPosition(map[string]complete.Predictor{})},
			"serve":     {Flags: map[string]complete.Predictor{"listen": predict.Something}},
			"topic":     {Args: predict.Set{"readme", "timeline", "pnl", "clm", "quotes", "configuration", "*"}},
			"help":      {},
			"commands":  {},
			"flags":     {},
		},
	}
	cmd.Complete("vpnl")
}
