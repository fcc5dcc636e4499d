package rules

func f(v float64) *float64 { return &v }

// NSW is the flat New South Wales table: overnight spill, a morning sell
// window, pre-peak top-up and a high bar during the evening peak.
func NSW() Table {
	return Table{
		Region: "nsw",
		Rules: []Rule{
			{
				Name:   "overnight_sell",
				When:   Condition{FromHour: 0, ToHour: 6, SellAbove: f(85)},
				Action: "export",
				Reason: "sell price greater than 85 cents between midnight and 6am",
			},
			{
				Name:   "overnight_cheap_buy",
				When:   Condition{FromHour: 0, ToHour: 6, BuyBelow: f(5), MinSOC: f(20)},
				Action: "import",
				Reason: "buy price less than 5 cents between midnight and 6am",
			},
			{
				Name:   "morning_sell",
				When:   Condition{FromHour: 6, ToHour: 13, SellAbove: f(20)},
				Action: "export",
				Reason: "sell price greater than 20 cents between 6am and 1pm",
			},
			{
				Name:   "morning_cheap_buy",
				When:   Condition{FromHour: 6, ToHour: 13, BuyBelow: f(5), MaxSOC: f(50)},
				Action: "import",
				Reason: "buy price less than 5 cents between 6am and 1pm",
			},
			{
				Name:   "prepeak_topup",
				When:   Condition{FromHour: 13, ToHour: 15, MaxSOC: f(60)},
				Action: "import",
				Reason: "top up before peak between 1pm and 3pm",
			},
			{
				Name:   "peak_sell",
				When:   Condition{FromHour: 15, ToHour: 21, SellAbove: f(85), MinSOC: f(20)},
				Action: "export",
				Reason: "sell price greater than 85 cents during peak hours",
			},
			{
				Name:   "evening_sell",
				When:   Condition{FromHour: 21, ToHour: 24, SellAbove: f(85)},
				Action: "export",
				Reason: "sell price greater than 85 cents between 9pm and midnight",
			},
			{
				Name:   "evening_cheap_buy",
				When:   Condition{FromHour: 21, ToHour: 24, BuyBelow: f(10), MaxSOC: f(30)},
				Action: "import",
				Reason: "buy price less than 10 cents between 9pm and midnight",
			},
		},
		RRPSpikeThreshold:  800,
		RRPSpikeMinSOC:     30,
		NegativeRRPFeedInW: 0,
	}
}

// VIC mirrors the NSW shape with Victoria's cheaper morning buy window and
// staged morning spill-down thresholds.
func VIC() Table {
	return Table{
		Region: "vic",
		Rules: []Rule{
			{
				Name:   "overnight_sell",
				When:   Condition{FromHour: 0, ToHour: 6, SellAbove: f(85)},
				Action: "export",
				Reason: "sell price greater than 85 cents between midnight and 6am",
			},
			{
				Name:   "morning_spill_high",
				When:   Condition{FromHour: 0, ToHour: 4, SellAbove: f(20), MinSOC: f(20)},
				Action: "export",
				Reason: "morning use it or lose it down to 20%",
			},
			{
				Name:   "dawn_spill_low",
				When:   Condition{FromHour: 4, ToHour: 6, SellAbove: f(15), MinSOC: f(10)},
				Action: "export",
				Reason: "morning use it or lose it down to 10%",
			},
			{
				Name:   "overnight_cheap_buy",
				When:   Condition{FromHour: 0, ToHour: 6, BuyBelow: f(5), MinSOC: f(20)},
				Action: "import",
				Reason: "buy price less than 5 cents between midnight and 6am",
			},
			{
				Name:   "morning_sell",
				When:   Condition{FromHour: 6, ToHour: 13, SellAbove: f(20)},
				Action: "export",
				Reason: "sell price greater than 20 cents between 6am and 1pm",
			},
			{
				Name:   "morning_cheap_buy",
				When:   Condition{FromHour: 6, ToHour: 13, BuyBelow: f(2)},
				Action: "import",
				Reason: "buy price less than 2 cents between 6am and 1pm",
			},
			{
				Name:   "prepeak_topup",
				When:   Condition{FromHour: 13, ToHour: 15, BuyBelow: f(20), MaxSOC: f(99)},
				Action: "import",
				Reason: "buy price less than 20 cents between 1pm and 3pm",
			},
			{
				Name:   "peak_sell",
				When:   Condition{FromHour: 15, ToHour: 21, SellAbove: f(85), MinSOC: f(20)},
				Action: "export",
				Reason: "sell price greater than 85 cents during peak hours",
			},
			{
				Name:   "evening_spill",
				When:   Condition{FromHour: 15, ToHour: 24, SellAbove: f(25), MinSOC: f(80)},
				Action: "export",
				Reason: "use it or lose it down to 80%",
			},
			{
				Name:   "evening_sell",
				When:   Condition{FromHour: 21, ToHour: 24, SellAbove: f(85)},
				Action: "export",
				Reason: "sell price greater than 85 cents between 9pm and midnight",
			},
			{
				Name:   "evening_cheap_buy",
				When:   Condition{FromHour: 21, ToHour: 24, BuyBelow: f(10)},
				Action: "import",
				Reason: "buy price less than 10 cents between 9pm and midnight",
			},
		},
		RRPSpikeThreshold:  800,
		RRPSpikeMinSOC:     30,
		NegativeRRPFeedInW: 0,
	}
}

// Builtin resolves a named preset table, false when unknown.
func Builtin(region string) (Table, bool) {
	switch region {
	case "nsw":
		return NSW(), true
	case "vic":
		return VIC(), true
	}
	return Table{}, false
}
