package profile

// Built-in house archetypes. Diameters are nominal tube sizes in meters,
// roughness values are absolute roughness for the pipe material, and supply
// pressures are typical municipal service pressures for each housing stock.

func builtins() []*Profile {
	return []*Profile{
		modernPexSmall(),
		legacyCopperMedium(),
		oldGalvanizedLarge(),
	}
}

func modernPexSmall() *Profile {
	return &Profile{
		ID:          "modern_pex_small",
		Description: "Single-storey home with a PEX manifold layout",
		Envelope:    Envelope{MinDailyLiters: 180, MaxDailyLiters: 250},
		Fixtures: []Fixture{
			{Name: "kitchen_faucet", UsesPerDay: 8, MeanDurationS: 50, FlowLPM: 6.0},
			{Name: "bathroom_faucet", UsesPerDay: 10, MeanDurationS: 30, FlowLPM: 4.5},
			{Name: "toilet", UsesPerDay: 8, MeanDurationS: 35, FlowLPM: 6.5},
			{Name: "shower", UsesPerDay: 1.2, MeanDurationS: 360, FlowLPM: 9.0},
			{Name: "dishwasher", UsesPerDay: 0.4, MeanDurationS: 1200, FlowLPM: 2.0},
			{Name: "washing_machine", UsesPerDay: 0.5, MeanDurationS: 1800, FlowLPM: 3.0},
		},
		DiurnalWeights: []float64{
			0.20, 0.15, 0.10, 0.10, 0.15, 0.40,
			1.40, 1.80, 1.50, 1.00, 0.80, 0.90,
			1.00, 0.80, 0.70, 0.80, 1.00, 1.40,
			1.70, 1.60, 1.30, 1.00, 0.60, 0.30,
		},
		SupplyPressurePa: 310264, // 45 psi service
		SupplyNode:       "Municipal",
		MeterPipe:        "Municipal->Manifold",
		Nodes: []NodeDef{
			{Name: "Municipal"},
			{Name: "Manifold"},
			{Name: "WaterHeater"},
			{Name: "Kitchen", DemandShare: 0.30},
			{Name: "Bathroom", DemandShare: 0.25},
			{Name: "Shower", DemandShare: 0.25},
			{Name: "Laundry", DemandShare: 0.20},
		},
		Pipes: []PipeDef{
			{From: "Municipal", To: "Manifold", DiameterM: 0.019, LengthM: 12, Material: "pex", RoughnessM: 7e-6},
			{From: "Manifold", To: "Kitchen", DiameterM: 0.0127, LengthM: 6, Material: "pex", RoughnessM: 7e-6},
			{From: "Manifold", To: "Bathroom", DiameterM: 0.0127, LengthM: 5, Material: "pex", RoughnessM: 7e-6},
			{From: "Manifold", To: "WaterHeater", DiameterM: 0.019, LengthM: 2, Material: "pex", RoughnessM: 7e-6},
			{From: "WaterHeater", To: "Shower", DiameterM: 0.0127, LengthM: 7, Material: "pex", RoughnessM: 7e-6},
			{From: "Manifold", To: "Laundry", DiameterM: 0.0127, LengthM: 4, Material: "pex", RoughnessM: 7e-6},
		},
		Attributes: Attributes{
			"water_temperature_c": 14.0,
			"construction_year":   2012,
		},
	}
}

func legacyCopperMedium() *Profile {
	return &Profile{
		ID:          "legacy_copper_medium",
		Description: "Two-storey home with trunk-and-branch copper plumbing",
		Envelope:    Envelope{MinDailyLiters: 240, MaxDailyLiters: 340},
		Fixtures: []Fixture{
			{Name: "kitchen_faucet", UsesPerDay: 10, MeanDurationS: 50, FlowLPM: 7.0},
			{Name: "bathroom_faucet", UsesPerDay: 14, MeanDurationS: 30, FlowLPM: 5.0},
			{Name: "toilet", UsesPerDay: 12, MeanDurationS: 40, FlowLPM: 7.5},
			{Name: "shower", UsesPerDay: 1.8, MeanDurationS: 420, FlowLPM: 10.0},
			{Name: "dishwasher", UsesPerDay: 0.6, MeanDurationS: 1500, FlowLPM: 2.5},
			{Name: "washing_machine", UsesPerDay: 0.8, MeanDurationS: 2100, FlowLPM: 4.0},
			{Name: "garden_spigot", UsesPerDay: 0.5, MeanDurationS: 900, FlowLPM: 12.0},
		},
		DiurnalWeights: []float64{
			0.20, 0.15, 0.10, 0.10, 0.20, 0.50,
			1.50, 1.90, 1.60, 1.10, 0.90, 1.00,
			1.10, 0.90, 0.80, 0.90, 1.10, 1.50,
			1.80, 1.70, 1.40, 1.00, 0.60, 0.30,
		},
		SupplyPressurePa: 358528, // 52 psi service
		SupplyNode:       "Municipal",
		MeterPipe:        "Municipal->Manifold",
		Nodes: []NodeDef{
			{Name: "Municipal"},
			{Name: "Manifold"},
			{Name: "WaterHeater"},
			{Name: "Kitchen", DemandShare: 0.20},
			{Name: "Bathroom", DemandShare: 0.18},
			{Name: "Shower", DemandShare: 0.22},
			{Name: "UpstairsBath", DemandShare: 0.15, ElevationM: 2.8},
			{Name: "Laundry", DemandShare: 0.15},
			{Name: "Irrigation", DemandShare: 0.10},
		},
		Pipes: []PipeDef{
			{From: "Municipal", To: "Manifold", DiameterM: 0.019, LengthM: 18, Material: "copper", RoughnessM: 1.5e-6},
			{From: "Manifold", To: "Kitchen", DiameterM: 0.0127, LengthM: 8, Material: "copper", RoughnessM: 1.5e-6},
			{From: "Manifold", To: "Bathroom", DiameterM: 0.0127, LengthM: 6, Material: "copper", RoughnessM: 1.5e-6},
			{From: "Manifold", To: "WaterHeater", DiameterM: 0.019, LengthM: 3, Material: "copper", RoughnessM: 1.5e-6},
			{From: "WaterHeater", To: "Shower", DiameterM: 0.0127, LengthM: 9, Material: "copper", RoughnessM: 1.5e-6},
			{From: "Manifold", To: "UpstairsBath", DiameterM: 0.0127, LengthM: 11, Material: "copper", RoughnessM: 1.5e-6},
			{From: "Manifold", To: "Laundry", DiameterM: 0.0127, LengthM: 5, Material: "copper", RoughnessM: 1.5e-6},
			{From: "Manifold", To: "Irrigation", DiameterM: 0.019, LengthM: 14, Material: "copper", RoughnessM: 1.5e-6},
		},
		Attributes: Attributes{
			"water_temperature_c": 12.0,
			"construction_year":   1968,
		},
	}
}

func oldGalvanizedLarge() *Profile {
	return &Profile{
		ID:          "old_galvanized_large",
		Description: "Large pre-war home on corroding galvanized steel",
		Envelope:    Envelope{MinDailyLiters: 320, MaxDailyLiters: 480},
		Fixtures: []Fixture{
			{Name: "kitchen_faucet", UsesPerDay: 12, MeanDurationS: 55, FlowLPM: 8.0},
			{Name: "bathroom_faucet", UsesPerDay: 18, MeanDurationS: 30, FlowLPM: 5.5},
			{Name: "toilet", UsesPerDay: 16, MeanDurationS: 45, FlowLPM: 9.0},
			{Name: "shower", UsesPerDay: 2.4, MeanDurationS: 420, FlowLPM: 11.0},
			{Name: "bathtub", UsesPerDay: 0.4, MeanDurationS: 600, FlowLPM: 15.0},
			{Name: "dishwasher", UsesPerDay: 0.7, MeanDurationS: 1500, FlowLPM: 3.0},
			{Name: "washing_machine", UsesPerDay: 1.1, MeanDurationS: 2400, FlowLPM: 4.5},
			{Name: "irrigation_zone", UsesPerDay: 0.8, MeanDurationS: 1200, FlowLPM: 14.0},
		},
		DiurnalWeights: []float64{
			0.25, 0.20, 0.15, 0.15, 0.25, 0.60,
			1.60, 2.00, 1.70, 1.20, 1.00, 1.10,
			1.20, 1.00, 0.90, 1.00, 1.20, 1.60,
			1.90, 1.80, 1.50, 1.10, 0.70, 0.40,
		},
		SupplyPressurePa: 275790, // 40 psi service
		SupplyNode:       "Municipal",
		MeterPipe:        "Municipal->Manifold",
		Nodes: []NodeDef{
			{Name: "Municipal"},
			{Name: "Manifold"},
			{Name: "WaterHeater"},
			{Name: "Kitchen", DemandShare: 0.18},
			{Name: "Bathroom", DemandShare: 0.15},
			{Name: "Shower", DemandShare: 0.20},
			{Name: "UpstairsBath", DemandShare: 0.12, ElevationM: 3.2},
			{Name: "Laundry", DemandShare: 0.15},
			{Name: "Irrigation", DemandShare: 0.20},
		},
		Pipes: []PipeDef{
			{From: "Municipal", To: "Manifold", DiameterM: 0.025, LengthM: 22, Material: "galvanized", RoughnessM: 1.5e-4},
			{From: "Manifold", To: "Kitchen", DiameterM: 0.019, LengthM: 10, Material: "galvanized", RoughnessM: 1.5e-4},
			{From: "Manifold", To: "Bathroom", DiameterM: 0.019, LengthM: 7, Material: "galvanized", RoughnessM: 1.5e-4},
			{From: "Manifold", To: "WaterHeater", DiameterM: 0.019, LengthM: 4, Material: "galvanized", RoughnessM: 1.5e-4},
			{From: "WaterHeater", To: "Shower", DiameterM: 0.019, LengthM: 10, Material: "galvanized", RoughnessM: 1.5e-4},
			{From: "Manifold", To: "UpstairsBath", DiameterM: 0.019, LengthM: 13, Material: "galvanized", RoughnessM: 1.5e-4},
			{From: "Manifold", To: "Laundry", DiameterM: 0.019, LengthM: 6, Material: "galvanized", RoughnessM: 1.5e-4},
			{From: "Manifold", To: "Irrigation", DiameterM: 0.019, LengthM: 17, Material: "galvanized", RoughnessM: 1.5e-4},
		},
		Attributes: Attributes{
			"water_temperature_c": 11.0,
			"construction_year":   1931,
		},
	}
}
