package assets

// Flavour lines per theme, one per layer, cycling.
var (
	StoneLore = []string{
		"The corridors remember every wall they have ever had.",
		"Somewhere behind you a wall grinds into a new place. Your map is already wrong.",
		"A chalk arrow points at a wall. Yesterday it pointed at a door.",
	}
	IceLore = []string{
		"Frost-rimed walls hum with contained experiments. Several containment fields are no longer containing anything.",
		"Lab logs reference 'Phase III'. Phase I and II notes are conspicuously absent.",
		"A whiteboard reads: 'DO NOT TOUCH THE CRYSTALS'. Someone has drawn a smiley face next to it.",
	}
	MossLore = []string{
		"Spores drift lazily through the air. They smell faintly of copper and ambition.",
		"The walls breathe. You tell yourself this is a metaphor. The walls do not agree.",
	}
	BrassLore = []string{
		"Every gear turns in perfect synchrony. The machine does not appear to have an off switch.",
		"The vibration at this frequency is technically music. Technically.",
		"A placard reads: 'IN CASE OF RESONANCE CASCADE, EVACUATE DOWNWARD'. Downward seems like a bad idea.",
	}
)
