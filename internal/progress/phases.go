package progress

// Phases are display labels for the stages of a remote analysis. They are
// cosmetic: the service never reports which stage it is in.
var Phases = [...]string{
	"Collecting form data",
	"Processing smart attachments",
	"Running massive deep web research",
	"Analyzing with multiple AI models",
	"Building the archaeological avatar",
	"Generating custom mental drivers",
	"Developing instant visual proofs",
	"Constructing the anti-objection system",
	"Designing the invisible pre-pitch",
	"Mapping the competition in depth",
	"Calculating metrics and projections",
	"Predicting the market's future",
	"Consolidating exclusive insights",
}

// PhaseCount is the number of display phases.
const PhaseCount = len(Phases)
