package model

// Conversation states. The empty state means the user is not inside any flow.
const (
	StateNone = ""

	StateName        = "new:name"
	StateYear        = "new:year"
	StateRegion      = "new:region"
	StateCategory    = "new:category"
	StateGrams       = "new:grams"
	StateTempC       = "new:temp_c"
	StateTastedAt    = "new:tasted_at"
	StateGear        = "new:gear"
	StateAromaDry    = "new:aroma_dry"
	StateAromaWarmed = "new:aroma_warmed"

	StateInfSeconds    = "inf:seconds"
	StateInfColor      = "inf:color"
	StateInfTaste      = "inf:taste"
	StateInfSpecial    = "inf:special"
	StateInfBody       = "inf:body"
	StateInfAftertaste = "inf:aftertaste"
	StateInfMore       = "inf:more"

	StateEffects   = "es:effects"
	StateScenarios = "es:scenarios"
	StateRating    = "rs:rating"
	StateSummary   = "rs:summary"
	StatePhotos    = "photos"

	StateSearchName     = "search:name"
	StateSearchCategory = "search:category"
	StateSearchYear     = "search:year"

	StateEditChoosing = "edit:choosing"
	StateEditWaiting  = "edit:waiting_text"
)

// Session is the per-user conversation state. It is stored as JSON.
type Session struct {
	State string `json:"state"`
	Draft Draft  `json:"draft"`
	Edit  Edit   `json:"edit"`
}

// Draft collects a tasting while the questionnaire is in progress.
type Draft struct {
	UserID      int64    `json:"user_id"`
	Name        string   `json:"name,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Region      *string  `json:"region,omitempty"`
	Category    string   `json:"category,omitempty"`
	Grams       *float64 `json:"grams,omitempty"`
	TempC       *int     `json:"temp_c,omitempty"`
	TastedAt    *string  `json:"tasted_at,omitempty"`
	Gear        *string  `json:"gear,omitempty"`
	AromaDry    *string  `json:"aroma_dry,omitempty"`
	AromaWarmed *string  `json:"aroma_warmed,omitempty"`
	Effects     []string `json:"effects,omitempty"`
	Scenarios   []string `json:"scenarios,omitempty"`
	Rating      int      `json:"rating"`
	Summary     *string  `json:"summary,omitempty"`
	Photos      []string `json:"photos,omitempty"`

	Infusions []Infusion `json:"infusions,omitempty"`
	Current   Infusion   `json:"current"`

	// Selected holds the toggled options of the multi-select step in progress.
	Selected []string `json:"selected,omitempty"`
	// Awaiting names the step that waits for a free-text "other" value.
	Awaiting string `json:"awaiting,omitempty"`
}

// NextInfusion is the number of the infusion being filled in.
func (d *Draft) NextInfusion() int {
	return len(d.Infusions) + 1
}

// Edit is the context of the edit flow.
type Edit struct {
	TastingID        int64  `json:"tasting_id,omitempty"`
	SeqNo            int    `json:"seq_no,omitempty"`
	Field            string `json:"field,omitempty"`
	AwaitingCategory bool   `json:"awaiting_category,omitempty"`
	Warned           bool   `json:"warned,omitempty"`
}

func (e Edit) Valid() bool {
	return e.TastingID != 0 && e.SeqNo != 0
}
