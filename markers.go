package packedtrie

// Markers are the dictionary marker characters. They are ordinary
// characters stored in the trie; their meaning comes from where they sit
// in a word:
//
//	!word    forbidden word
//	word+    compound prefix part
//	+word+   compound middle part
//	+word    compound suffix part
//	~word    case and accent stripped form
//	word:    suggestion entry
//
// An empty marker disables the feature.
type Markers struct {
	Forbidden string
	Compound  string
	Strip     string
	Suggest   string
}

// DefaultMarkers returns the markers used unless WithMarkers is given.
func DefaultMarkers() Markers {
	return Markers{
		Forbidden: "!",
		Compound:  "+",
		Strip:     "~",
		Suggest:   ":",
	}
}

// MarkerUsage reports which markers actually occur in a trie. It is
// derived once when the trie is built or decoded.
type MarkerUsage struct {
	Forbidden bool // some word starts with the forbidden marker
	Compound  bool // the compound marker is a known character
	Strip     bool // some word starts with the strip marker
	Suggest   bool // the suggest marker is a known character
}
