package model

// Phenomenon is one assessed item of the exported phenomena model
type Phenomenon struct {
	ID         string    `json:"id"`
	Dimension  Dimension `json:"dimension"`
	Name       string    `json:"name"`
	Likelihood Tier      `json:"likelihood"`
	Risk       int       `json:"risk"`
	Note       string    `json:"note,omitempty"`
}

// PhenomenonLink is an undirected link between two phenomenon ids
type PhenomenonLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Phenomena is the persisted phenomena/links artifact
type Phenomena struct {
	Phenomena []Phenomenon     `json:"phenomena"`
	Links     []PhenomenonLink `json:"links"`
}
