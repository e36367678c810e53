package reference

import "encoding/json"

// NovelFoodStatus is the EU novel food catalogue status of a substance.
type NovelFoodStatus string

const (
	StatusNovelFood          NovelFoodStatus = "Novel food"
	StatusAuthorised         NovelFoodStatus = "Authorised novel food"
	StatusNotNovelFood       NovelFoodStatus = "Not novel in food"
	StatusNotNovelSupplement NovelFoodStatus = "Not novel in food supplements"
	StatusUnderConsultation  NovelFoodStatus = "Subject to a consultation request"
	StatusUnspecified        NovelFoodStatus = ""
)

// ParseNovelFoodStatus maps raw catalogue text onto a known status.
// Unrecognized text collapses to StatusUnspecified; the classifier treats
// that the same as an absent status.
func ParseNovelFoodStatus(raw string) NovelFoodStatus {
	switch NovelFoodStatus(raw) {
	case StatusNovelFood, StatusAuthorised, StatusNotNovelFood, StatusNotNovelSupplement, StatusUnderConsultation:
		return NovelFoodStatus(raw)
	}
	return StatusUnspecified
}

// Entry is the shared capability of both reference datasets: a canonical
// name, synonyms, and a dataset identifier for evidence deduplication.
type Entry interface {
	CanonicalName() string
	Synonyms() []string
	// Identity is unique within a dataset (catalogue code for novel foods,
	// canonical name for the substance guide).
	Identity() string
}

// SubstanceGuideEntry is one row of the pharmaceutical substance guide.
type SubstanceGuideEntry struct {
	Name         string   `json:"name"`
	SynonymNames []string `json:"synonyms"`
	IsMedicine   bool     `json:"is_medicine"`
	Comment      string   `json:"comment"`
}

func (e *SubstanceGuideEntry) CanonicalName() string { return e.Name }
func (e *SubstanceGuideEntry) Synonyms() []string    { return e.SynonymNames }
func (e *SubstanceGuideEntry) Identity() string      { return e.Name }

// NovelFoodEntry is one row of the EU novel food catalogue.
type NovelFoodEntry struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	CommonName        string          `json:"common_name"`
	SynonymNames      []string        `json:"synonyms"`
	Status            NovelFoodStatus `json:"novel_food_status"`
	StatusDescription string          `json:"status_description"`
}

func (e *NovelFoodEntry) CanonicalName() string { return e.Name }

func (e *NovelFoodEntry) Synonyms() []string {
	if e.CommonName == "" {
		return e.SynonymNames
	}
	return append([]string{e.CommonName}, e.SynonymNames...)
}

func (e *NovelFoodEntry) Identity() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Name
}

// UnmarshalJSON tolerates synonym fields given as a single string instead of
// a list, and validates the status text.
func (e *NovelFoodEntry) UnmarshalJSON(data []byte) error {
	type alias struct {
		Code              string          `json:"code"`
		Name              string          `json:"name"`
		CommonName        string          `json:"common_name"`
		SynonymNames      flexibleStrings `json:"synonyms"`
		Status            string          `json:"novel_food_status"`
		StatusDescription string          `json:"status_description"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	e.Code = a.Code
	e.Name = a.Name
	e.CommonName = a.CommonName
	e.SynonymNames = a.SynonymNames
	e.Status = ParseNovelFoodStatus(a.Status)
	e.StatusDescription = a.StatusDescription
	return nil
}

// UnmarshalJSON tolerates a bare string in the synonyms field.
func (e *SubstanceGuideEntry) UnmarshalJSON(data []byte) error {
	type alias struct {
		Name         string          `json:"name"`
		SynonymNames flexibleStrings `json:"synonyms"`
		IsMedicine   bool            `json:"is_medicine"`
		Comment      string          `json:"comment"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	e.Name = a.Name
	e.SynonymNames = a.SynonymNames
	e.IsMedicine = a.IsMedicine
	e.Comment = a.Comment
	return nil
}

// flexibleStrings decodes either a JSON string or a JSON array of strings.
type flexibleStrings []string

func (f *flexibleStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*f = nil
		return nil
	}
	*f = []string{single}
	return nil
}
