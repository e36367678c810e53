package service

import (
	"fmt"

	"github.com/halsokollen/ingredicheck/backend/internal/reference"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// Status texts. The community-label templates are only used when the label
// carries no custom text.
const (
	textApproved        = "Approved"
	textMedicine        = "Non-Approved (Pharmaceutical Medicine)"
	textNovelFood       = "Non-Approved (Novel Food - Requires Authorization)"
	textUnderReview     = "Unknown (Novel Food Under Review)"
	textNotInGuide      = "Unknown (Not in Substance Guide)"
	textNoInformation   = "No information"
	textNeedsSelection  = "Unknown (Needs Selection)"
	textOverrideSafe    = "Approved (Community Override)"
	textOverrideDanger  = "Non-Approved (Community Override)"
	textOverrideUnknown = "Unknown (Community Label)"
)

// ClassifierOptions selects between the documented policy variants.
type ClassifierOptions struct {
	// NovelOnlyAuthorisedSafe treats an authorised novel food with no
	// substance-guide match as safe instead of unknown. Off by default:
	// absence from the substance guide is uncertainty, not approval.
	NovelOnlyAuthorisedSafe bool
}

// Classify maps an evidence bundle plus an optional community override to a
// verdict. Pure and total: it can be re-invoked from stored evidence alone
// whenever a label changes, without re-running the cascade.
func Classify(res types.Resolution, label *types.LabelOverride, opts ClassifierOptions) types.Verdict {
	if label != nil {
		return classifyOverride(label)
	}

	pharma := firstMatch(res.PharmaMatches)
	novel := firstMatch(res.NovelMatches)

	var v types.Verdict
	switch {
	case pharma != nil && pharma.IsMedicine:
		// Medicine beats everything; the novel food status is not
		// consulted.
		v = types.Verdict{
			Status:     types.StatusDanger,
			StatusText: textMedicine,
			Rationale:  fmt.Sprintf("%q is classified as a pharmaceutical medicine in the substance guide.", pharma.EntryName),
		}
	case pharma != nil && novel == nil:
		v = types.Verdict{
			Status:     types.StatusSafe,
			StatusText: textApproved,
			Rationale:  fmt.Sprintf("%q is a non-medicine substance guide entry with no novel food listing.", pharma.EntryName),
		}
	case pharma != nil:
		v = novelStatusVerdict(novel, true, opts)
	case novel != nil:
		v = novelStatusVerdict(novel, false, opts)
	case res.NeedsSelection:
		v = types.Verdict{
			Status:     types.StatusUnknown,
			StatusText: textNeedsSelection,
			Rationale:  fmt.Sprintf("No direct match; %d possible matches need confirmation.", len(res.Candidates)),
		}
	default:
		v = types.Verdict{
			Status:     types.StatusUnknown,
			StatusText: textNoInformation,
			Rationale:  "Not found in the substance guide or the novel food catalogue.",
		}
		if t := res.AttemptedTranslation; t != nil {
			v.Rationale = fmt.Sprintf("Not found in either dataset; also tried the translation %q.", t.TranslatedText)
		}
	}

	decisive := pharma
	if decisive == nil {
		decisive = novel
	}
	v.StatusText += provenanceSuffix(decisive)
	return v
}

func classifyOverride(label *types.LabelOverride) types.Verdict {
	v := types.Verdict{
		Status:    label.Status,
		Rationale: fmt.Sprintf("Community label (net votes %d) overrides the automated classification.", label.NetVotes),
	}
	if label.CustomText != "" {
		v.StatusText = label.CustomText
		return v
	}
	switch label.Status {
	case types.StatusSafe:
		v.StatusText = textOverrideSafe
	case types.StatusDanger:
		v.StatusText = textOverrideDanger
	default:
		v.StatusText = textOverrideUnknown
	}
	return v
}

// novelStatusVerdict applies the three-way novel food status test. inGuide
// distinguishes the branch where a non-medicine substance guide match backs
// the ingredient from the novel-food-only branch, where an authorised status
// alone is not automatic approval.
func novelStatusVerdict(novel *types.MatchEvidence, inGuide bool, opts ClassifierOptions) types.Verdict {
	switch novel.NovelFoodStatus {
	case reference.StatusNovelFood:
		return types.Verdict{
			Status:     types.StatusDanger,
			StatusText: textNovelFood,
			Rationale:  fmt.Sprintf("%q is a novel food requiring authorization before use.", novel.EntryName),
		}
	case reference.StatusAuthorised, reference.StatusNotNovelFood, reference.StatusNotNovelSupplement:
		if inGuide || opts.NovelOnlyAuthorisedSafe {
			return types.Verdict{
				Status:     types.StatusSafe,
				StatusText: textApproved,
				Rationale:  fmt.Sprintf("%q is authorised or not novel (%s).", novel.EntryName, novel.NovelFoodStatus),
			}
		}
		return types.Verdict{
			Status:     types.StatusUnknown,
			StatusText: textNotInGuide,
			Rationale:  fmt.Sprintf("%q has an acceptable novel food status (%s) but no substance guide entry.", novel.EntryName, novel.NovelFoodStatus),
		}
	default:
		// Subject to a consultation request, or an unrecognized/absent
		// status.
		return types.Verdict{
			Status:     types.StatusUnknown,
			StatusText: textUnderReview,
			Rationale:  fmt.Sprintf("%q has an unresolved novel food status.", novel.EntryName),
		}
	}
}

// provenanceSuffix appends traceability markers for degraded match kinds
// without altering the status value.
func provenanceSuffix(ev *types.MatchEvidence) string {
	if ev == nil {
		return ""
	}
	suffix := ""
	if ev.TranslatedFrom != "" {
		suffix += fmt.Sprintf(" - Translated from %q", ev.TranslatedFrom)
	}
	switch ev.Kind {
	case types.MatchSemantic, types.MatchFuzzyAuto, types.MatchFuzzyManual:
		suffix += fmt.Sprintf(" - %d%% fuzzy match", ev.Confidence)
	case types.MatchUserSelected:
		suffix += " - User Selected"
	}
	return suffix
}

func firstMatch(matches []types.MatchEvidence) *types.MatchEvidence {
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}
