package qa

import (
	"strings"
	"unicode"
)

// Category labels, in classification priority order.
const (
	CategoryEquity     = "Equity & Vesting"
	CategoryFundraise  = "Fundraising"
	CategoryIP         = "Intellectual Property"
	CategoryCompliance = "Compliance"
	CategoryContracts  = "Contracts"
	CategoryGeneral    = "General Legal"
)

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryEquity, []string{"founder stock", "equity", "vesting", "vest", "cliff", "cap table", "share", "shares", "common stock", "preferred stock", "restricted stock", "stock option", "stock options", "option pool", "options", "83 b"}},
	{CategoryFundraise, []string{"safe", "series a", "seed", "pro rata", "valuation", "investor", "investors", "convertible", "term sheet", "fundraising", "raise"}},
	{CategoryIP, []string{"ip", "intellectual property", "patent", "patents", "trademark", "trademarks", "copyright", "invention", "trade secret"}},
	{CategoryCompliance, []string{"compliance", "comply", "regulation", "regulatory", "securities", "tax", "taxes", "filing", "gdpr", "privacy", "license"}},
	{CategoryContracts, []string{"nda", "contract", "contracts", "agreement", "lease", "employment", "contractor", "terms of service"}},
}

// Classify labels a question by the first category whose keywords it mentions.
func Classify(question string) string {
	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	padded := " " + strings.Join(words, " ") + " "

	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return c.category
			}
		}
	}
	return CategoryGeneral
}
