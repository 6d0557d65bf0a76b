package processing

import (
	"regexp"
	"strings"
)

// fieldPatterns detect SAFE terms in extracted text. The first non-empty
// group is the value; keys match the SAFE form keys.
var fieldPatterns = []struct {
	key     string
	pattern *regexp.Regexp
}{
	{"companyName", regexp.MustCompile(`(?im)^[ \t]*company(?:[ \t]+name)?[ \t]*:[ \t]*(\S.*?)[ \t]*$`)},
	{"investorName", regexp.MustCompile(`(?im)^[ \t]*investor(?:[ \t]+name)?[ \t]*:[ \t]*(\S.*?)[ \t]*$`)},
	{"purchaseAmount", regexp.MustCompile(`(?i)purchase amount[^$\d\n]{0,40}\$[ \t]*([\d,]+(?:\.\d{1,2})?)|\$[ \t]*([\d,]+(?:\.\d{1,2})?)[ \t]*\(the ["\x{201C}]?purchase amount`)},
	{"valuationCap", regexp.MustCompile(`(?i)valuation cap[^$\d\n]{0,40}\$[ \t]*([\d,]+(?:\.\d{1,2})?)`)},
	{"discountRate", regexp.MustCompile(`(?i)discount rate[^\d\n]{0,20}(\d{1,3}(?:\.\d+)?)[ \t]*%`)},
	{"companyState", regexp.MustCompile(`\ban? ([A-Z][a-z]+(?: [A-Z][a-z]+)?) corporation\b`)},
	{"date", regexp.MustCompile(`(?i)\bdate[ \t]*:[ \t]*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})`)},
}

// DetectFields returns the SAFE terms found in text, keyed by form key. The
// first match of each pattern wins. It returns nil when nothing matched.
func DetectFields(text string) map[string]string {
	var found map[string]string
	for _, fp := range fieldPatterns {
		m := fp.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var value string
		for _, g := range m[1:] {
			if value = strings.TrimSpace(g); value != "" {
				break
			}
		}
		if value == "" {
			continue
		}
		if found == nil {
			found = make(map[string]string)
		}
		found[fp.key] = value
	}
	return found
}
