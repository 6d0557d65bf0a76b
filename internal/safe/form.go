// Package safe renders the post-money SAFE agreement and fills externally
// supplied SAFE templates.
package safe

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrInvalidForm is returned when submitted form data fails validation.
var ErrInvalidForm = errors.New("invalid SAFE form")

const dateLayout = "2006-01-02"

// Form is the flat record of SAFE terms entered by the user.
type Form struct {
	CompanyName     string `json:"companyName"`
	CompanyState    string `json:"companyState"`
	InvestorName    string `json:"investorName"`
	PurchaseAmount  string `json:"purchaseAmount"`
	ValuationCap    string `json:"valuationCap"`
	DiscountRate    string `json:"discountRate"`
	Date            string `json:"date"`
	Title           string `json:"title"`
	FounderName     string `json:"founderName"`
	CompanyAddress  string `json:"companyAddress"`
	CompanyEmail    string `json:"companyEmail"`
	InvestorTitle   string `json:"investorTitle"`
	InvestorAddress string `json:"investorAddress"`
	InvestorEmail   string `json:"investorEmail"`
}

// Keys lists the form keys a template mapping may reference.
var Keys = []string{
	"companyName", "companyState", "investorName", "purchaseAmount", "valuationCap",
	"discountRate", "date", "title", "founderName", "companyAddress", "companyEmail",
	"investorTitle", "investorAddress", "investorEmail",
}

// PreviewForm returns the placeholder data used for preview documents.
func PreviewForm(now time.Time) Form {
	return Form{
		CompanyName:     "[COMPANY NAME]",
		CompanyState:    "[STATE OF INCORPORATION]",
		InvestorName:    "[INVESTOR NAME]",
		PurchaseAmount:  "100000",
		ValuationCap:    "10000000",
		DiscountRate:    "20",
		Date:            now.Format(dateLayout),
		Title:           "[TITLE]",
		FounderName:     "[FOUNDER NAME]",
		CompanyAddress:  "[COMPANY ADDRESS]",
		CompanyEmail:    "[COMPANY EMAIL]",
		InvestorTitle:   "[INVESTOR TITLE]",
		InvestorAddress: "[INVESTOR ADDRESS]",
		InvestorEmail:   "[INVESTOR EMAIL]",
	}
}

// Normalize trims every field and fills an empty date with today's date.
func (f Form) Normalize(now time.Time) Form {
	for _, p := range f.fields() {
		*p = strings.TrimSpace(*p)
	}
	if f.Date == "" {
		f.Date = now.Format(dateLayout)
	}
	return f
}

// Validate checks the submission-time invariants. The returned error wraps
// ErrInvalidForm and lists every failing field.
func (f Form) Validate() error {
	var problems []string
	if strings.TrimSpace(f.CompanyName) == "" {
		problems = append(problems, "companyName is required")
	}
	if strings.TrimSpace(f.InvestorName) == "" {
		problems = append(problems, "investorName is required")
	}
	if v, err := parseAmount(f.PurchaseAmount); err != nil || v <= 0 {
		problems = append(problems, "purchaseAmount must be a positive number")
	}
	if v, err := parseAmount(f.ValuationCap); err != nil || v <= 0 {
		problems = append(problems, "valuationCap must be a positive number")
	}
	if d := strings.TrimSpace(f.DiscountRate); d != "" {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(d, "%"), 64); err != nil || !(v >= 0 && v <= 100) {
			problems = append(problems, "discountRate must be a number between 0 and 100")
		}
	}
	if d := strings.TrimSpace(f.Date); d != "" {
		if _, err := time.Parse(dateLayout, d); err != nil {
			problems = append(problems, "date must be formatted YYYY-MM-DD")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(problems, "; "))
	}
	return nil
}

// Values returns the display value of every form key: amounts as en-US
// currency, the date as M/D/YYYY, the discount with a percent sign.
func (f Form) Values() map[string]string {
	discount := f.DiscountRate
	if discount != "" && !strings.HasSuffix(discount, "%") {
		discount += "%"
	}
	return map[string]string{
		"companyName":     f.CompanyName,
		"companyState":    f.CompanyState,
		"investorName":    f.InvestorName,
		"purchaseAmount":  MoneyOr(f.PurchaseAmount, "[PURCHASE AMOUNT]"),
		"valuationCap":    MoneyOr(f.ValuationCap, "[VALUATION CAP]"),
		"discountRate":    discount,
		"date":            DateOr(f.Date, "[DATE]"),
		"title":           f.Title,
		"founderName":     f.FounderName,
		"companyAddress":  f.CompanyAddress,
		"companyEmail":    f.CompanyEmail,
		"investorTitle":   f.InvestorTitle,
		"investorAddress": f.InvestorAddress,
		"investorEmail":   f.InvestorEmail,
	}
}

func (f *Form) fields() []*string {
	return []*string{
		&f.CompanyName, &f.CompanyState, &f.InvestorName, &f.PurchaseAmount, &f.ValuationCap,
		&f.DiscountRate, &f.Date, &f.Title, &f.FounderName, &f.CompanyAddress, &f.CompanyEmail,
		&f.InvestorTitle, &f.InvestorAddress, &f.InvestorEmail,
	}
}

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders an amount such as "100000" or "1,500.5" as "$100,000"
// or "$1,500.5".
func FormatMoney(s string) (string, error) {
	v, err := parseAmount(s)
	if err != nil {
		return "", err
	}
	return "$" + moneyPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(2))), nil
}

// MoneyOr formats s as money, or returns placeholder when s is not a number.
func MoneyOr(s, placeholder string) string {
	m, err := FormatMoney(s)
	if err != nil {
		return placeholder
	}
	return m
}

// FormatDate renders a YYYY-MM-DD date as M/D/YYYY.
func FormatDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t.Format("1/2/2006"), nil
}

// DateOr formats s as a date, or returns placeholder when s does not parse.
func DateOr(s, placeholder string) string {
	d, err := FormatDate(s)
	if err != nil {
		return placeholder
	}
	return d
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q is not finite", s)
	}
	return v, nil
}
