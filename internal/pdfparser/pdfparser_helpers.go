package pdfparser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"fjacquet/fintrack/internal/currencyutils"
	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parsererror"
)

var (
	dateStartRe = regexp.MustCompile(`^\s*` + dateutils.MonthDayPattern + `\b`)
	numericRe   = regexp.MustCompile(`^-?\$?\d[\d,]*(?:\.\d+)?$`)
	amountRe    = regexp.MustCompile(`^-?\$?(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}$`)
)

// spendCategories are the issuer labels printed after credit card descriptions.
var spendCategories = []string{
	"Health and Education",
	"Restaurants",
	"Retail and Grocery",
	"Professional and Financial Services",
	"Gas and Groceries",
	"Gas Stations",
	"Transportation",
	"Personal and Household Expenses",
	"Hotel, Entertainment and Recreation",
	"Home and Office Improvement",
	"Foreign Currency Transactions",
}

type token struct {
	text       string
	start, end int
}

// fields splits s like strings.Fields but keeps byte offsets, which the bank
// layout needs to tell withdrawal and deposit columns apart.
func fields(s string) []token {
	var out []token
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, token{text: s[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, token{text: s[start:], start: start, end: len(s)})
	}
	return out
}

func startsWithDate(line string) bool {
	return dateStartRe.MatchString(line)
}

func parseAmount(text string) (decimal.Decimal, error) {
	if !amountRe.MatchString(text) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", text)
	}
	return currencyutils.ParseAmount(text)
}

// candidate is a line that starts with a date token and ends with a number.
type candidate struct {
	lineNo      int
	line        string
	date        string
	rest        []token
	description string
	amount      token
	balance     *token
}

// splitCandidate returns nil for lines that are not transaction candidates.
func splitCandidate(lineNo int, line string) *candidate {
	loc := dateStartRe.FindStringIndex(line)
	if loc == nil {
		return nil
	}
	rest := fields(line[loc[1]:])
	for i := range rest {
		rest[i].start += loc[1]
		rest[i].end += loc[1]
	}
	if len(rest) == 0 || !numericRe.MatchString(rest[len(rest)-1].text) {
		return nil
	}
	return &candidate{
		lineNo: lineNo,
		line:   strings.TrimSpace(line),
		date:   line[loc[0]:loc[1]],
		rest:   rest,
	}
}

func (st *state) fail(c *candidate, field string, err error) error {
	return &parsererror.ParseError{
		Document: st.document,
		LineNo:   c.lineNo,
		Line:     c.line,
		Field:    field,
		Err:      err,
	}
}

// resolve extracts date, description and amount tokens common to both layouts.
func (st *state) resolve(c *candidate, withBalance bool) (models.RawTransaction, error) {
	period := st.activePeriod()
	if period.IsZero() {
		return models.RawTransaction{}, st.fail(c, "period", st.periodErr)
	}
	month, day, err := dateutils.ParseMonthDay(c.date)
	if err != nil {
		return models.RawTransaction{}, st.fail(c, "date", err)
	}
	date, err := dateutils.ResolveDate(period, month, day)
	if err != nil {
		return models.RawTransaction{}, st.fail(c, "date", err)
	}

	n := len(c.rest)
	c.amount = c.rest[n-1]
	if !amountRe.MatchString(c.amount.text) {
		return models.RawTransaction{}, st.fail(c, "amount", fmt.Errorf("invalid amount %q", c.amount.text))
	}
	descEnd := n - 1
	if withBalance && n >= 2 && amountRe.MatchString(c.rest[n-2].text) {
		balance := c.amount
		c.balance = &balance
		c.amount = c.rest[n-2]
		descEnd = n - 2
	}

	parts := make([]string, 0, descEnd)
	for _, t := range c.rest[:descEnd] {
		parts = append(parts, t.text)
	}
	c.description = strings.Join(parts, " ")

	raw := models.RawTransaction{Date: date, LineNo: c.lineNo}
	if c.balance != nil {
		b, err := parseAmount(c.balance.text)
		if err != nil {
			return models.RawTransaction{}, st.fail(c, "balance", err)
		}
		raw.Balance = &b
	}
	return raw, nil
}

func (st *state) append(c *candidate, raw models.RawTransaction) error {
	if strings.TrimSpace(raw.Description) == "" {
		return st.fail(c, "description", errors.New("empty description"))
	}
	sec, err := st.section(c.lineNo, c.line)
	if err != nil {
		return err
	}
	raw.AccountNumber = sec.Account.Number
	sec.Transactions = append(sec.Transactions, raw)
	return nil
}

// bankState tracks column layout and running balance of a bank statement.
type bankState struct {
	withdrawEnd int
	depositEnd  int
	hasColumns  bool
	balance     *decimal.Decimal
}

func (st *state) bankLine(lineNo int, line, trimmed string) error {
	lower := strings.ToLower(trimmed)

	if strings.Contains(lower, "withdrawals") && strings.Contains(lower, "deposits") {
		w := strings.Index(strings.ToLower(line), "withdrawals")
		d := strings.Index(strings.ToLower(line), "deposits")
		st.bank = bankState{
			withdrawEnd: w + len("withdrawals"),
			depositEnd:  d + len("deposits"),
			hasColumns:  true,
			balance:     st.bank.balance,
		}
		return nil
	}

	if strings.Contains(lower, "opening balance") || strings.Contains(lower, "balance forward") {
		toks := fields(trimmed)
		if len(toks) > 0 {
			if b, err := parseAmount(toks[len(toks)-1].text); err == nil {
				st.bank.balance = &b
			}
		}
		return nil
	}
	if strings.Contains(lower, "closing balance") {
		return nil
	}

	c := splitCandidate(lineNo, line)
	if c == nil {
		return nil
	}
	raw, err := st.resolve(c, true)
	if err != nil {
		return err
	}
	raw.Description = c.description

	amount, err := parseAmount(c.amount.text)
	if err != nil {
		return st.fail(c, "amount", err)
	}
	signed, err := st.bankSign(c, amount.Abs(), raw.Balance)
	if err != nil {
		return err
	}
	raw.Amount = signed

	switch {
	case raw.Balance != nil:
		b := *raw.Balance
		st.bank.balance = &b
	case st.bank.balance != nil:
		b := st.bank.balance.Add(signed)
		st.bank.balance = &b
	}
	return st.append(c, raw)
}

// bankSign decides whether amount is a withdrawal or a deposit: from the
// column it sits under, else from the running balance. A line matching
// neither is rejected rather than guessed.
func (st *state) bankSign(c *candidate, amount decimal.Decimal, balance *decimal.Decimal) (decimal.Decimal, error) {
	if st.bank.hasColumns {
		toWithdraw := abs(c.amount.end - st.bank.withdrawEnd)
		toDeposit := abs(c.amount.end - st.bank.depositEnd)
		if toDeposit < toWithdraw {
			return amount, nil
		}
		return amount.Neg(), nil
	}

	if st.bank.balance != nil && balance != nil {
		prev := *st.bank.balance
		switch {
		case prev.Sub(amount).Equal(*balance):
			return amount.Neg(), nil
		case prev.Add(amount).Equal(*balance):
			return amount, nil
		}
		return decimal.Zero, st.fail(c, "sign", fmt.Errorf("balance %s does not follow %s by %s", balance, prev, amount))
	}

	return decimal.Zero, st.fail(c, "sign", errors.New("no column header or running balance to tell withdrawals from deposits"))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type creditState struct {
	inPayments bool
}

func (st *state) creditLine(lineNo int, line, trimmed string) error {
	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "your payments"):
		st.credit.inPayments = true
		return nil
	case strings.Contains(lower, "your new charges"), strings.Contains(lower, "new charges and credits"):
		st.credit.inPayments = false
		return nil
	}

	c := splitCandidate(lineNo, line)
	if c == nil {
		return nil
	}
	// Post date follows the transaction date.
	if len(c.rest) > 2 {
		pair := c.rest[0].text + " " + c.rest[1].text
		if _, _, err := dateutils.ParseMonthDay(pair); err == nil {
			c.rest = c.rest[2:]
		}
	}

	raw, err := st.resolve(c, false)
	if err != nil {
		return err
	}
	raw.Description = stripSpendCategory(c.description)

	amount, err := parseAmount(c.amount.text)
	if err != nil {
		return st.fail(c, "amount", err)
	}
	switch {
	case st.credit.inPayments, strings.HasPrefix(c.amount.text, "-"):
		raw.Amount = amount.Abs()
	default:
		raw.Amount = amount.Abs().Neg()
	}
	return st.append(c, raw)
}

func stripSpendCategory(description string) string {
	for _, label := range spendCategories {
		if strings.HasSuffix(description, " "+label) {
			return strings.TrimSpace(strings.TrimSuffix(description, label))
		}
	}
	return description
}
