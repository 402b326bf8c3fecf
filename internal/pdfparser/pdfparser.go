// Package pdfparser turns the layout text of CIBC bank-account and
// credit-card statements into accounts and raw transactions.
package pdfparser

import (
	"errors"
	"regexp"
	"strings"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parsererror"
)

var (
	accountLabelRe  = regexp.MustCompile(`(?i)\baccount\s+number\b`)
	bankAccountRe   = regexp.MustCompile(`\b(\d{2}-\d{5,})\b`)
	creditAccountRe = regexp.MustCompile(`\b(\d{4}\s+[Xx*]+\s+[Xx*]+\s+\d{4})\b`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Parser parses the extracted text of a single statement. It holds no state
// between documents.
type Parser struct {
	logger logging.Logger
}

// NewParser creates a statement parser.
func NewParser(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Parser{logger: logger}
}

// DetectKind identifies the statement sub-type from the first page.
func DetectKind(firstPage string) (models.StatementKind, error) {
	switch {
	case strings.Contains(firstPage, "Account Statement") && strings.Contains(firstPage, "Branch transit number"):
		return models.StatementBank, nil
	case strings.Contains(firstPage, "Visa"),
		strings.Contains(firstPage, "Mastercard"),
		strings.Contains(firstPage, "Credit Card"):
		return models.StatementCredit, nil
	default:
		return "", errors.New("no bank account or credit card layout markers on first page")
	}
}

func firstPage(text string) string {
	if i := strings.IndexByte(text, '\f'); i >= 0 {
		return text[:i]
	}
	return text
}

// Parse parses one statement. A document without transaction lines yields
// an empty statement and no error.
func (p *Parser) Parse(document, text string) (models.Statement, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	page := firstPage(text)

	kind, err := DetectKind(page)
	if err != nil {
		return models.Statement{}, &parsererror.UnsupportedDocumentError{Document: document, Reason: err.Error()}
	}

	st := newState(document, kind, text, page)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(strings.ReplaceAll(line, "\f", ""), " \t")
		if err := st.consume(i+1, line); err != nil {
			return models.Statement{}, err
		}
	}

	stmt := st.statement()
	p.logger.Info("Parsed statement",
		logging.F(logging.FieldDocument, document),
		logging.F(logging.FieldStatementType, string(kind)),
		logging.F("accounts", len(stmt.Sections)),
		logging.F(logging.FieldCount, len(stmt.Transactions())))
	return stmt, nil
}

// state carries the per-document parse position.
type state struct {
	document  string
	kind      models.StatementKind
	text      string
	firstPage string

	period    models.Period
	periodErr error

	sections       []models.Section
	index          map[string]int
	current        int
	pendingAccount bool
	recent         []string

	bank   bankState
	credit creditState
}

func newState(document string, kind models.StatementKind, text, page string) *state {
	st := &state{
		document:  document,
		kind:      kind,
		text:      text,
		firstPage: page,
		index:     make(map[string]int),
		current:   -1,
	}
	start, end, err := dateutils.ParsePeriod(page)
	if err != nil {
		start, end, err = dateutils.ParsePeriod(text)
	}
	if err != nil {
		st.periodErr = err
	} else {
		st.period = models.Period{Start: start, End: end}
	}
	return st
}

func (st *state) consume(lineNo int, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	defer st.remember(trimmed)

	if st.detectAccount(trimmed) {
		return nil
	}
	if dateutils.IsPeriodLine(trimmed) {
		st.sectionPeriod(trimmed)
		return nil
	}

	if st.kind == models.StatementBank {
		return st.bankLine(lineNo, line, trimmed)
	}
	return st.creditLine(lineNo, line, trimmed)
}

// sectionPeriod records a period printed inside an account section. Lines
// before any section keep the document period.
func (st *state) sectionPeriod(line string) {
	if st.current < 0 {
		return
	}
	start, end, err := dateutils.ParsePeriod(line)
	if err != nil {
		return
	}
	st.sections[st.current].Period = models.Period{Start: start, End: end}
}

// activePeriod is the period dates of the current section resolve against.
func (st *state) activePeriod() models.Period {
	if st.current >= 0 && !st.sections[st.current].Period.IsZero() {
		return st.sections[st.current].Period
	}
	return st.period
}

func (st *state) remember(line string) {
	st.recent = append(st.recent, line)
	if len(st.recent) > 3 {
		st.recent = st.recent[1:]
	}
}

func (st *state) accountPattern() *regexp.Regexp {
	if st.kind == models.StatementBank {
		return bankAccountRe
	}
	return creditAccountRe
}

// detectAccount opens or re-enters an account section on "Account number"
// lines. The number may sit on the line after the label.
func (st *state) detectAccount(line string) bool {
	re := st.accountPattern()
	if accountLabelRe.MatchString(line) {
		if m := re.FindStringSubmatch(line); m != nil {
			st.pendingAccount = false
			st.openSection(m[1], line)
			return true
		}
		st.pendingAccount = true
		return true
	}
	if !st.pendingAccount {
		return false
	}
	st.pendingAccount = false
	if startsWithDate(line) {
		return false
	}
	if m := re.FindStringSubmatch(line); m != nil {
		st.openSection(m[1], line)
		return true
	}
	return false
}

func (st *state) openSection(number, context string) {
	number = normalizeAccountNumber(number)
	if idx, ok := st.index[number]; ok {
		st.current = idx
		return
	}
	account := st.describeAccount(number, context)
	st.index[number] = len(st.sections)
	st.current = len(st.sections)
	st.sections = append(st.sections, models.Section{Account: account})
}

// section returns the section transactions belong to, falling back to the
// first account number found anywhere in the document.
func (st *state) section(lineNo int, line string) (*models.Section, error) {
	if st.current < 0 {
		m := st.accountPattern().FindStringSubmatch(st.text)
		if m == nil {
			return nil, &parsererror.ParseError{
				Document: st.document,
				LineNo:   lineNo,
				Line:     line,
				Field:    "account",
				Err:      errors.New("no account number in document"),
			}
		}
		st.openSection(m[1], st.firstPage)
	}
	return &st.sections[st.current], nil
}

func (st *state) describeAccount(number, context string) models.Account {
	if st.kind == models.StatementBank {
		hint := strings.ToLower(context + " " + strings.Join(st.recent, " "))
		if strings.Contains(hint, "savings") {
			return models.Account{Number: number, Name: "CIBC Savings Account", Type: models.AccountSavings}
		}
		return models.Account{Number: number, Name: "CIBC Chequing Account", Type: models.AccountChequing}
	}

	accountType := models.AccountCreditOther
	if strings.Contains(st.firstPage, "Visa") {
		accountType = models.AccountCreditVisa
	}
	name := "CIBC Credit Card"
	switch {
	case strings.Contains(st.firstPage, "Dividend"):
		name = "CIBC Dividend Visa"
	case strings.Contains(st.firstPage, "Aventura"):
		name = "CIBC Aventura Visa"
	}
	return models.Account{Number: number, Name: name, Type: accountType}
}

func normalizeAccountNumber(number string) string {
	return strings.ToUpper(whitespaceRe.ReplaceAllString(number, ""))
}

func (st *state) statement() models.Statement {
	return models.Statement{
		Document: st.document,
		Kind:     st.kind,
		Period:   st.period,
		Sections: st.sections,
	}
}
