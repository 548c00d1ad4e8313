// Package ofx parses OFX/QFX bank statements into raw ledger transactions.
// Imported records carry no category; envelope assignment happens later in
// the budgeting flow.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX statement and returns raw transactions for the
// given ledger account. Amounts are non-negative magnitudes; the OFX sign
// picks income or expense.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader, accountID uuid.UUID) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	// Process bank messages
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
			}
		}
	}

	// Process credit card messages
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
			}
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// convertTransaction converts an OFX transaction to a raw ledger record.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID uuid.UUID) model.Transaction {
	// OFX amounts are signed rationals: negative for debits. Split into a
	// magnitude and an income/expense type without going through float64.
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)
	txnType := model.TransactionTypeIncome
	if amount.IsNegative() {
		amount = amount.Neg()
		txnType = model.TransactionTypeExpense
	}

	txn := model.Transaction{
		ID:        uuid.New(),
		Date:      ofxTx.DtPosted.Time.UTC(),
		Amount:    amount,
		Type:      txnType,
		Payee:     p.extractPayee(ofxTx),
		Memo:      string(ofxTx.Memo),
		Cleared:   true,
		AccountID: accountID,
	}
	txn.Hash = txn.GenerateHash()

	return txn
}

// extractPayee tries to get a clean payee name from OFX data.
func (p *Parser) extractPayee(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))

	// Remove common prefixes
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	upper := strings.ToUpper(name)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	return name
}
