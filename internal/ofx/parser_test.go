package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famfin/famfin/internal/model"
)

func ofxTransactionWithName(name string) ofxgo.Transaction {
	return ofxgo.Transaction{Name: ofxgo.String(name)}
}

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260301120000[0:GMT]
<DTEND>20260331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260310120000[0:GMT]
<TRNAMT>-25.50
<FITID>2026031001
<NAME>POS PURCHASE GROCER MART
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260315120000[0:GMT]
<TRNAMT>1500.00
<FITID>2026031501
<NAME>PAYROLL DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1474.50
<DTASOF>20260331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	parser := NewParser()
	accountID := uuid.New()

	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), accountID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	t.Run("debit becomes an expense magnitude", func(t *testing.T) {
		expense := transactions[0]
		assert.Equal(t, model.TransactionTypeExpense, expense.Type)
		assert.Equal(t, "25.5", expense.Amount.String())
		assert.False(t, expense.Amount.IsNegative(), "amounts are stored as magnitudes")
		assert.Equal(t, "GROCER MART", expense.Payee, "POS prefix stripped")
		assert.Equal(t, accountID, expense.AccountID)
		assert.Nil(t, expense.CategoryID, "imported transactions start uncategorized")
		assert.NotEmpty(t, expense.Hash)
	})

	t.Run("credit becomes income", func(t *testing.T) {
		income := transactions[1]
		assert.Equal(t, model.TransactionTypeIncome, income.Type)
		assert.Equal(t, "1500", income.Amount.String())
		assert.Equal(t, "PAYROLL DEPOSIT", income.Payee)
		assert.Equal(t, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), income.Date)
	})

	t.Run("re-parsing yields identical hashes", func(t *testing.T) {
		again, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), accountID)
		require.NoError(t, err)
		require.Len(t, again, 2)
		assert.Equal(t, transactions[0].Hash, again[0].Hash)
		assert.Equal(t, transactions[1].Hash, again[1].Hash)
	})
}

func TestParseFileInvalidInput(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("not an ofx file"), uuid.New())
	assert.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	t.Run("uppercases severity", func(t *testing.T) {
		input := "<SEVERITY>Info</SEVERITY>"
		assert.Equal(t, "<SEVERITY>INFO</SEVERITY>", parser.preprocessOFX(input))
	})

	t.Run("closes bare SGML tags", func(t *testing.T) {
		input := "<STMTTRN\n<TRNTYPE>DEBIT"
		processed := parser.preprocessOFX(input)
		assert.Contains(t, processed, "<STMTTRN>")
	})

	t.Run("trims leading whitespace", func(t *testing.T) {
		input := "\n\n  OFXHEADER:100"
		assert.Equal(t, "OFXHEADER:100", parser.preprocessOFX(input))
	})
}

func TestExtractPayee(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain name", "Grocer Mart", "Grocer Mart"},
		{"pos prefix", "POS PURCHASE GROCER MART", "GROCER MART"},
		{"check card prefix", "CHECK CARD COFFEE SHOP", "COFFEE SHOP"},
		{"ach prefix", "ACH DEBIT POWER COMPANY", "POWER COMPANY"},
		{"whitespace", "  Grocer Mart  ", "Grocer Mart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxTransactionWithName(tt.raw)
			assert.Equal(t, tt.want, parser.extractPayee(tx))
		})
	}
}
