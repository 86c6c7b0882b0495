package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/model"
)

// Mapping names the accounts statement rows land on. The statement account
// is the asset or liability the CSV was exported from; inflow and outflow
// are the income and expense counterparts for unclassified rows.
type Mapping struct {
	StatementAccountID string
	InflowAccountID    string
	OutflowAccountID   string
}

// Convert turns a statement row into a double-entry transaction. Money out
// (negative) debits the outflow account and credits the statement account;
// money in debits the statement account and credits the inflow account. The
// statement reference rides along as a tag so re-imports can be detected.
func Convert(bt model.BankTransaction, m Mapping, id string) (model.Transaction, error) {
	if bt.Amount.IsZero() {
		return model.Transaction{}, fmt.Errorf("statement row %q has zero amount", bt.Description)
	}

	tx := model.Transaction{
		ID:     id,
		Date:   bt.Date,
		Amount: bt.Amount.Abs(),
		Note:   bt.Description,
		Tags:   []string{"import", bt.Reference},
	}
	if bt.Amount.IsNegative() {
		tx.DebitAccountID = m.OutflowAccountID
		tx.CreditAccountID = m.StatementAccountID
	} else {
		tx.DebitAccountID = m.StatementAccountID
		tx.CreditAccountID = m.InflowAccountID
	}
	return tx, nil
}

// Writer is the store surface the importer writes through.
type Writer interface {
	CreateTransaction(ctx context.Context, tx model.Transaction) error
	Transactions(ctx context.Context) ([]model.Transaction, error)
}

// AuditFunc records an audit trail entry for an imported row.
type AuditFunc func(e auditlog.Entry) error

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
}

// Importer converts parsed statements into ledger writes. NewID and Audit
// may be overridden after construction.
type Importer struct {
	NewID func() string
	Audit AuditFunc

	writer Writer
	log    zerolog.Logger
}

// NewImporter wires an importer with UUID transaction IDs.
func NewImporter(writer Writer, log zerolog.Logger) *Importer {
	return &Importer{
		NewID:  uuid.NewString,
		writer: writer,
		log:    log,
	}
}

// Import parses r and writes every new row as a transaction. Rows whose
// statement reference already appears in the book are skipped, so importing
// the same export twice is harmless. A failed write aborts the run; rows
// already written stay written.
func (im *Importer) Import(ctx context.Context, r io.Reader, parser Parser, m Mapping) (Result, error) {
	rows, err := parser.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s statement: %w", parser.Format(), err)
	}

	seen, err := im.knownReferences(ctx)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, bt := range rows {
		if bt.Reference != "" && seen[bt.Reference] {
			result.Skipped++
			continue
		}

		tx, err := Convert(bt, m, im.NewID())
		if err != nil {
			return result, err
		}
		if err := im.writer.CreateTransaction(ctx, tx); err != nil {
			return result, fmt.Errorf("writing %q: %w", bt.Description, err)
		}
		seen[bt.Reference] = true
		result.Imported++

		if im.Audit != nil {
			entry := auditlog.Entry{
				Timestamp:     bt.Date,
				Actor:         "import",
				Action:        "import_bank_csv",
				Details:       bt.Description,
				TransactionID: tx.ID,
			}
			if err := im.Audit(entry); err != nil {
				im.log.Error().Err(err).Str("reference", bt.Reference).Msg("appending audit entry")
			}
		}
	}

	im.log.Info().
		Str("format", parser.Format()).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("statement import complete")
	return result, nil
}

// knownReferences collects the statement references already in the book.
func (im *Importer) knownReferences(ctx context.Context) (map[string]bool, error) {
	transactions, err := im.writer.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	seen := make(map[string]bool)
	for _, tx := range transactions {
		for _, tag := range tx.Tags {
			seen[tag] = true
		}
	}
	return seen, nil
}
