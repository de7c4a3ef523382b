package ddtft

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ddtft/internal/logger"
	"ddtft/internal/lookup"
	"ddtft/pkg/models"
)

// Parser extracts document records from text.
type Parser struct {
	lookup *lookup.Dataset
	log    zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLookup sets the reference dataset. The embedded default is used otherwise.
func WithLookup(ds *lookup.Dataset) Option {
	return func(p *Parser) {
		if ds != nil {
			p.lookup = ds
		}
	}
}

// WithLogger sets the logger used for stage tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) {
		p.log = l
	}
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		lookup: lookup.Default(),
		log:    logger.WithComponent("ddtft"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text with a parser built on the embedded dataset.
func Parse(text, fileName string) (*models.DocumentRecord, error) {
	return NewParser().Parse(text, fileName)
}

// line is one line of the document text.
type line struct {
	raw string // as extracted
	up  string // accent-folded and upper-cased
	no  int    // 1-based line number in the original text
}

// draft accumulates a record while the stages run.
type draft struct {
	fileName string
	baseName string // upper-cased base name of fileName
	lines    []line
	meta     map[string]string

	docType     models.DocumentType
	number      field[string]
	date        field[time.Time]
	clientCode  field[string]
	vat         field[string]
	orderNumber field[string]
	orderDate   field[time.Time]
	clientName  field[string]
	address     field[string]

	// clientLine is the index in lines where the client block starts, or -1.
	clientLine int
	// carrier marks the lines of the carrier block, never client data.
	carrier map[int]bool

	items     []models.LineItem
	subtotal  decimal.Decimal
	vatAmount decimal.Decimal
	total     decimal.Decimal

	diagnostics []models.Diagnostic
}

func (d *draft) diag(code, stage string, lineNo int, format string, args ...any) {
	d.diagnostics = append(d.diagnostics, models.Diagnostic{
		Code:    code,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Line:    lineNo,
	})
}

type stage struct {
	name string
	run  func(p *Parser, d *draft)
}

// stages run in this order. classify may mark the document unknown, which
// ends the pipeline.
var stages = []stage{
	{"metadata", (*Parser).applyMetadata},
	{"classify", (*Parser).classify},
	{"header", (*Parser).extractHeader},
	{"order", (*Parser).extractOrder},
	{"client", (*Parser).resolveClient},
	{"address", (*Parser).resolveAddress},
	{"items", (*Parser).extractItems},
	{"totals", (*Parser).reconcileTotals},
}

// Parse builds a record from extracted document text.
func (p *Parser) Parse(text, fileName string) (*models.DocumentRecord, error) {
	const op = "Parse"

	if strings.TrimSpace(text) == "" {
		return nil, NewParseError(op, ErrEmptyText, fileName)
	}

	d := p.newDraft(text, fileName)
	for _, s := range stages {
		s.run(p, d)
		p.log.Debug().
			Str("file", fileName).
			Str("stage", s.name).
			Int("diagnostics", len(d.diagnostics)).
			Msg("Stage completed")
		if d.docType == models.DocumentTypeUnknown {
			break
		}
	}

	record := d.record()
	p.log.Debug().
		Str("file", fileName).
		Str("type", string(record.DocumentType)).
		Str("number", record.DocumentNumber).
		Str("client", record.ClientName).
		Int("items", len(record.Items)).
		Str("total", record.Total.StringFixed(2)).
		Msg("Document parsed")
	return record, nil
}

// newDraft splits text into lines and marks the carrier block.
func (p *Parser) newDraft(text, fileName string) *draft {
	d := &draft{
		fileName:   fileName,
		baseName:   strings.ToUpper(filepath.Base(fileName)),
		clientLine: -1,
		subtotal:   decimal.Zero,
		vatAmount:  decimal.Zero,
		total:      decimal.Zero,
	}
	body, meta := splitMetadata(text)
	d.meta = meta
	for i, raw := range splitLines(body) {
		d.lines = append(d.lines, line{raw: raw, up: fold(raw), no: i + 1})
	}
	d.carrier = p.carrierBlock(d)
	return d
}

// record freezes the draft into a DocumentRecord.
func (d *draft) record() *models.DocumentRecord {
	r := &models.DocumentRecord{
		DocumentType:    d.docType,
		FileName:        d.fileName,
		DocumentNumber:  d.number.get(),
		DocumentDate:    d.date.get(),
		ClientCode:      d.clientCode.get(),
		VATNumber:       d.vat.get(),
		OrderNumber:     d.orderNumber.get(),
		OrderDate:       d.orderDate.get(),
		ClientName:      d.clientName.get(),
		DeliveryAddress: d.address.get(),
		Subtotal:        d.subtotal,
		VATAmount:       d.vatAmount,
		Total:           d.total,
	}
	if len(d.items) > 0 {
		r.Items = append([]models.LineItem(nil), d.items...)
	}
	if len(d.diagnostics) > 0 {
		r.Diagnostics = append([]models.Diagnostic(nil), d.diagnostics...)
	}

	prov := func(name string, set bool, method string, conf float64) {
		if set {
			r.Provenance = append(r.Provenance, models.FieldProvenance{Field: name, Method: method, Confidence: conf})
		}
	}
	prov("document_number", d.number.set, d.number.method, d.number.confidence)
	prov("document_date", d.date.set, d.date.method, d.date.confidence)
	prov("client_code", d.clientCode.set, d.clientCode.method, d.clientCode.confidence)
	prov("vat_number", d.vat.set, d.vat.method, d.vat.confidence)
	prov("order_number", d.orderNumber.set, d.orderNumber.method, d.orderNumber.confidence)
	prov("order_date", d.orderDate.set, d.orderDate.method, d.orderDate.confidence)
	prov("client_name", d.clientName.set, d.clientName.method, d.clientName.confidence)
	prov("delivery_address", d.address.set, d.address.method, d.address.confidence)
	return r
}
