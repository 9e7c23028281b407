package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
)

// Cursor fields shared by most endpoints.
const (
	CreatedDateUTC = "CreatedDateUTC"
	UpdatedDateUTC = "UpdatedDateUTC"
)

// TimeWindowPageSize is the page size for page-numbered endpoints.
const TimeWindowPageSize = 1000

// ReportTypes are the reports fetched by the Reports endpoint.
var ReportTypes = []string{
	"BalanceSheet",
	"BankSummary",
	"BudgetSummary",
	"ExecutiveSummary",
	"ProfitAndLoss",
	"TrialBalance",
}

// AttachmentParents are the endpoints swept for attachment metadata.
var AttachmentParents = []AttachmentParent{
	{Endpoint: "Accounts", IDField: "AccountID", DisplayField: "Code"},
	{Endpoint: "BankTransactions", IDField: "BankTransactionID", DisplayField: "Reference"},
	{Endpoint: "BankTransfers", IDField: "BankTransferID", DisplayField: "BankTransferID"},
	{Endpoint: "Contacts", IDField: "ContactID", DisplayField: "Name"},
	{Endpoint: "CreditNotes", IDField: "CreditNoteID", DisplayField: "CreditNoteNumber"},
	{Endpoint: "Invoices", IDField: "InvoiceID", DisplayField: "InvoiceNumber"},
	{Endpoint: "ManualJournals", IDField: "ManualJournalID", DisplayField: "Narration"},
	{Endpoint: "PurchaseOrders", IDField: "PurchaseOrderID", DisplayField: "PurchaseOrderNumber"},
	{Endpoint: "Quotes", IDField: "QuoteID", DisplayField: "QuoteNumber"},
}

// fixedName writes every entity of an endpoint to one file.
func fixedName(stem string) Namer {
	return func(domain.Entity, domain.Split) string {
		return stem + ".jsonl"
	}
}

// datedName suffixes stem with the entity's dateField per the split.
// Entities without a parseable date go to the unsuffixed file.
func datedName(stem, dateField string) Namer {
	return func(entity domain.Entity, split domain.Split) string {
		t, err := entity.Time(dateField)
		if err != nil {
			return stem + ".jsonl"
		}
		return stem + split.Suffix(t) + ".jsonl"
	}
}

func defaultStrategy(endpoint, dateField string) *Strategy {
	name := fixedName(lowerName(endpoint))
	if dateField != "" {
		name = datedName(lowerName(endpoint), dateField)
	}
	return &Strategy{
		Kind:         KindDefault,
		Endpoint:     endpoint,
		LatestFields: []string{CreatedDateUTC, UpdatedDateUTC},
		Name:         name,
	}
}

func staticStrategy(endpoint string) *Strategy {
	return &Strategy{
		Kind:     KindStatic,
		Endpoint: endpoint,
		Name:     fixedName(lowerName(endpoint)),
	}
}

func timeWindowStrategy(endpoint, source, where, stem string) *Strategy {
	return &Strategy{
		Kind:           KindTimeWindow,
		Endpoint:       endpoint,
		Source:         source,
		LatestFields:   []string{UpdatedDateUTC},
		SupportsUpdate: true,
		GuardBoundary:  true,
		GuardField:     UpdatedDateUTC,
		PageSize:       TimeWindowPageSize,
		Where:          where,
		Name:           datedName(stem, "Date"),
	}
}

func journalsStrategy() *Strategy {
	return &Strategy{
		Kind:           KindSequential,
		Endpoint:       "Journals",
		LatestFields:   []string{"JournalDate", "JournalNumber"},
		SupportsUpdate: true,
		SequenceField:  "JournalNumber",
		Name:           datedName("journals", "JournalDate"),
	}
}

// Catalogue maps endpoint names to strategies, in default sync order.
type Catalogue struct {
	order  []*Strategy
	byName map[string]*Strategy
}

// NewCatalogue builds a catalogue from strategies. Names must be unique.
func NewCatalogue(strategies ...*Strategy) *Catalogue {
	c := &Catalogue{byName: make(map[string]*Strategy, len(strategies))}
	for _, s := range strategies {
		c.order = append(c.order, s)
		c.byName[strings.ToLower(s.Endpoint)] = s
	}
	return c
}

// DefaultCatalogue returns every supported Xero accounting endpoint.
func DefaultCatalogue() *Catalogue {
	return NewCatalogue(
		defaultStrategy("Accounts", ""),
		timeWindowStrategy("BankTransactions", "", "", "transactions"),
		defaultStrategy("BankTransfers", "Date"),
		timeWindowStrategy("Bills", "Invoices", `Type=="ACCPAY"`, "bills"),
		staticStrategy("BrandingThemes"),
		staticStrategy("ContactGroups"),
		defaultStrategy("Contacts", ""),
		defaultStrategy("CreditNotes", "Date"),
		staticStrategy("Currencies"),
		defaultStrategy("Employees", ""),
		defaultStrategy("Invoices", "Date"),
		defaultStrategy("Items", ""),
		journalsStrategy(),
		defaultStrategy("ManualJournals", "Date"),
		defaultStrategy("Organisation", ""),
		defaultStrategy("Overpayments", "Date"),
		defaultStrategy("Payments", "Date"),
		defaultStrategy("Prepayments", "Date"),
		defaultStrategy("PurchaseOrders", "Date"),
		defaultStrategy("Quotes", "Date"),
		staticStrategy("RepeatingInvoices"),
		staticStrategy("TaxRates"),
		staticStrategy("TrackingCategories"),
		defaultStrategy("Users", ""),
		&Strategy{
			Kind:     KindFanOut,
			Endpoint: "Reports",
			IDs:      ReportTypes,
			Name:     reportName,
		},
		&Strategy{
			Kind:        KindAttachments,
			Endpoint:    "Attachments",
			Attachments: AttachmentParents,
			Name:        attachmentName,
		},
	)
}

// Lookup finds a strategy by endpoint name, ignoring case.
func (c *Catalogue) Lookup(endpoint string) (*Strategy, error) {
	s, ok := c.byName[strings.ToLower(endpoint)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEndpoint, endpoint)
	}
	return s, nil
}

// Resolve looks up endpoints in order. No endpoints means the whole catalogue.
func (c *Catalogue) Resolve(endpoints []string) ([]*Strategy, error) {
	if len(endpoints) == 0 {
		return c.Strategies(), nil
	}
	out := make([]*Strategy, 0, len(endpoints))
	for _, endpoint := range endpoints {
		s, err := c.Lookup(endpoint)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Strategies returns every strategy in default order.
func (c *Catalogue) Strategies() []*Strategy {
	return append([]*Strategy(nil), c.order...)
}

// Info describes the catalogue for display.
func (c *Catalogue) Info() []driving.EndpointInfo {
	out := make([]driving.EndpointInfo, 0, len(c.order))
	for _, s := range c.order {
		out = append(out, driving.EndpointInfo{
			Name:           s.Endpoint,
			Kind:           s.Kind.String(),
			LatestFields:   append([]string(nil), s.LatestFields...),
			SupportsUpdate: s.SupportsUpdate,
		})
	}
	return out
}
