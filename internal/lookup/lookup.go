// Package lookup holds the reference data the document parser relies on:
// the seller's identity, known clients and their delivery points, order
// references with fixed delivery addresses, carriers and the products
// sold at the reduced 4% VAT rate.
//
// The dataset is versioned and loaded from YAML. An embedded default is
// used when no file is configured. A loaded Dataset is read-only and safe
// for concurrent use.
package lookup

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

var (
	// ErrInvalidDataset is returned when a dataset fails validation.
	ErrInvalidDataset = errors.New("invalid lookup dataset")

	defaultOnce    sync.Once
	defaultDataset *Dataset
)

// Seller describes the issuer printed on every document.
type Seller struct {
	Name                  string        `yaml:"name"`
	VATNumber             string        `yaml:"vat_number"`
	PlaceholderClientCode string        `yaml:"placeholder_client_code"`
	ExcludedNumbers       []string      `yaml:"excluded_numbers"`
	Fragments             []string      `yaml:"fragments"`
	Address               SellerAddress `yaml:"address"`
	OperatorCodes         []string      `yaml:"operator_codes"`
}

// SellerAddress identifies the seller's own street address.
type SellerAddress struct {
	StreetKeys []string `yaml:"street_keys"`
	PostalCode string   `yaml:"postal_code"`
	Town       string   `yaml:"town"`
}

// Client is a known customer.
type Client struct {
	Code            string   `yaml:"code"`
	Name            string   `yaml:"name"`
	DisplayName     string   `yaml:"display_name"`
	Aliases         []string `yaml:"aliases"`
	DeliveryAddress string   `yaml:"delivery_address"`
}

// FreshProducts selects the products sold at the reduced VAT rate.
type FreshProducts struct {
	Codes        []string `yaml:"codes"`
	CodePrefixes []string `yaml:"code_prefixes"`
	Keywords     []string `yaml:"keywords"`
}

// Dataset is the full set of reference data.
type Dataset struct {
	Version          string            `yaml:"version"`
	Seller           Seller            `yaml:"seller"`
	DefaultVATRate   int               `yaml:"default_vat_rate"`
	FreshProducts    FreshProducts     `yaml:"fresh_products"`
	Carriers         []string          `yaml:"carriers"`
	PlaceholderNames []string          `yaml:"placeholder_names"`
	Clients          []Client          `yaml:"clients"`
	OrderAddresses   map[string]string `yaml:"order_addresses"`

	byCode  map[string]Client
	byName  map[string]Client
	freshBy map[string]bool
}

// Default returns the embedded dataset. It panics if the embedded file is
// malformed, which can only happen at build time.
func Default() *Dataset {
	defaultOnce.Do(func() {
		ds, err := Parse(defaultData)
		if err != nil {
			panic(fmt.Sprintf("lookup: embedded dataset: %v", err))
		}
		defaultDataset = ds
	})
	return defaultDataset
}

// Load reads and validates a dataset from a YAML file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: read %s: %w", path, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lookup: %s: %w", path, err)
	}
	return ds, nil
}

// LoadOrDefault loads path, or returns the embedded dataset when path is empty.
func LoadOrDefault(path string) (*Dataset, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates a dataset from YAML.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	ds.index()
	return &ds, nil
}

// Validate checks the dataset for the fields the parser cannot work without.
func (d *Dataset) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidDataset)
	}
	if d.Seller.Name == "" {
		return fmt.Errorf("%w: seller.name is required", ErrInvalidDataset)
	}
	if !isDigits(d.Seller.VATNumber) || len(d.Seller.VATNumber) != 11 {
		return fmt.Errorf("%w: seller.vat_number must be 11 digits, got %q", ErrInvalidDataset, d.Seller.VATNumber)
	}
	switch d.DefaultVATRate {
	case 4, 10, 22:
	default:
		return fmt.Errorf("%w: default_vat_rate must be 4, 10 or 22, got %d", ErrInvalidDataset, d.DefaultVATRate)
	}

	seen := make(map[string]bool)
	for i, c := range d.Clients {
		if c.Name == "" {
			return fmt.Errorf("%w: clients[%d]: name is required", ErrInvalidDataset, i)
		}
		if c.Code == "" {
			continue
		}
		if !isDigits(c.Code) || len(c.Code) < 4 || len(c.Code) > 6 {
			return fmt.Errorf("%w: clients[%d]: code %q must be 4-6 digits", ErrInvalidDataset, i, c.Code)
		}
		if seen[c.Code] {
			return fmt.Errorf("%w: duplicate client code %s", ErrInvalidDataset, c.Code)
		}
		seen[c.Code] = true
	}
	return nil
}

func (d *Dataset) index() {
	d.byCode = make(map[string]Client, len(d.Clients))
	d.byName = make(map[string]Client, len(d.Clients))
	for _, c := range d.Clients {
		if c.Code != "" {
			d.byCode[c.Code] = c
		}
		d.byName[normalizeKey(c.Name)] = c
		for _, alias := range c.Aliases {
			d.byName[normalizeKey(alias)] = c
		}
	}
	d.freshBy = make(map[string]bool, len(d.FreshProducts.Codes))
	for _, code := range d.FreshProducts.Codes {
		d.freshBy[strings.ToUpper(code)] = true
	}
}

// ClientByCode returns the client registered under code.
func (d *Dataset) ClientByCode(code string) (Client, bool) {
	c, ok := d.byCode[code]
	return c, ok
}

// ClientByName returns the client whose name or alias matches name.
func (d *Dataset) ClientByName(name string) (Client, bool) {
	c, ok := d.byName[normalizeKey(name)]
	return c, ok
}

// DisplayName returns the short name for a client, or name itself when unknown.
func (d *Dataset) DisplayName(name string) string {
	if c, ok := d.ClientByName(name); ok && c.DisplayName != "" {
		return c.DisplayName
	}
	return name
}

// OrderAddress returns the fixed delivery address of an order reference.
func (d *Dataset) OrderAddress(orderNumber string) (string, bool) {
	addr, ok := d.OrderAddresses[strings.ToUpper(orderNumber)]
	return addr, ok && addr != ""
}

// IsSellerVAT reports whether vat is the seller's own VAT number.
func (d *Dataset) IsSellerVAT(vat string) bool {
	return vat == d.Seller.VATNumber
}

// IsPlaceholderClientCode reports whether code is the seller's placeholder customer code.
func (d *Dataset) IsPlaceholderClientCode(code string) bool {
	return code != "" && code == d.Seller.PlaceholderClientCode
}

// IsExcludedNumber reports whether n is a letterhead registration number.
func (d *Dataset) IsExcludedNumber(n string) bool {
	for _, x := range d.Seller.ExcludedNumbers {
		if n == x {
			return true
		}
	}
	return false
}

// IsSellerFragment reports whether s carries part of the seller's name or
// address. s is expected upper-cased.
func (d *Dataset) IsSellerFragment(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, strings.ToUpper(d.Seller.Name)) || strings.Contains(s, d.Seller.VATNumber) {
		return true
	}
	for _, f := range d.Seller.Fragments {
		if ContainsToken(s, strings.ToUpper(f)) {
			return true
		}
	}
	return false
}

// IsSellerAddress reports whether s is the seller's own address. A seller
// street key alone is not enough: the postal code or town must appear too.
// s is expected upper-cased.
func (d *Dataset) IsSellerAddress(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, strings.ToUpper(d.Seller.Name)) || strings.Contains(s, d.Seller.VATNumber) {
		return true
	}
	a := d.Seller.Address
	street := false
	for _, k := range a.StreetKeys {
		if ContainsToken(s, strings.ToUpper(k)) {
			street = true
			break
		}
	}
	if !street {
		return false
	}
	return (a.PostalCode != "" && ContainsToken(s, a.PostalCode)) ||
		(a.Town != "" && ContainsToken(s, strings.ToUpper(a.Town)))
}

// IsOperatorCode reports whether code is a seller staff code.
func (d *Dataset) IsOperatorCode(code string) bool {
	for _, c := range d.Seller.OperatorCodes {
		if code == c {
			return true
		}
	}
	return false
}

// IsCarrier reports whether s mentions a known carrier. s is expected upper-cased.
func (d *Dataset) IsCarrier(s string) bool {
	for _, c := range d.Carriers {
		if ContainsToken(s, strings.ToUpper(c)) {
			return true
		}
	}
	return false
}

// IsPlaceholderName reports whether name is a layout label rather than a client.
func (d *Dataset) IsPlaceholderName(name string) bool {
	key := normalizeKey(name)
	for _, p := range d.PlaceholderNames {
		if key == normalizeKey(p) {
			return true
		}
	}
	return false
}

// IsFreshProduct reports whether a product is sold at the reduced VAT rate.
// code and description are expected upper-cased.
func (d *Dataset) IsFreshProduct(code, description string) bool {
	if d.freshBy[code] {
		return true
	}
	for _, p := range d.FreshProducts.CodePrefixes {
		if p != "" && strings.HasPrefix(code, strings.ToUpper(p)) {
			return true
		}
	}
	for _, kw := range d.FreshProducts.Keywords {
		if ContainsToken(description, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// ContainsToken reports whether tok occurs in s at word boundaries, where a
// boundary is the start or end of s or any character that is not a letter
// or digit.
func ContainsToken(s, tok string) bool {
	if tok == "" {
		return false
	}
	for from := 0; from <= len(s)-len(tok); {
		i := strings.Index(s[from:], tok)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(tok)
		if boundary(s, start-1, tok[0]) && boundary(s, end, tok[len(tok)-1]) {
			return true
		}
		from = start + 1
	}
	return false
}

// boundary reports whether position i of s can delimit a token whose edge
// character is edge. Tokens that begin or end with punctuation delimit themselves.
func boundary(s string, i int, edge byte) bool {
	if !isAlnum(edge) {
		return true
	}
	if i < 0 || i >= len(s) {
		return true
	}
	return !isAlnum(s[i])
}

func isAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b >= 0x80
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
