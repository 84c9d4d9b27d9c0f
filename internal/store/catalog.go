package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pbaille/skincare/internal/domain"
)

//go:embed catalog_seed.json
var catalogSeed []byte

// Catalog is the product catalog kept as a JSON document on disk
type Catalog struct {
	path string
}

// NewCatalog creates a Catalog backed by the file at path
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

// Path returns the backing file.
func (c *Catalog) Path() string {
	return c.path
}

// productRecord is the on-disk shape. Legacy keys written by older
// versions are accepted and folded into the canonical fields.
type productRecord struct {
	ID          string            `json:"id"`
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description,omitempty"`
	Type        string            `json:"type"`
	Price       *int              `json:"price,omitempty"`
	PriceJPY    *int              `json:"price_jpy,omitempty"`
	Fragrance   string            `json:"fragrance"`
	SkinTypes   []string          `json:"skin_types,omitempty"`
	Concerns    []string          `json:"concerns,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	MonthsLast  float64           `json:"months_last,omitempty"`

	// Display-only legacy fields.
	Emoji   string   `json:"emoji,omitempty"`
	Steps   []string `json:"steps,omitempty"`
	Texture string   `json:"texture,omitempty"`
}

func (r productRecord) product() (domain.Product, error) {
	if r.ID == "" {
		return domain.Product{}, domain.NewValidationError("id", "required")
	}

	price := 0
	switch {
	case r.Price != nil:
		price = *r.Price
	case r.PriceJPY != nil:
		price = *r.PriceJPY
	}
	if price < 0 {
		return domain.Product{}, domain.NewValidationError("price", "must be >= 0")
	}

	p := domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Type:        domain.ParseProductType(r.Type),
		Price:       price,
		Fragrance:   domain.ParseProductFragrance(r.Fragrance),
		Concerns:    domain.ParseConcerns(r.Concerns),
		Tags:        r.Tags,
		MonthsLast:  r.MonthsLast,
	}
	for _, st := range r.SkinTypes {
		if t := domain.ParseSkinType(st); t != domain.SkinUnknown {
			p.SkinTypes = append(p.SkinTypes, t)
		}
	}
	return p, nil
}

func recordFor(p domain.Product) productRecord {
	price := p.Price
	r := productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type.String(),
		Price:       &price,
		Fragrance:   p.Fragrance.String(),
		Tags:        p.Tags,
		MonthsLast:  p.MonthsLast,
	}
	for _, st := range p.SkinTypes {
		r.SkinTypes = append(r.SkinTypes, st.String())
	}
	for _, c := range p.Concerns {
		r.Concerns = append(r.Concerns, c.String())
	}
	return r
}

// DecodeCatalog parses a catalog document. Unknown keys are rejected;
// a record without an id fails the whole document.
func DecodeCatalog(raw []byte) ([]domain.Product, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var records []productRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for i, r := range records {
		p, err := r.product()
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// DefaultProducts returns the seed catalog shipped with the binary.
func DefaultProducts() []domain.Product {
	products, err := DecodeCatalog(catalogSeed)
	if err != nil {
		panic(fmt.Sprintf("store: embedded catalog: %v", err))
	}
	return products
}

// LoadCatalog reads the catalog file
func (c *Catalog) LoadCatalog() ([]domain.Product, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalog %s: %w", c.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	products, err := DecodeCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", c.path, err)
	}
	return products, nil
}

// SaveCatalog writes products as indented JSON, replacing the file
func (c *Catalog) SaveCatalog(products []domain.Product) error {
	records := make([]productRecord, len(products))
	for i, p := range products {
		if p.ID == "" {
			return fmt.Errorf("product %d: %w", i, domain.NewValidationError("id", "required"))
		}
		records[i] = recordFor(p)
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	// Write beside the target and rename so readers never see a partial file.
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// EnsureSeed writes the default catalog when the file does not exist yet.
// It reports whether it wrote one.
func (c *Catalog) EnsureSeed() (bool, error) {
	if _, err := os.Stat(c.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat catalog: %w", err)
	}
	if err := c.SaveCatalog(DefaultProducts()); err != nil {
		return false, err
	}
	return true, nil
}

// Load returns the catalog, seeding it first when missing.
func (c *Catalog) Load() ([]domain.Product, error) {
	if _, err := c.EnsureSeed(); err != nil {
		return nil, err
	}
	return c.LoadCatalog()
}
